package domain

import "time"

// PageRole is the functional classification assigned to a crawled page.
type PageRole string

const (
	RoleService     PageRole = "service"
	RoleLocation    PageRole = "location"
	RoleServiceArea PageRole = "service_area"
	RoleContact     PageRole = "contact"
	RoleGeneric     PageRole = "generic"
)

// ItemStatus is the outcome of one checklist rule evaluation.
type ItemStatus string

const (
	StatusPriorityOFI ItemStatus = "Priority OFI"
	StatusOFI         ItemStatus = "OFI"
	StatusOK          ItemStatus = "OK"
	StatusNA          ItemStatus = "N/A"
)

// CategoryName identifies one of the fixed audit categories.
type CategoryName string

const (
	CategoryOnPage              CategoryName = "On-Page SEO"
	CategoryStructureNavigation CategoryName = "Structure & Navigation"
	CategoryContactPage         CategoryName = "Contact Page"
	CategoryServicePages        CategoryName = "Service Pages"
	CategoryLocationPages       CategoryName = "Location Pages"
	CategoryServiceAreaPages    CategoryName = "Service Area Pages"
)

// PageMeta holds the meta-tag surface of a page.
type PageMeta struct {
	Description string            `json:"description"`
	OGTags      map[string]string `json:"og_tags,omitempty"`
	TwitterTags map[string]string `json:"twitter_tags,omitempty"`
}

// PageLinks splits a page's outgoing links by host.
type PageLinks struct {
	Internal []string `json:"internal"`
	External []string `json:"external"`
}

// PageRecord is the crawled-page data contract consumed by the audit
// pipeline. It is immutable once produced by the crawler and owned by a
// single audit run.
type PageRecord struct {
	URL            string              `json:"url"`
	Title          string              `json:"title"`
	BodyText       string              `json:"body_text"`
	Headings       map[string][]string `json:"headings"` // "h1".."h6"
	Links          PageLinks           `json:"links"`
	HasSchema      bool                `json:"has_schema"`
	SchemaTypes    []string            `json:"schema_types,omitempty"`
	Meta           PageMeta            `json:"meta"`
	HasContactForm bool                `json:"has_contact_form"`
	HasPhoneNumber bool                `json:"has_phone_number"`
	HasAddress     bool                `json:"has_address"`
}

// ClassifiedPage pairs a PageRecord with its derived role for the
// duration of one audit.
type ClassifiedPage struct {
	Page PageRecord `json:"page"`
	Role PageRole   `json:"role"`
}

// AuditItem is one checklist finding. Immutable after creation.
type AuditItem struct {
	Name        string       `json:"name"`
	Category    CategoryName `json:"category"`
	Status      ItemStatus   `json:"status"`
	Description string       `json:"description"`
	Notes       string       `json:"notes,omitempty"`
	PageURL     string       `json:"page_url,omitempty"`
}

// AuditCategory holds the ordered findings of one category. Item order
// is rule evaluation order and is preserved for deterministic reports.
type AuditCategory struct {
	Name  CategoryName `json:"name"`
	Items []AuditItem  `json:"items"`
}

// AuditSummary is derived from the categories, never mutated directly.
type AuditSummary struct {
	PriorityOFICount       int     `json:"priority_ofi_count"`
	OFICount               int     `json:"ofi_count"`
	OKCount                int     `json:"ok_count"`
	NACount                int     `json:"na_count"`
	Total                  int     `json:"total"`
	TemplateIssuesDetected int     `json:"template_issues_detected"`
	EstimatedFixEffort     float64 `json:"estimated_fix_effort_hours"`
}

// JobStatus enumerates the audit job lifecycle states.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCrawling  JobStatus = "crawling"
	JobAnalyzing JobStatus = "analyzing"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether a job has finished, successfully or not.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// CrawlOptions controls one crawl run.
type CrawlOptions struct {
	MaxPages        int  `json:"max_pages"`
	EnableDeepCrawl bool `json:"enable_deep_crawl"`
}

// AuditJob is one audit run, owned by the job manager for its lifetime.
type AuditJob struct {
	ID         string          `json:"id"`
	Status     JobStatus       `json:"status"`
	URL        string          `json:"url"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    *time.Time      `json:"end_time,omitempty"`
	PageCount  int             `json:"page_count"`
	Categories []AuditCategory `json:"categories,omitempty"`
	Summary    AuditSummary    `json:"summary"`
	Error      string          `json:"error,omitempty"`
}

// SiteContext carries the cross-page signals the classifier and the
// rule set may consult. Built once per audit run.
type SiteContext struct {
	Domain    string
	RootURL   string
	PageCount int
}

// AuditRequest is the create/refresh API payload.
type AuditRequest struct {
	URL     string       `json:"url"`
	Options CrawlOptions `json:"options"`
}

// JobStatusResponse is the API response for a status poll.
type JobStatusResponse struct {
	JobID    string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress,omitempty"` // pages crawled so far
	Error    string    `json:"error,omitempty"`
}

// AuditResultResponse is the API response for a completed audit.
type AuditResultResponse struct {
	JobID      string          `json:"job_id"`
	URL        string          `json:"url"`
	Status     JobStatus       `json:"status"`
	PageCount  int             `json:"page_count"`
	Categories []AuditCategory `json:"categories"`
	Summary    AuditSummary    `json:"summary"`
}
