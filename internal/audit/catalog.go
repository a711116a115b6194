package audit

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// categoryOrder fixes the report order of the audit categories.
var categoryOrder = []domain.CategoryName{
	domain.CategoryOnPage,
	domain.CategoryStructureNavigation,
	domain.CategoryContactPage,
	domain.CategoryServicePages,
	domain.CategoryLocationPages,
	domain.CategoryServiceAreaPages,
}

// Title and meta-description length bands, in characters.
const (
	titleMinLen    = 30
	titleMaxLen    = 60
	metaDescMinLen = 70
	metaDescMaxLen = 155
)

// Content depth bands, in words.
const (
	contentMinWords     = 250
	contentThinWords    = 50
	serviceContentWords = 350
)

const (
	internalLinksGood = 3
	urlStructureGood  = 0.8
	maxGoodPathDepth  = 3
)

var (
	ctaRe = regexp.MustCompile(`(?i)\bcall (?:us|now|today)\b|\bcontact us\b|\bschedule\b|\bbook (?:now|online|an? )\b|\bget a quote\b|\brequest (?:service|an? )`)

	breadcrumbRe = regexp.MustCompile(`(?i)breadcrumb|\bhome\s*(?:>|»|/)\s*\w`)
)

// ruleCatalog is the fixed checklist taxonomy. Order within a category
// is evaluation order and is preserved in the report.
var ruleCatalog = map[domain.CategoryName][]Rule{
	domain.CategoryOnPage:              onPageRules,
	domain.CategoryStructureNavigation: structureRules,
	domain.CategoryContactPage:         contactRules,
	domain.CategoryServicePages:        serviceRules,
	domain.CategoryLocationPages:       locationRules,
	domain.CategoryServiceAreaPages:    serviceAreaRules,
}

// perPageItems applies eval to every page in scope, one item per page.
func perPageItems(pages []domain.ClassifiedPage, eval func(p domain.ClassifiedPage) domain.AuditItem) []domain.AuditItem {
	items := make([]domain.AuditItem, 0, len(pages))
	for _, p := range pages {
		items = append(items, eval(p))
	}
	return items
}

var onPageRules = []Rule{
	func() Rule {
		r := Rule{
			Name:        "Title Tag Optimization",
			Category:    domain.CategoryOnPage,
			Kind:        perPage,
			Description: "Each page has a descriptive title tag of 30-60 characters.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				title := strings.TrimSpace(p.Page.Title)
				switch {
				case title == "":
					return r.item(domain.StatusPriorityOFI, "page has no title tag", p.Page.URL)
				case len(title) < titleMinLen || len(title) > titleMaxLen:
					return r.item(domain.StatusOFI, fmt.Sprintf("title is %d characters, target %d-%d", len(title), titleMinLen, titleMaxLen), p.Page.URL)
				default:
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Meta Description Optimization",
			Category:    domain.CategoryOnPage,
			Kind:        perPage,
			Description: "Each page has a unique meta description of 70-155 characters.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				desc := strings.TrimSpace(p.Page.Meta.Description)
				switch {
				case desc == "":
					return r.item(domain.StatusPriorityOFI, "page has no meta description", p.Page.URL)
				case len(desc) < metaDescMinLen || len(desc) > metaDescMaxLen:
					return r.item(domain.StatusOFI, fmt.Sprintf("meta description is %d characters, target %d-%d", len(desc), metaDescMinLen, metaDescMaxLen), p.Page.URL)
				default:
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Heading Structure",
			Category:    domain.CategoryOnPage,
			Kind:        perPage,
			Description: "Each page has exactly one H1 heading.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				switch n := len(p.Page.Headings["h1"]); {
				case n == 0:
					return r.item(domain.StatusOFI, "page has no H1 heading", p.Page.URL)
				case n > 1:
					return r.item(domain.StatusOFI, fmt.Sprintf("page has %d H1 headings", n), p.Page.URL)
				default:
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Content Depth",
			Category:    domain.CategoryOnPage,
			Kind:        perPage,
			Description: "Each page carries enough body content to rank.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				words := wordCount(p.Page.BodyText)
				switch {
				case words < contentThinWords:
					return r.item(domain.StatusPriorityOFI, fmt.Sprintf("page has only %d words of content", words), p.Page.URL)
				case words < contentMinWords:
					return r.item(domain.StatusOFI, fmt.Sprintf("page has %d words, target at least %d", words, contentMinWords), p.Page.URL)
				default:
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Schema Markup",
			Category:    domain.CategoryOnPage,
			Kind:        perPage,
			Description: "Each page declares structured data markup.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if !p.Page.HasSchema {
					return r.item(domain.StatusOFI, "page declares no structured data", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Social Meta Tags",
			Category:    domain.CategoryOnPage,
			Kind:        perPage,
			Description: "Each page carries Open Graph tags for link sharing.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if len(p.Page.Meta.OGTags) == 0 {
					return r.item(domain.StatusOFI, "page has no Open Graph tags", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
}

var structureRules = []Rule{
	func() Rule {
		r := Rule{
			Name:        "Breadcrumb Navigation",
			Category:    domain.CategoryStructureNavigation,
			Kind:        siteWide,
			Description: "The site exposes breadcrumb navigation on inner pages.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			for _, p := range pages {
				for _, t := range p.Page.SchemaTypes {
					if strings.EqualFold(strings.TrimSpace(t), "BreadcrumbList") {
						return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
					}
				}
				if breadcrumbRe.MatchString(p.Page.BodyText) {
					return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
				}
			}
			return []domain.AuditItem{r.item(domain.StatusOFI, "no breadcrumb markup found on any crawled page", "")}
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Internal Linking",
			Category:    domain.CategoryStructureNavigation,
			Kind:        siteWide,
			Description: "Pages link to each other enough for crawl depth and equity flow.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			if len(pages) == 0 {
				return []domain.AuditItem{r.item(domain.StatusNA, "no pages crawled", "")}
			}
			total := 0
			for _, p := range pages {
				total += len(p.Page.Links.Internal)
			}
			avg := float64(total) / float64(len(pages))
			switch {
			case total == 0:
				return []domain.AuditItem{r.item(domain.StatusPriorityOFI, "no internal links found across the crawl", "")}
			case avg < internalLinksGood:
				return []domain.AuditItem{r.item(domain.StatusOFI, fmt.Sprintf("average of %.1f internal links per page, target at least %d", avg, internalLinksGood), "")}
			default:
				return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
			}
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Navigation Consistency",
			Category:    domain.CategoryStructureNavigation,
			Kind:        siteWide,
			Description: "A shared navigation link set appears across pages.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			if len(pages) < 2 {
				return []domain.AuditItem{r.item(domain.StatusNA, "single-page crawl, consistency not measurable", "")}
			}
			shared := linkSet(pages[0].Page.Links.Internal)
			for _, p := range pages[1:] {
				next := linkSet(p.Page.Links.Internal)
				for l := range shared {
					if !next[l] {
						delete(shared, l)
					}
				}
			}
			if len(shared) == 0 {
				return []domain.AuditItem{r.item(domain.StatusOFI, "no navigation link is shared by every crawled page", "")}
			}
			return []domain.AuditItem{r.item(domain.StatusOK, fmt.Sprintf("%d links shared across all pages", len(shared)), "")}
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "URL Structure",
			Category:    domain.CategoryStructureNavigation,
			Kind:        siteWide,
			Description: "URLs are lowercase, hyphenated, and free of query parameters.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			if len(pages) == 0 {
				return []domain.AuditItem{r.item(domain.StatusNA, "no pages crawled", "")}
			}
			clean := 0
			for _, p := range pages {
				if cleanURL(p.Page.URL) {
					clean++
				}
			}
			frac := float64(clean) / float64(len(pages))
			if frac < urlStructureGood {
				return []domain.AuditItem{r.item(domain.StatusOFI, fmt.Sprintf("%d of %d URLs use clean structure", clean, len(pages)), "")}
			}
			return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Site Depth",
			Category:    domain.CategoryStructureNavigation,
			Kind:        siteWide,
			Description: "Every page is reachable within a few clicks of the home page.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			if len(pages) == 0 {
				return []domain.AuditItem{r.item(domain.StatusNA, "no pages crawled", "")}
			}
			deepest := 0
			for _, p := range pages {
				if d := pathDepth(p.Page.URL); d > deepest {
					deepest = d
				}
			}
			if deepest > maxGoodPathDepth {
				return []domain.AuditItem{r.item(domain.StatusOFI, fmt.Sprintf("deepest URL sits %d segments down, target at most %d", deepest, maxGoodPathDepth), "")}
			}
			return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
		}
		return r
	}(),
}

var contactRules = []Rule{
	func() Rule {
		r := Rule{
			Name:        "Contact Form Availability",
			Category:    domain.CategoryContactPage,
			Kind:        perPage,
			Role:        domain.RoleContact,
			Description: "The contact page offers a working contact form.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if !p.Page.HasContactForm {
					return r.item(domain.StatusPriorityOFI, "contact page has no form", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Phone Number Visibility",
			Category:    domain.CategoryContactPage,
			Kind:        perPage,
			Role:        domain.RoleContact,
			Description: "A phone number is visible on the contact page.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if !p.Page.HasPhoneNumber {
					return r.item(domain.StatusOFI, "no phone number found on contact page", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Physical Address Display",
			Category:    domain.CategoryContactPage,
			Kind:        perPage,
			Role:        domain.RoleContact,
			Description: "The business address appears on the contact page.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if !p.Page.HasAddress {
					return r.item(domain.StatusOFI, "no street address found on contact page", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Contact Page Reachability",
			Category:    domain.CategoryContactPage,
			Kind:        siteWide,
			Description: "The site has an identifiable contact page.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			if countRole(pages, domain.RoleContact) == 0 {
				return []domain.AuditItem{r.item(domain.StatusPriorityOFI, "no contact page identified in the crawl", "")}
			}
			return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
		}
		return r
	}(),
}

var serviceRules = []Rule{
	func() Rule {
		r := Rule{
			Name:        "Dedicated Service Pages",
			Category:    domain.CategoryServicePages,
			Kind:        siteWide,
			RolledUp:    true,
			Description: "Each primary service has its own dedicated page.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			n := countRole(pages, domain.RoleService)
			if n == 0 {
				return []domain.AuditItem{r.item(domain.StatusPriorityOFI, "no dedicated service pages found", "")}
			}
			return []domain.AuditItem{r.item(domain.StatusOK, fmt.Sprintf("%d service pages identified", n), "")}
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Service Page Call to Action",
			Category:    domain.CategoryServicePages,
			Kind:        perPage,
			Role:        domain.RoleService,
			Description: "Each service page has a clear call to action.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if p.Page.HasContactForm || ctaRe.MatchString(p.Page.BodyText) {
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
				return r.item(domain.StatusOFI, "no call to action found on service page", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Service Schema Markup",
			Category:    domain.CategoryServicePages,
			Kind:        perPage,
			Role:        domain.RoleService,
			Description: "Service pages declare Service or Product structured data.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if hasServiceSchemaType(p.Page.SchemaTypes) {
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
				return r.item(domain.StatusOFI, "no Service/Product schema on service page", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Service Content Depth",
			Category:    domain.CategoryServicePages,
			Kind:        perPage,
			Role:        domain.RoleService,
			Description: "Service pages explain the service in depth.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if words := wordCount(p.Page.BodyText); words < serviceContentWords {
					return r.item(domain.StatusOFI, fmt.Sprintf("service page has %d words, target at least %d", words, serviceContentWords), p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
}

var locationRules = []Rule{
	func() Rule {
		r := Rule{
			Name:        "Location in Title",
			Category:    domain.CategoryLocationPages,
			Kind:        perPage,
			Role:        domain.RoleLocation,
			Description: "Location pages name the city or region in the title tag.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if !containsLocationIndicator(p.Page.Title) {
					return r.item(domain.StatusOFI, "title does not name the target location", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Localized Content",
			Category:    domain.CategoryLocationPages,
			Kind:        perPage,
			Role:        domain.RoleLocation,
			Description: "Location page copy is written for the target area.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if containsLocationIndicator(p.Page.BodyText) || servingRe.MatchString(p.Page.BodyText) {
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
				return r.item(domain.StatusOFI, "body content does not mention the target location", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Address and Map Presence",
			Category:    domain.CategoryLocationPages,
			Kind:        perPage,
			Role:        domain.RoleLocation,
			Description: "Location pages show the local address.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if !p.Page.HasAddress {
					return r.item(domain.StatusOFI, "no address on location page", p.Page.URL)
				}
				return r.item(domain.StatusOK, "", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "LocalBusiness Schema",
			Category:    domain.CategoryLocationPages,
			Kind:        perPage,
			Role:        domain.RoleLocation,
			Description: "Location pages declare LocalBusiness structured data.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				for _, t := range p.Page.SchemaTypes {
					if strings.EqualFold(strings.TrimSpace(t), "LocalBusiness") {
						return r.item(domain.StatusOK, "", p.Page.URL)
					}
				}
				return r.item(domain.StatusOFI, "no LocalBusiness schema on location page", p.Page.URL)
			})
		}
		return r
	}(),
}

var serviceAreaRules = []Rule{
	func() Rule {
		r := Rule{
			Name:        "Area Specific Content",
			Category:    domain.CategoryServiceAreaPages,
			Kind:        perPage,
			Role:        domain.RoleServiceArea,
			Description: "Service-area pages describe the specific area served.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				if containsLocationIndicator(p.Page.BodyText) || containsLocationIndicator(p.Page.Title) {
					return r.item(domain.StatusOK, "", p.Page.URL)
				}
				return r.item(domain.StatusOFI, "page does not name the area it covers", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Service Links from Area Pages",
			Category:    domain.CategoryServiceAreaPages,
			Kind:        perPage,
			Role:        domain.RoleServiceArea,
			Description: "Service-area pages link back to the relevant service pages.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			return perPageItems(pages, func(p domain.ClassifiedPage) domain.AuditItem {
				for _, l := range p.Page.Links.Internal {
					if containsServiceToken(l) {
						return r.item(domain.StatusOK, "", p.Page.URL)
					}
				}
				return r.item(domain.StatusOFI, "no links to service pages from area page", p.Page.URL)
			})
		}
		return r
	}(),
	func() Rule {
		r := Rule{
			Name:        "Unique Area Content",
			Category:    domain.CategoryServiceAreaPages,
			Kind:        siteWide,
			RolledUp:    true,
			Description: "Each service-area page carries unique copy, not a swapped city name.",
		}
		r.Evaluate = func(pages []domain.ClassifiedPage, _ domain.SiteContext) []domain.AuditItem {
			areas := filterRole(pages, domain.RoleServiceArea)
			if len(areas) < 2 {
				return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
			}
			seen := map[string]string{}
			for _, p := range areas {
				key := contentFingerprint(p.Page.BodyText)
				if first, dup := seen[key]; dup {
					return []domain.AuditItem{r.item(domain.StatusOFI, fmt.Sprintf("duplicated area copy between %s and %s", first, p.Page.URL), "")}
				}
				seen[key] = p.Page.URL
			}
			return []domain.AuditItem{r.item(domain.StatusOK, "", "")}
		}
		return r
	}(),
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func linkSet(links []string) map[string]bool {
	set := make(map[string]bool, len(links))
	for _, l := range links {
		set[l] = true
	}
	return set
}

// cleanURL reports whether a URL follows lowercase, hyphenated,
// query-free structure.
func cleanURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.RawQuery != "" {
		return false
	}
	p := u.Path
	return p == strings.ToLower(p) && !strings.Contains(p, "_") && !strings.Contains(p, " ")
}

func pathDepth(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	return len(splitPath(u.Path))
}

// contentFingerprint normalizes the leading body copy so near-identical
// template text collides.
func contentFingerprint(body string) string {
	fields := strings.Fields(strings.ToLower(body))
	if len(fields) > 40 {
		fields = fields[:40]
	}
	return strings.Join(fields, " ")
}
