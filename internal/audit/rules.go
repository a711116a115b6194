package audit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// ruleKind distinguishes per-page checklist rules from site-wide ones.
type ruleKind int

const (
	perPage ruleKind = iota
	siteWide
)

// Rule is one named checklist entry. Evaluate must be pure and total:
// every input maps to a defined status, with N/A for structurally
// inapplicable input. Per-page rules receive only the pages matching
// Role ("" means every page) and emit one item per page unless RolledUp
// is set; site-wide rules receive the full classified page set and emit
// exactly one item.
type Rule struct {
	Name        string
	Category    domain.CategoryName
	Kind        ruleKind
	Role        domain.PageRole
	RolledUp    bool
	Description string
	Evaluate    func(pages []domain.ClassifiedPage, site domain.SiteContext) []domain.AuditItem
}

// item builds a finding for this rule.
func (r Rule) item(status domain.ItemStatus, notes, pageURL string) domain.AuditItem {
	return domain.AuditItem{
		Name:        r.Name,
		Category:    r.Category,
		Status:      status,
		Description: r.Description,
		Notes:       notes,
		PageURL:     pageURL,
	}
}

// RuleSet evaluates the fixed rule catalog against a classified crawl.
type RuleSet struct {
	logger *zap.Logger
}

func NewRuleSet(logger *zap.Logger) *RuleSet {
	return &RuleSet{logger: logger}
}

// Evaluate runs every category's rules in catalog order and returns the
// categories with their findings. The ServiceAreaPages category is
// omitted entirely when the crawl produced no service-area pages.
func (rs *RuleSet) Evaluate(pages []domain.ClassifiedPage, site domain.SiteContext) []domain.AuditCategory {
	categories := make([]domain.AuditCategory, 0, len(categoryOrder))
	for _, name := range categoryOrder {
		if name == domain.CategoryServiceAreaPages && countRole(pages, domain.RoleServiceArea) == 0 {
			continue
		}
		cat := domain.AuditCategory{Name: name}
		for _, rule := range ruleCatalog[name] {
			cat.Items = append(cat.Items, rs.evaluateRule(rule, pages, site)...)
		}
		categories = append(categories, cat)
	}
	return categories
}

// evaluateRule runs one rule, filtered to its role, and converts a
// panicking rule into a single N/A item with a diagnostic note. A bad
// rule must never abort the audit.
func (rs *RuleSet) evaluateRule(rule Rule, pages []domain.ClassifiedPage, site domain.SiteContext) (items []domain.AuditItem) {
	defer func() {
		if r := recover(); r != nil {
			evalErr := &domain.RuleEvaluationError{
				Rule:     rule.Name,
				Category: rule.Category,
				Cause:    fmt.Errorf("%v", r),
			}
			rs.logger.Warn("rule evaluation failed",
				zap.String("rule", rule.Name),
				zap.String("category", string(rule.Category)),
				zap.Error(evalErr))
			items = []domain.AuditItem{
				rule.item(domain.StatusNA, "rule evaluation failed: "+evalErr.Error(), ""),
			}
		}
	}()

	scope := pages
	if rule.Kind == perPage && rule.Role != "" {
		scope = filterRole(pages, rule.Role)
		if len(scope) == 0 {
			// No page of the relevant role exists, so the per-page
			// check is structurally inapplicable.
			return []domain.AuditItem{
				rule.item(domain.StatusNA, fmt.Sprintf("no %s pages identified", rule.Role), ""),
			}
		}
	}
	return rule.Evaluate(scope, site)
}

func filterRole(pages []domain.ClassifiedPage, role domain.PageRole) []domain.ClassifiedPage {
	out := make([]domain.ClassifiedPage, 0, len(pages))
	for _, p := range pages {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

func countRole(pages []domain.ClassifiedPage, role domain.PageRole) int {
	n := 0
	for _, p := range pages {
		if p.Role == role {
			n++
		}
	}
	return n
}
