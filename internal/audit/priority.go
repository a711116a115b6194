package audit

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// Default priority-assignment tuning. A template defect repeated on
// every page must not collapse the whole report to Priority OFI.
const (
	defaultMaxPriorityRatio = 0.6
	ratioEnforceMinFindings = 5

	priorityFixHours = 1.0
	ofiFixHours      = 0.5
	// One engineering task fixes every occurrence of a template issue.
	templateFixHours = 2.0
)

// templateMinOccurrences derives the template-signature threshold from
// the crawl size when no explicit threshold is configured.
func templateMinOccurrences(pageCount int) int {
	n := pageCount / 4
	if n < 3 {
		n = 3
	}
	return n
}

// signature groups findings that stem from the same rule on the same
// page role. The page URL is deliberately not part of the key: the same
// defect on thirty service pages is one template issue, not thirty.
type signature struct {
	Rule string
	Role domain.PageRole
}

// Assignment is the result of the priority pass.
type Assignment struct {
	Categories     []domain.AuditCategory
	TemplateIssues int
	Downgraded     int
	FixEffort      float64
}

// PriorityAssigner post-processes raw rule findings: repeated template
// defects keep a single Priority OFI representative, and the final
// Priority OFI fraction is forced under the configured bound.
type PriorityAssigner struct {
	threshold int     // 0 = derive from page count
	maxRatio  float64 // 0 = default
	logger    *zap.Logger
}

func NewPriorityAssigner(threshold int, maxRatio float64, logger *zap.Logger) *PriorityAssigner {
	if maxRatio <= 0 || maxRatio >= 1 {
		maxRatio = defaultMaxPriorityRatio
	}
	return &PriorityAssigner{threshold: threshold, maxRatio: maxRatio, logger: logger}
}

// Assign rewrites the categories with adjusted priorities. The input is
// not mutated; roleByURL maps page URLs to their classified role so
// per-page findings can be grouped into template signatures.
func (a *PriorityAssigner) Assign(categories []domain.AuditCategory, roleByURL map[string]domain.PageRole, site domain.SiteContext) Assignment {
	out := cloneCategories(categories)

	threshold := a.threshold
	if threshold <= 0 {
		threshold = templateMinOccurrences(site.PageCount)
	}

	// Group OFI and Priority OFI findings by template signature.
	groups := map[signature][]*domain.AuditItem{}
	total := 0
	for ci := range out {
		for ii := range out[ci].Items {
			it := &out[ci].Items[ii]
			total++
			if it.Status != domain.StatusOFI && it.Status != domain.StatusPriorityOFI {
				continue
			}
			sig := signature{Rule: it.Name, Role: roleByURL[it.PageURL]}
			groups[sig] = append(groups[sig], it)
		}
	}

	asg := Assignment{Categories: out}

	// Template pass: signatures hitting the threshold keep their first
	// occurrence and downgrade the rest.
	templateSigs := map[signature]bool{}
	for sig, items := range groups {
		if len(items) < threshold {
			continue
		}
		templateSigs[sig] = true
		asg.TemplateIssues++
		for _, it := range items[1:] {
			if it.Status == domain.StatusPriorityOFI {
				it.Status = domain.StatusOFI
				it.Notes = appendNote(it.Notes, "recurring template issue, downgraded")
				asg.Downgraded++
			}
		}
	}

	// Ratio pass: if the raw evaluation still breaks the bound, keep
	// downgrading from the lowest-confidence signatures (most repeated
	// first) until it holds or no multi-occurrence candidate remains.
	if total > ratioEnforceMinFindings {
		for a.priorityRatio(out, total) > a.maxRatio {
			it := pickDowngradeCandidate(groups)
			if it == nil {
				break
			}
			it.Status = domain.StatusOFI
			it.Notes = appendNote(it.Notes, "downgraded to keep priority ratio bounded")
			asg.Downgraded++
		}
	}

	asg.FixEffort = estimateFixEffort(groups, templateSigs)

	if a.logger != nil && asg.Downgraded > 0 {
		a.logger.Info("priority assignment downgraded findings",
			zap.Int("downgraded", asg.Downgraded),
			zap.Int("template_issues", asg.TemplateIssues))
	}
	return asg
}

func (a *PriorityAssigner) priorityRatio(categories []domain.AuditCategory, total int) float64 {
	if total == 0 {
		return 0
	}
	priority := 0
	for _, c := range categories {
		for _, it := range c.Items {
			if it.Status == domain.StatusPriorityOFI {
				priority++
			}
		}
	}
	return float64(priority) / float64(total)
}

// pickDowngradeCandidate returns one Priority OFI item from the
// signature with the most remaining Priority OFI occurrences, keeping
// at least one representative per signature. Ties break on rule name
// for determinism.
func pickDowngradeCandidate(groups map[signature][]*domain.AuditItem) *domain.AuditItem {
	type candidate struct {
		sig   signature
		items []*domain.AuditItem
	}
	var best *candidate
	for sig, items := range groups {
		remaining := make([]*domain.AuditItem, 0, len(items))
		for _, it := range items {
			if it.Status == domain.StatusPriorityOFI {
				remaining = append(remaining, it)
			}
		}
		if len(remaining) < 2 {
			continue
		}
		c := candidate{sig: sig, items: remaining}
		if best == nil ||
			len(c.items) > len(best.items) ||
			(len(c.items) == len(best.items) && c.sig.Rule < best.sig.Rule) {
			bc := c
			best = &bc
		}
	}
	if best == nil {
		return nil
	}
	// Downgrade the last occurrence so the first stays the flagged
	// representative.
	return best.items[len(best.items)-1]
}

// estimateFixEffort weighs template-wide fixes as a single task and
// page-specific findings per occurrence.
func estimateFixEffort(groups map[signature][]*domain.AuditItem, templateSigs map[signature]bool) float64 {
	// Deterministic iteration keeps the float sum stable across runs.
	sigs := make([]signature, 0, len(groups))
	for sig := range groups {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool {
		if sigs[i].Rule != sigs[j].Rule {
			return sigs[i].Rule < sigs[j].Rule
		}
		return sigs[i].Role < sigs[j].Role
	})

	effort := 0.0
	for _, sig := range sigs {
		if templateSigs[sig] {
			effort += templateFixHours
			continue
		}
		for _, it := range groups[sig] {
			switch it.Status {
			case domain.StatusPriorityOFI:
				effort += priorityFixHours
			case domain.StatusOFI:
				effort += ofiFixHours
			}
		}
	}
	return effort
}

func cloneCategories(categories []domain.AuditCategory) []domain.AuditCategory {
	out := make([]domain.AuditCategory, len(categories))
	for i, c := range categories {
		out[i] = domain.AuditCategory{Name: c.Name, Items: append([]domain.AuditItem(nil), c.Items...)}
	}
	return out
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
