package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// templateDefectAudit synthesizes a crawl where every page shares the
// same defect (missing meta description).
func templateDefectAudit(pages int) ([]domain.AuditCategory, map[string]domain.PageRole, domain.SiteContext) {
	cat := domain.AuditCategory{Name: domain.CategoryOnPage}
	roles := map[string]domain.PageRole{}
	for i := 0; i < pages; i++ {
		url := fmt.Sprintf("https://example.com/page-%d", i)
		roles[url] = domain.RoleGeneric
		cat.Items = append(cat.Items,
			domain.AuditItem{
				Name:     "Meta Description Optimization",
				Category: domain.CategoryOnPage,
				Status:   domain.StatusPriorityOFI,
				PageURL:  url,
			},
			domain.AuditItem{
				Name:     "Title Tag Optimization",
				Category: domain.CategoryOnPage,
				Status:   domain.StatusOK,
				PageURL:  url,
			},
		)
	}
	site := domain.SiteContext{Domain: "example.com", PageCount: pages}
	return []domain.AuditCategory{cat}, roles, site
}

func TestAssign_TemplateDefectStaysBounded(t *testing.T) {
	const pages = 20
	categories, roles, site := templateDefectAudit(pages)

	a := NewPriorityAssigner(0, 0, zap.NewNop())
	asg := a.Assign(categories, roles, site)

	summary := Aggregate(asg.Categories)
	require.Greater(t, summary.Total, 5)

	ratio := float64(summary.PriorityOFICount) / float64(summary.Total)
	assert.Less(t, ratio, 0.6, "priority fraction must stay bounded for template defects")

	// One template signature: one representative Priority OFI left.
	assert.Equal(t, 1, asg.TemplateIssues)
	assert.Equal(t, 1, summary.PriorityOFICount)
	assert.Equal(t, pages-1, asg.Downgraded)
}

func TestAssign_DoesNotMutateInput(t *testing.T) {
	categories, roles, site := templateDefectAudit(10)
	before := Aggregate(categories)

	a := NewPriorityAssigner(0, 0, zap.NewNop())
	a.Assign(categories, roles, site)

	assert.Equal(t, before, Aggregate(categories), "assigner must not mutate its input")
}

func TestAssign_SumInvariantPreserved(t *testing.T) {
	categories, roles, site := templateDefectAudit(12)

	a := NewPriorityAssigner(0, 0, zap.NewNop())
	asg := a.Assign(categories, roles, site)

	s := Aggregate(asg.Categories)
	assert.Equal(t, s.Total, s.PriorityOFICount+s.OFICount+s.OKCount+s.NACount)

	// Downgrading never changes the number of findings.
	assert.Equal(t, Aggregate(categories).Total, s.Total)
}

func TestAssign_BelowThresholdUntouched(t *testing.T) {
	// Two occurrences sit below every derived threshold.
	categories, roles, site := templateDefectAudit(2)

	a := NewPriorityAssigner(0, 0, zap.NewNop())
	asg := a.Assign(categories, roles, site)

	summary := Aggregate(asg.Categories)
	assert.Equal(t, 2, summary.PriorityOFICount)
	assert.Zero(t, asg.TemplateIssues)
	assert.Zero(t, asg.Downgraded)
}

func TestAssign_TemplateFixWeighsLessThanPageFixes(t *testing.T) {
	// Same defect count, once clustered under a single signature and
	// once spread across distinct rules.
	clustered, clusteredRoles, site := templateDefectAudit(8)

	spread := domain.AuditCategory{Name: domain.CategoryOnPage}
	spreadRoles := map[string]domain.PageRole{}
	for i := 0; i < 8; i++ {
		url := fmt.Sprintf("https://example.com/s-%d", i)
		spreadRoles[url] = domain.RoleGeneric
		spread.Items = append(spread.Items, domain.AuditItem{
			Name:     fmt.Sprintf("Distinct Rule %d", i),
			Category: domain.CategoryOnPage,
			Status:   domain.StatusPriorityOFI,
			PageURL:  url,
		})
	}

	a := NewPriorityAssigner(0, 0, zap.NewNop())
	clusteredAsg := a.Assign(clustered, clusteredRoles, site)
	spreadAsg := a.Assign([]domain.AuditCategory{spread}, spreadRoles, site)

	assert.Less(t, clusteredAsg.FixEffort, spreadAsg.FixEffort,
		"one template-wide fix must cost less than eight page-specific fixes")
}

func TestAssign_Deterministic(t *testing.T) {
	categories, roles, site := templateDefectAudit(20)
	a := NewPriorityAssigner(0, 0, zap.NewNop())

	first := a.Assign(categories, roles, site)
	second := a.Assign(categories, roles, site)
	assert.Equal(t, first, second)
}

func TestTemplateMinOccurrences(t *testing.T) {
	assert.Equal(t, 3, templateMinOccurrences(0))
	assert.Equal(t, 3, templateMinOccurrences(10))
	assert.Equal(t, 5, templateMinOccurrences(20))
	assert.Equal(t, 25, templateMinOccurrences(100))
}
