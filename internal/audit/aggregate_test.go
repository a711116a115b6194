package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

func TestAggregate(t *testing.T) {
	categories := []domain.AuditCategory{
		{
			Name: domain.CategoryOnPage,
			Items: []domain.AuditItem{
				{Name: "a", Status: domain.StatusPriorityOFI},
				{Name: "b", Status: domain.StatusOFI},
				{Name: "c", Status: domain.StatusOK},
				{Name: "d", Status: domain.StatusOK},
			},
		},
		{
			Name: domain.CategoryContactPage,
			Items: []domain.AuditItem{
				{Name: "e", Status: domain.StatusNA},
			},
		},
	}

	s := Aggregate(categories)
	assert.Equal(t, 1, s.PriorityOFICount)
	assert.Equal(t, 1, s.OFICount)
	assert.Equal(t, 2, s.OKCount)
	assert.Equal(t, 1, s.NACount)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, s.Total, s.PriorityOFICount+s.OFICount+s.OKCount+s.NACount)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Zero(t, Aggregate(nil).Total)
	assert.Zero(t, Aggregate([]domain.AuditCategory{{Name: domain.CategoryOnPage}}).Total)
}

func TestAggregate_Recomputable(t *testing.T) {
	categories := []domain.AuditCategory{
		{Name: domain.CategoryOnPage, Items: []domain.AuditItem{{Name: "a", Status: domain.StatusOK}}},
	}

	first := Aggregate(categories)
	categories[0].Items[0].Status = domain.StatusOFI
	second := Aggregate(categories)

	assert.Equal(t, 1, first.OKCount)
	assert.Equal(t, 1, second.OFICount)
	assert.Zero(t, second.OKCount)
}
