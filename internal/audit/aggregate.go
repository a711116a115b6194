package audit

import "github.com/nmang004/rival-outranker-sub013/internal/domain"

// Aggregate rolls the category findings into a summary. Pure and
// recomputed on every call; an absent optional category simply
// contributes nothing.
func Aggregate(categories []domain.AuditCategory) domain.AuditSummary {
	var s domain.AuditSummary
	for _, c := range categories {
		for _, it := range c.Items {
			switch it.Status {
			case domain.StatusPriorityOFI:
				s.PriorityOFICount++
			case domain.StatusOFI:
				s.OFICount++
			case domain.StatusOK:
				s.OKCount++
			case domain.StatusNA:
				s.NACount++
			}
		}
	}
	s.Total = s.PriorityOFICount + s.OFICount + s.OKCount + s.NACount
	return s
}
