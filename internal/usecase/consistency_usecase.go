package usecase

import (
	"context"
	"time"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

// ConsistencyUseCase verifies the conservation rules of the ledger against the store:
// every document keeps 0 <= pending <= amount, and amount - pending equals the
// allocations drawn from (credits) or applied to (debits) it.
type ConsistencyUseCase struct {
	repo    ConsistencyRepository
	metrics *metrics.Metrics
}

// NewConsistencyUseCase creates a new ConsistencyUseCase.
func NewConsistencyUseCase(repo ConsistencyRepository, metrics *metrics.Metrics) *ConsistencyUseCase {
	return &ConsistencyUseCase{repo: repo, metrics: metrics}
}

// Check inspects every document and reports the ones that break the rules.
func (uc *ConsistencyUseCase) Check(ctx context.Context) (*domain.ConsistencyReport, error) {
	start := time.Now()

	totals, err := uc.repo.DocumentAllocationTotals(ctx)
	uc.metrics.ObserveOperation("consistency_check", start, errorType(err))
	if err != nil {
		return nil, err
	}

	report := &domain.ConsistencyReport{
		CheckedAt:        time.Now().UTC(),
		DocumentsChecked: len(totals),
		Issues:           make([]domain.ConsistencyIssue, 0),
	}
	for _, t := range totals {
		if issue := domain.CheckDocumentConsistency(t.Document, t.Allocated); issue != nil {
			report.Issues = append(report.Issues, *issue)
		}
	}
	report.Consistent = len(report.Issues) == 0

	if uc.metrics != nil {
		uc.metrics.ConsistencyIssues.Set(float64(len(report.Issues)))
	}

	return report, nil
}
