package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
	"github.com/iho/payledger/internal/usecase"
)

// ConsistencyRepository implements usecase.ConsistencyRepository.
type ConsistencyRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewConsistencyRepository creates a new ConsistencyRepository.
func NewConsistencyRepository(pool *pgxpool.Pool) *ConsistencyRepository {
	return &ConsistencyRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// DocumentAllocationTotals pairs every document with the sum of allocations touching it.
func (r *ConsistencyRepository) DocumentAllocationTotals(ctx context.Context) ([]usecase.DocumentAllocationTotal, error) {
	rows, err := r.queries.ListDocumentAllocationTotals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.DocumentAllocationTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.DocumentAllocationTotal{
			Document: &domain.LedgerDocument{
				ID:                row.ID,
				PartyType:         domain.PartyType(row.PartyType),
				PartyID:           row.PartyID,
				Kind:              domain.DocumentKind(row.Kind),
				Status:            domain.DocumentStatus(row.Status),
				ExternalRefID:     row.ExternalRefID,
				ExternalRefNumber: row.ExternalRefNumber,
				DocumentDate:      row.DocumentDate.Time,
				Currency:          row.Currency,
				FxRate:            numericToDecimal(row.FxRate),
				AmountOriginal:    numericToDecimal(row.AmountOriginal),
				AmountBase:        numericToDecimal(row.AmountBase),
				PendingBase:       numericToDecimal(row.PendingBase),
				CreatedAt:         row.CreatedAt.Time,
				UpdatedAt:         row.UpdatedAt.Time,
				VoidedAt:          pgTimestamptzToTimePtr(row.VoidedAt),
			},
			Allocated: numericToDecimal(row.Allocated),
		})
	}

	return out, nil
}
