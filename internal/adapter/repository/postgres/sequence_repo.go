package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
	"github.com/iho/payledger/internal/usecase"
)

// SequenceRepository implements usecase.SequenceRepository.
type SequenceRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewSequenceRepository creates a new SequenceRepository.
func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Next issues the next number of scope in a single upsert. The row stays locked
// until tx ends, so a rolled back transaction gives its number back.
func (r *SequenceRepository) Next(ctx context.Context, tx usecase.Transaction, scope string) (int64, error) {
	queries := generated.New(pgxTxOf(tx))

	return queries.NextSequenceNumber(ctx, scope)
}

// Peek returns the number the next call to Next would issue.
func (r *SequenceRepository) Peek(ctx context.Context, scope string) (int64, error) {
	row, err := r.queries.GetSequence(ctx, scope)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 1, nil
		}

		return 0, err
	}

	return row.NextNumber, nil
}
