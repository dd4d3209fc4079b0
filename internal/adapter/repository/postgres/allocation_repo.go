package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
	"github.com/iho/payledger/internal/usecase"
)

// AllocationRepository implements usecase.AllocationRepository.
type AllocationRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewAllocationRepository creates a new AllocationRepository.
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create appends one allocation.
func (r *AllocationRepository) Create(ctx context.Context, tx usecase.Transaction, allocation *domain.Allocation) error {
	return createAllocation(ctx, generated.New(pgxTxOf(tx)), allocation)
}

// CreateBatch writes the batch header first, then each allocation followed by its item.
func (r *AllocationRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, batch *domain.AllocationBatch, allocations []*domain.Allocation) error {
	if len(batch.Items) != len(allocations) {
		return fmt.Errorf("batch %s has %d items for %d allocations", batch.ID, len(batch.Items), len(allocations))
	}

	queries := generated.New(pgxTxOf(tx))

	err := queries.CreateAllocationBatch(ctx, generated.CreateAllocationBatchParams{
		ID:        batch.ID,
		PartyType: string(batch.PartyType),
		PartyID:   batch.PartyID,
		CreatedBy: batch.CreatedBy,
		TotalBase: decimalToNumeric(batch.TotalBase),
		CreatedAt: timeToPgTimestamptz(batch.CreatedAt),
	})
	if err != nil {
		return mapConstraintError(err)
	}

	for i, a := range allocations {
		if err := createAllocation(ctx, queries, a); err != nil {
			return err
		}

		item := batch.Items[i]
		err := queries.CreateAllocationBatchItem(ctx, generated.CreateAllocationBatchItemParams{
			ID:               item.ID,
			BatchID:          batch.ID,
			AllocationID:     item.AllocationID,
			SourceKind:       string(item.SourceKind),
			SourceDocumentID: item.SourceDocumentID,
			DebitDocumentID:  item.DebitDocumentID,
			AmountBase:       decimalToNumeric(item.AmountBase),
		})
		if err != nil {
			return mapConstraintError(err)
		}
	}

	return nil
}

// CountBySource counts the allocations drawing on a source document.
func (r *AllocationRepository) CountBySource(ctx context.Context, tx usecase.Transaction, sourceDocumentID string) (int, error) {
	queries := generated.New(pgxTxOf(tx))

	n, err := queries.CountAllocationsBySource(ctx, sourceDocumentID)
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

// ListByDocument lists allocations where the document is either side, in creation order.
func (r *AllocationRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Allocation, error) {
	rows, err := r.queries.ListAllocationsByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Allocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Allocation{
			ID:               row.ID,
			SourceKind:       domain.AllocationSourceKind(row.SourceKind),
			SourceDocumentID: row.SourceDocumentID,
			DebitDocumentID:  row.DebitDocumentID,
			AmountBase:       numericToDecimal(row.AmountBase),
			BatchID:          pgTextToStringPtr(row.BatchID),
			CreatedAt:        row.CreatedAt.Time,
		})
	}

	return out, nil
}

// GetBatch retrieves a batch with its items.
func (r *AllocationRepository) GetBatch(ctx context.Context, id string) (*domain.AllocationBatch, error) {
	row, err := r.queries.GetAllocationBatch(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: allocation batch", domain.ErrNotFound)
		}

		return nil, err
	}

	items, err := r.queries.ListAllocationBatchItems(ctx, id)
	if err != nil {
		return nil, err
	}

	batch := &domain.AllocationBatch{
		ID:        row.ID,
		PartyType: domain.PartyType(row.PartyType),
		PartyID:   row.PartyID,
		CreatedBy: row.CreatedBy,
		TotalBase: numericToDecimal(row.TotalBase),
		CreatedAt: row.CreatedAt.Time,
		Items:     make([]domain.AllocationBatchItem, 0, len(items)),
	}
	for _, it := range items {
		batch.Items = append(batch.Items, domain.AllocationBatchItem{
			ID:               it.ID,
			BatchID:          it.BatchID,
			AllocationID:     it.AllocationID,
			SourceKind:       domain.AllocationSourceKind(it.SourceKind),
			SourceDocumentID: it.SourceDocumentID,
			DebitDocumentID:  it.DebitDocumentID,
			AmountBase:       numericToDecimal(it.AmountBase),
		})
	}

	return batch, nil
}

func createAllocation(ctx context.Context, queries *generated.Queries, a *domain.Allocation) error {
	err := queries.CreateAllocation(ctx, generated.CreateAllocationParams{
		ID:               a.ID,
		SourceKind:       string(a.SourceKind),
		SourceDocumentID: a.SourceDocumentID,
		DebitDocumentID:  a.DebitDocumentID,
		AmountBase:       decimalToNumeric(a.AmountBase),
		BatchID:          stringPtrToPgText(a.BatchID),
		CreatedAt:        timeToPgTimestamptz(a.CreatedAt),
	})

	return mapConstraintError(err)
}
