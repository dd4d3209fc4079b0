package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
)

// allocator applies credit to debits on documents already locked by the caller.
type allocator struct {
	docRepo    DocumentRepository
	allocRepo  AllocationRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
}

// lockDocuments locks ids in sorted order and returns them by id. Every id must exist.
func (a allocator) lockDocuments(ctx context.Context, tx Transaction, ids []string) (map[string]*domain.LedgerDocument, error) {
	ids = uniqueSorted(ids)

	docs, err := a.docRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if len(docs) != len(ids) {
		return nil, domain.ErrDocumentNotFound
	}

	byID := make(map[string]*domain.LedgerDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	return byID, nil
}

// apply records one allocation from source to debit and decrements both
// pending balances. The in-memory documents are updated too, so later calls in
// the same transaction see the reduced balances.
func (a allocator) apply(ctx context.Context, tx Transaction, source, debit *domain.LedgerDocument, amount decimal.Decimal, now time.Time) (*domain.Allocation, error) {
	alloc, err := domain.NewAllocation(a.idGen.Generate(), source, debit, amount, now)
	if err != nil {
		return nil, err
	}

	if err := a.allocRepo.Create(ctx, tx, alloc); err != nil {
		return nil, err
	}

	source.PendingBase = source.PendingBase.Sub(amount)
	source.UpdatedAt = now
	if err := a.docRepo.UpdatePending(ctx, tx, source.ID, source.PendingBase, now); err != nil {
		return nil, err
	}

	debit.PendingBase = debit.PendingBase.Sub(amount)
	debit.UpdatedAt = now
	if err := a.docRepo.UpdatePending(ctx, tx, debit.ID, debit.PendingBase, now); err != nil {
		return nil, err
	}

	event := newOutboxEvent(a.idGen, debit.Party(), domain.AggregateTypeAllocation, alloc.ID, domain.EventTypeAllocationApplied, map[string]any{
		"allocation_id":      alloc.ID,
		"source_document_id": alloc.SourceDocumentID,
		"debit_document_id":  alloc.DebitDocumentID,
		"amount_base":        alloc.AmountBase.String(),
	}, now)
	if err := a.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	return alloc, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
