package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

var errBatchRejected = errors.New("manual allocation batch rejected")

// AllocationUseCase applies credit documents and receipts against debts.
type AllocationUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	docRepo     DocumentRepository
	receiptRepo ReceiptRepository
	allocRepo   AllocationRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	alloc       allocator
	balances    balanceCache
	metrics     *metrics.Metrics
}

// NewAllocationUseCase creates a new AllocationUseCase.
func NewAllocationUseCase(
	txManager TransactionManager,
	retrier Retrier,
	docRepo DocumentRepository,
	receiptRepo ReceiptRepository,
	allocRepo AllocationRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *AllocationUseCase {
	return &AllocationUseCase{
		txManager:   txManager,
		retrier:     retrier,
		docRepo:     docRepo,
		receiptRepo: receiptRepo,
		allocRepo:   allocRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		alloc: allocator{
			docRepo:    docRepo,
			allocRepo:  allocRepo,
			outboxRepo: outboxRepo,
			idGen:      idGen,
		},
		balances: balanceCache{cache: cache},
		metrics:  metrics,
	}
}

// ApplyAllocationInput represents input for the allocation primitive.
type ApplyAllocationInput struct {
	SourceDocumentID string
	DebitDocumentID  string
	AmountBase       decimal.Decimal
}

// ApplyAllocation moves AmountBase of credit from a receipt or credit note to an
// invoice or debit note of the same party.
func (uc *AllocationUseCase) ApplyAllocation(ctx context.Context, input ApplyAllocationInput) (*domain.Allocation, error) {
	start := time.Now()

	if input.SourceDocumentID == "" || input.DebitDocumentID == "" {
		return nil, domain.ErrMissingDocumentID
	}
	if input.SourceDocumentID == input.DebitDocumentID {
		return nil, domain.ErrSameDocument
	}
	amount := input.AmountBase.Round(domain.BaseScale)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	var (
		allocation *domain.Allocation
		party      domain.PartyRef
	)
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		docs, err := uc.alloc.lockDocuments(ctx, tx, []string{input.SourceDocumentID, input.DebitDocumentID})
		if err != nil {
			return err
		}

		source, debit := docs[input.SourceDocumentID], docs[input.DebitDocumentID]
		allocation, err = uc.alloc.apply(ctx, tx, source, debit, amount, time.Now().UTC())
		if err != nil {
			return err
		}
		party = debit.Party()
		return nil
	})
	uc.metrics.ObserveOperation("allocation_apply", start, errorType(err))
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, party)
	uc.recordAllocations("primitive", allocation)

	return allocation, nil
}

// CoverInvoiceInput represents input for covering one debit with several credits.
type CoverInvoiceInput struct {
	PartyType              domain.PartyType
	PartyID                string
	TargetDebitExternalRef string
	Sources                []domain.CoverSource
}

// CoverInvoiceWithReceipts settles the party's invoice or debit note identified
// by its external reference using the given sources, all or nothing.
func (uc *AllocationUseCase) CoverInvoiceWithReceipts(ctx context.Context, input CoverInvoiceInput) ([]*domain.Allocation, error) {
	start := time.Now()

	party := domain.PartyRef{Type: input.PartyType, ID: input.PartyID}
	if err := party.Validate(); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(input.TargetDebitExternalRef)
	if ref == "" {
		return nil, domain.ErrMissingExternalRef
	}
	if len(input.Sources) == 0 {
		return nil, domain.ErrNoSources
	}
	for _, src := range input.Sources {
		if src.SourceDocumentID == "" {
			return nil, domain.ErrMissingDocumentID
		}
		if !src.AmountBase.Round(domain.BaseScale).IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
	}

	var allocations []*domain.Allocation
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		allocations = nil

		targets, err := uc.docRepo.FindActiveDebitsByExternalRef(ctx, party, ref)
		if err != nil {
			return err
		}
		switch len(targets) {
		case 0:
			return domain.ErrDocumentNotFound
		case 1:
		default:
			return domain.ErrAmbiguousDocument
		}
		targetID := targets[0].ID

		ids := []string{targetID}
		for _, src := range input.Sources {
			ids = append(ids, src.SourceDocumentID)
		}
		docs, err := uc.alloc.lockDocuments(ctx, tx, ids)
		if err != nil {
			return err
		}

		target := docs[targetID]
		// The target was resolved before locking; it may have been voided since.
		if !target.IsActive() {
			return domain.ErrDebitNotActive
		}

		now := time.Now().UTC()
		for _, src := range input.Sources {
			a, err := uc.alloc.apply(ctx, tx, docs[src.SourceDocumentID], target, src.AmountBase.Round(domain.BaseScale), now)
			if err != nil {
				return err
			}
			allocations = append(allocations, a)
		}
		return nil
	})
	uc.metrics.ObserveOperation("allocation_cover_invoice", start, errorType(err))
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, party)
	uc.recordAllocations("cover_invoice", allocations...)

	return allocations, nil
}

// ManualAllocationResult is the outcome of a manual batch preview or execution.
type ManualAllocationResult struct {
	Batch      *domain.AllocationBatch
	Violations []domain.Violation
	Warnings   []string
	CanExecute bool
}

func newManualAllocationResult(violations []domain.Violation) *ManualAllocationResult {
	return &ManualAllocationResult{
		Violations: violations,
		Warnings:   domain.Warnings(violations),
		CanExecute: len(violations) == 0,
	}
}

// PreviewManualAllocation validates a batch against the current state without writing.
func (uc *AllocationUseCase) PreviewManualAllocation(ctx context.Context, party domain.PartyRef, entries []domain.ManualAllocationEntry) (*ManualAllocationResult, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	entries = domain.RoundManualAllocation(entries)

	mirrors, err := uc.receiptRepo.MirrorDocumentIDs(ctx, receiptSourceIDs(entries))
	if err != nil {
		return nil, err
	}
	docs, err := uc.docRepo.GetByIDs(ctx, manualDocumentIDs(entries, mirrors))
	if err != nil {
		return nil, err
	}

	lookup := newLookup(docs, mirrors)
	return newManualAllocationResult(domain.ValidateManualAllocation(party, entries, lookup)), nil
}

// ExecuteManualAllocationInput represents input for executing a manual batch.
type ExecuteManualAllocationInput struct {
	PartyType domain.PartyType
	PartyID   string
	CreatedBy string
	Entries   []domain.ManualAllocationEntry
}

// ExecuteManualAllocation re-validates the batch on locked rows and, when it is
// clean, writes it in one transaction. A batch with violations writes nothing.
func (uc *AllocationUseCase) ExecuteManualAllocation(ctx context.Context, input ExecuteManualAllocationInput) (*ManualAllocationResult, error) {
	start := time.Now()

	party := domain.PartyRef{Type: input.PartyType, ID: input.PartyID}
	if err := party.Validate(); err != nil {
		return nil, err
	}
	entries := domain.RoundManualAllocation(input.Entries)

	var result *ManualAllocationResult
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		result = nil

		mirrors, err := uc.receiptRepo.MirrorDocumentIDs(ctx, receiptSourceIDs(entries))
		if err != nil {
			return err
		}
		ids := uniqueSorted(manualDocumentIDs(entries, mirrors))
		docs, err := uc.docRepo.GetByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}

		lookup := newLookup(docs, mirrors)
		if violations := domain.ValidateManualAllocation(party, entries, lookup); len(violations) > 0 {
			result = newManualAllocationResult(violations)
			return errBatchRejected
		}

		batch, err := uc.writeBatch(ctx, tx, party, input.CreatedBy, domain.PlanManualAllocation(entries, lookup), lookup)
		if err != nil {
			return err
		}

		result = newManualAllocationResult(nil)
		result.Batch = batch
		return nil
	})
	if errors.Is(err, errBatchRejected) {
		uc.metrics.ObserveOperation("allocation_manual_execute", start, "")
		if uc.metrics != nil {
			uc.metrics.ManualBatches.WithLabelValues("rejected").Inc()
		}
		return result, nil
	}
	uc.metrics.ObserveOperation("allocation_manual_execute", start, errorType(err))
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, party)
	if uc.metrics != nil {
		uc.metrics.ManualBatches.WithLabelValues("executed").Inc()
		uc.metrics.AllocationsApplied.WithLabelValues("manual").Add(float64(len(result.Batch.Items)))
	}

	return result, nil
}

func (uc *AllocationUseCase) writeBatch(
	ctx context.Context,
	tx Transaction,
	party domain.PartyRef,
	createdBy string,
	planned []domain.PlannedAllocation,
	lookup domain.ManualAllocationLookup,
) (*domain.AllocationBatch, error) {
	now := time.Now().UTC()
	batch := &domain.AllocationBatch{
		ID:        uc.idGen.Generate(),
		PartyType: party.Type,
		PartyID:   party.ID,
		CreatedBy: createdBy,
		TotalBase: decimal.Zero,
		CreatedAt: now,
	}

	allocations := make([]*domain.Allocation, 0, len(planned))
	deltas := make(map[string]decimal.Decimal)
	var touched []string
	addDelta := func(id string, amount decimal.Decimal) {
		if _, ok := deltas[id]; !ok {
			touched = append(touched, id)
		}
		deltas[id] = deltas[id].Add(amount)
	}

	for _, p := range planned {
		a := &domain.Allocation{
			ID:               uc.idGen.Generate(),
			SourceKind:       p.SourceKind,
			SourceDocumentID: p.SourceDocumentID,
			DebitDocumentID:  p.DebitDocumentID,
			AmountBase:       p.AmountBase,
			BatchID:          &batch.ID,
			CreatedAt:        now,
		}
		allocations = append(allocations, a)
		batch.Items = append(batch.Items, domain.AllocationBatchItem{
			ID:               uc.idGen.Generate(),
			BatchID:          batch.ID,
			AllocationID:     a.ID,
			SourceKind:       p.SourceKind,
			SourceDocumentID: p.SourceDocumentID,
			DebitDocumentID:  p.DebitDocumentID,
			AmountBase:       p.AmountBase,
		})
		batch.TotalBase = batch.TotalBase.Add(p.AmountBase)
		addDelta(p.SourceDocumentID, p.AmountBase)
		addDelta(p.DebitDocumentID, p.AmountBase)
	}

	if err := uc.allocRepo.CreateBatch(ctx, tx, batch, allocations); err != nil {
		return nil, err
	}

	for _, id := range touched {
		doc := lookup.Documents[id]
		doc.PendingBase = doc.PendingBase.Sub(deltas[id])
		doc.UpdatedAt = now
		if err := doc.CheckPendingBounds(); err != nil {
			return nil, err
		}
		if err := uc.docRepo.UpdatePending(ctx, tx, id, doc.PendingBase, now); err != nil {
			return nil, err
		}
	}

	event := newOutboxEvent(uc.idGen, domain.PartyRef{Type: batch.PartyType, ID: batch.PartyID}, domain.AggregateTypeAllocationBatch, batch.ID, domain.EventTypeAllocationBatchExecuted, map[string]any{
		"batch_id":   batch.ID,
		"party_type": string(batch.PartyType),
		"party_id":   batch.PartyID,
		"total_base": batch.TotalBase.String(),
		"items":      len(batch.Items),
	}, now)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	return batch, nil
}

// ListDocumentAllocations lists the allocations where the document is source or debit.
func (uc *AllocationUseCase) ListDocumentAllocations(ctx context.Context, documentID string) ([]*domain.Allocation, error) {
	if documentID == "" {
		return nil, domain.ErrMissingDocumentID
	}
	if _, err := uc.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return uc.allocRepo.ListByDocument(ctx, documentID)
}

// GetBatch retrieves an executed manual allocation batch.
func (uc *AllocationUseCase) GetBatch(ctx context.Context, id string) (*domain.AllocationBatch, error) {
	return uc.allocRepo.GetBatch(ctx, id)
}

func (uc *AllocationUseCase) recordAllocations(path string, allocations ...*domain.Allocation) {
	if uc.metrics == nil {
		return
	}
	for _, a := range allocations {
		uc.metrics.AllocationsApplied.WithLabelValues(path).Inc()
		uc.metrics.AllocationAmount.Observe(a.AmountBase.InexactFloat64())
	}
}

func receiptSourceIDs(entries []domain.ManualAllocationEntry) []string {
	var ids []string
	for _, e := range entries {
		for _, src := range e.Sources {
			if src.SourceKind == domain.SourceKindReceipt && src.SourceID != "" {
				ids = append(ids, src.SourceID)
			}
		}
	}
	return uniqueSorted(ids)
}

func manualDocumentIDs(entries []domain.ManualAllocationEntry, mirrors map[string]string) []string {
	var ids []string
	for _, e := range entries {
		if e.DebitDocumentID != "" {
			ids = append(ids, e.DebitDocumentID)
		}
		for _, src := range e.Sources {
			switch src.SourceKind {
			case domain.SourceKindReceipt:
				if id, ok := mirrors[src.SourceID]; ok {
					ids = append(ids, id)
				}
			case domain.SourceKindCreditDocument:
				if src.SourceID != "" {
					ids = append(ids, src.SourceID)
				}
			}
		}
	}
	return uniqueSorted(ids)
}

func newLookup(docs []*domain.LedgerDocument, mirrors map[string]string) domain.ManualAllocationLookup {
	lookup := domain.ManualAllocationLookup{
		Documents:      make(map[string]*domain.LedgerDocument, len(docs)),
		ReceiptMirrors: mirrors,
	}
	for _, d := range docs {
		lookup.Documents[d.ID] = d
	}
	return lookup
}
