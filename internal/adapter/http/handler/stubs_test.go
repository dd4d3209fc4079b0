package handler

import (
	"context"
	"time"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
)

type ingestionStub struct {
	upsertFn func(ctx context.Context, input usecase.FiscalDocumentInput) (string, error)
	cancelFn func(ctx context.Context, partyType domain.PartyType, externalRefID string, kind domain.DocumentKind) error
}

func (s *ingestionStub) UpsertFiscalDocument(ctx context.Context, input usecase.FiscalDocumentInput) (string, error) {
	return s.upsertFn(ctx, input)
}

func (s *ingestionStub) CancelFiscalDocument(ctx context.Context, partyType domain.PartyType, externalRefID string, kind domain.DocumentKind) error {
	return s.cancelFn(ctx, partyType, externalRefID, kind)
}

type documentQueryStub struct {
	getFn  func(ctx context.Context, id string) (*domain.LedgerDocument, error)
	listFn func(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error)
}

func (s *documentQueryStub) GetDocument(ctx context.Context, id string) (*domain.LedgerDocument, error) {
	return s.getFn(ctx, id)
}

func (s *documentQueryStub) GetPartyDocuments(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	return s.listFn(ctx, party)
}

type receiptStub struct {
	createFn func(ctx context.Context, input usecase.CreateReceiptInput) (*domain.Receipt, error)
	getFn    func(ctx context.Context, id string) (*domain.Receipt, error)
	voidFn   func(ctx context.Context, id string) (*domain.Receipt, error)
}

func (s *receiptStub) CreateReceipt(ctx context.Context, input usecase.CreateReceiptInput) (*domain.Receipt, error) {
	return s.createFn(ctx, input)
}

func (s *receiptStub) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	return s.getFn(ctx, id)
}

func (s *receiptStub) VoidReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	return s.voidFn(ctx, id)
}

type allocationStub struct {
	applyFn   func(ctx context.Context, input usecase.ApplyAllocationInput) (*domain.Allocation, error)
	coverFn   func(ctx context.Context, input usecase.CoverInvoiceInput) ([]*domain.Allocation, error)
	previewFn func(ctx context.Context, party domain.PartyRef, entries []domain.ManualAllocationEntry) (*usecase.ManualAllocationResult, error)
	executeFn func(ctx context.Context, input usecase.ExecuteManualAllocationInput) (*usecase.ManualAllocationResult, error)
	listFn    func(ctx context.Context, documentID string) ([]*domain.Allocation, error)
	batchFn   func(ctx context.Context, id string) (*domain.AllocationBatch, error)
}

func (s *allocationStub) ApplyAllocation(ctx context.Context, input usecase.ApplyAllocationInput) (*domain.Allocation, error) {
	return s.applyFn(ctx, input)
}

func (s *allocationStub) CoverInvoiceWithReceipts(ctx context.Context, input usecase.CoverInvoiceInput) ([]*domain.Allocation, error) {
	return s.coverFn(ctx, input)
}

func (s *allocationStub) PreviewManualAllocation(ctx context.Context, party domain.PartyRef, entries []domain.ManualAllocationEntry) (*usecase.ManualAllocationResult, error) {
	return s.previewFn(ctx, party, entries)
}

func (s *allocationStub) ExecuteManualAllocation(ctx context.Context, input usecase.ExecuteManualAllocationInput) (*usecase.ManualAllocationResult, error) {
	return s.executeFn(ctx, input)
}

func (s *allocationStub) ListDocumentAllocations(ctx context.Context, documentID string) ([]*domain.Allocation, error) {
	return s.listFn(ctx, documentID)
}

func (s *allocationStub) GetBatch(ctx context.Context, id string) (*domain.AllocationBatch, error) {
	return s.batchFn(ctx, id)
}

type balanceStub struct {
	balancesFn    func(ctx context.Context, party domain.PartyRef) (*domain.Balances, error)
	ledgerFn      func(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) (*usecase.LedgerPage, error)
	selectablesFn func(ctx context.Context, party domain.PartyRef) (*domain.Selectables, error)
	creditsFn     func(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error)
	statementFn   func(ctx context.Context, party domain.PartyRef, from, to time.Time) (*domain.Statement, error)
}

func (s *balanceStub) GetBalances(ctx context.Context, party domain.PartyRef) (*domain.Balances, error) {
	return s.balancesFn(ctx, party)
}

func (s *balanceStub) GetLedger(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) (*usecase.LedgerPage, error) {
	return s.ledgerFn(ctx, party, filter, limit, offset)
}

func (s *balanceStub) GetSelectablesForReceipt(ctx context.Context, party domain.PartyRef) (*domain.Selectables, error) {
	return s.selectablesFn(ctx, party)
}

func (s *balanceStub) GetReceiptCredits(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	return s.creditsFn(ctx, party)
}

func (s *balanceStub) GetStatement(ctx context.Context, party domain.PartyRef, from, to time.Time) (*domain.Statement, error) {
	return s.statementFn(ctx, party, from, to)
}

type sequenceStub struct {
	nextFn func(ctx context.Context, scope string) (int64, error)
	peekFn func(ctx context.Context, scope string) (*domain.NumberingSequence, error)
}

func (s *sequenceStub) GetNext(ctx context.Context, scope string) (int64, error) {
	return s.nextFn(ctx, scope)
}

func (s *sequenceStub) Peek(ctx context.Context, scope string) (*domain.NumberingSequence, error) {
	return s.peekFn(ctx, scope)
}

type consistencyStub struct {
	report *domain.ConsistencyReport
	err    error
}

func (s *consistencyStub) Check(ctx context.Context) (*domain.ConsistencyReport, error) {
	return s.report, s.err
}
