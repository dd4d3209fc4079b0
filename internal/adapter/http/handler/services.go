package handler

import (
	"context"
	"time"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
)

// IngestionService accepts documents pushed by external billing systems.
type IngestionService interface {
	UpsertFiscalDocument(ctx context.Context, input usecase.FiscalDocumentInput) (string, error)
	CancelFiscalDocument(ctx context.Context, partyType domain.PartyType, externalRefID string, kind domain.DocumentKind) error
}

// DocumentQueryService reads ledger documents.
type DocumentQueryService interface {
	GetDocument(ctx context.Context, id string) (*domain.LedgerDocument, error)
	GetPartyDocuments(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error)
}

// ReceiptService records and voids receipts.
type ReceiptService interface {
	CreateReceipt(ctx context.Context, input usecase.CreateReceiptInput) (*domain.Receipt, error)
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
	VoidReceipt(ctx context.Context, id string) (*domain.Receipt, error)
}

// AllocationService applies credit to debt.
type AllocationService interface {
	ApplyAllocation(ctx context.Context, input usecase.ApplyAllocationInput) (*domain.Allocation, error)
	CoverInvoiceWithReceipts(ctx context.Context, input usecase.CoverInvoiceInput) ([]*domain.Allocation, error)
	PreviewManualAllocation(ctx context.Context, party domain.PartyRef, entries []domain.ManualAllocationEntry) (*usecase.ManualAllocationResult, error)
	ExecuteManualAllocation(ctx context.Context, input usecase.ExecuteManualAllocationInput) (*usecase.ManualAllocationResult, error)
	ListDocumentAllocations(ctx context.Context, documentID string) ([]*domain.Allocation, error)
	GetBatch(ctx context.Context, id string) (*domain.AllocationBatch, error)
}

// BalanceService answers party balance questions.
type BalanceService interface {
	GetBalances(ctx context.Context, party domain.PartyRef) (*domain.Balances, error)
	GetLedger(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) (*usecase.LedgerPage, error)
	GetSelectablesForReceipt(ctx context.Context, party domain.PartyRef) (*domain.Selectables, error)
	GetReceiptCredits(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error)
	GetStatement(ctx context.Context, party domain.PartyRef, from, to time.Time) (*domain.Statement, error)
}

// SequenceService issues gapless numbers.
type SequenceService interface {
	GetNext(ctx context.Context, scope string) (int64, error)
	Peek(ctx context.Context, scope string) (*domain.NumberingSequence, error)
}

// ConsistencyService checks the conservation rules over the whole ledger.
type ConsistencyService interface {
	Check(ctx context.Context) (*domain.ConsistencyReport, error)
}
