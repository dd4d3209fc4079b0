package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationSourceKind tells how the source of an allocation was referenced.
type AllocationSourceKind string

const (
	SourceKindReceipt        AllocationSourceKind = "receipt"
	SourceKindCreditDocument AllocationSourceKind = "credit_document"
)

// IsValid reports whether the source kind is known.
func (k AllocationSourceKind) IsValid() bool {
	return k == SourceKindReceipt || k == SourceKindCreditDocument
}

// SourceKindFor returns the source kind of a credit-carrying document.
func SourceKindFor(kind DocumentKind) AllocationSourceKind {
	if kind == KindReceipt {
		return SourceKindReceipt
	}
	return SourceKindCreditDocument
}

// Allocation records that AmountBase of credit from SourceDocumentID settled
// part of DebitDocumentID. Allocations are append-only.
type Allocation struct {
	CreatedAt        time.Time
	BatchID          *string
	ID               string
	SourceKind       AllocationSourceKind
	SourceDocumentID string
	DebitDocumentID  string
	AmountBase       decimal.Decimal
}

// NewAllocation validates and builds an allocation between two locked documents.
// It does not touch the documents' pending balances.
func NewAllocation(id string, source, debit *LedgerDocument, amount decimal.Decimal, now time.Time) (*Allocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if err := source.ValidateAsSource(amount); err != nil {
		return nil, err
	}
	if err := debit.ValidateAsDebit(amount); err != nil {
		return nil, err
	}
	if source.Party() != debit.Party() {
		return nil, ErrPartyMismatch
	}

	return &Allocation{
		ID:               id,
		SourceKind:       SourceKindFor(source.Kind),
		SourceDocumentID: source.ID,
		DebitDocumentID:  debit.ID,
		AmountBase:       amount,
		CreatedAt:        now,
	}, nil
}

// AllocationBatch groups the allocations created by one manual execution.
type AllocationBatch struct {
	CreatedAt time.Time
	ID        string
	PartyType PartyType
	PartyID   string
	CreatedBy string
	TotalBase decimal.Decimal
	Items     []AllocationBatchItem
}

// AllocationBatchItem is one source-to-debit line of a batch.
type AllocationBatchItem struct {
	ID               string
	BatchID          string
	AllocationID     string
	SourceKind       AllocationSourceKind
	SourceDocumentID string
	DebitDocumentID  string
	AmountBase       decimal.Decimal
}

// CoverSource is one credit offered to cover an invoice.
type CoverSource struct {
	SourceDocumentID string
	AmountBase       decimal.Decimal
}
