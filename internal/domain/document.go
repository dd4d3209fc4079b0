package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyType identifies which side of the business a party is on.
type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeSupplier PartyType = "supplier"
)

// IsValid reports whether the party type is known.
func (p PartyType) IsValid() bool {
	return p == PartyTypeCustomer || p == PartyTypeSupplier
}

// DocumentKind is the kind of a money-moving ledger document.
type DocumentKind string

const (
	KindInvoice    DocumentKind = "invoice"
	KindDebitNote  DocumentKind = "debit_note"
	KindCreditNote DocumentKind = "credit_note"
	KindReceipt    DocumentKind = "receipt"
)

// IsValid reports whether the kind is known.
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindInvoice, KindDebitNote, KindCreditNote, KindReceipt:
		return true
	}
	return false
}

// IsDebit reports whether documents of this kind carry debt.
func (k DocumentKind) IsDebit() bool {
	return k == KindInvoice || k == KindDebitNote
}

// IsCredit reports whether documents of this kind carry credit that can be allocated.
func (k DocumentKind) IsCredit() bool {
	return k == KindCreditNote || k == KindReceipt
}

// DocumentStatus is the lifecycle state of a ledger document.
type DocumentStatus string

const (
	StatusActive DocumentStatus = "active"
	StatusVoided DocumentStatus = "voided"
)

// IsValid reports whether the status is known.
func (s DocumentStatus) IsValid() bool {
	return s == StatusActive || s == StatusVoided
}

// PartyRef identifies a party. Parties are owned elsewhere; the ledger only keys on them.
type PartyRef struct {
	Type PartyType
	ID   string
}

// Validate checks that the reference is usable.
func (p PartyRef) Validate() error {
	if !p.Type.IsValid() {
		return ErrInvalidPartyType
	}
	if p.ID == "" {
		return ErrMissingPartyID
	}
	return nil
}

// LedgerDocument is the canonical record of a document that moves money between
// the company and a party. PendingBase caches the unconsumed part of AmountBase.
type LedgerDocument struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DocumentDate      time.Time
	VoidedAt          *time.Time
	ID                string
	PartyType         PartyType
	PartyID           string
	Kind              DocumentKind
	Status            DocumentStatus
	ExternalRefID     string
	ExternalRefNumber string
	Currency          string
	FxRate            decimal.Decimal
	AmountOriginal    decimal.Decimal
	AmountBase        decimal.Decimal
	PendingBase       decimal.Decimal
}

// Party returns the party the document belongs to.
func (d *LedgerDocument) Party() PartyRef {
	return PartyRef{Type: d.PartyType, ID: d.PartyID}
}

// IsActive reports whether the document can still take part in allocations.
func (d *LedgerDocument) IsActive() bool {
	return d.Status == StatusActive
}

// Allocated returns the part of AmountBase already consumed by allocations.
func (d *LedgerDocument) Allocated() decimal.Decimal {
	return d.AmountBase.Sub(d.PendingBase)
}

// CheckPendingBounds verifies 0 <= PendingBase <= AmountBase.
func (d *LedgerDocument) CheckPendingBounds() error {
	if d.PendingBase.IsNegative() || d.PendingBase.GreaterThan(d.AmountBase) {
		return ErrPendingOutOfBounds
	}
	return nil
}

// Correct applies a new base amount to an existing document, keeping what has
// already been allocated against it. It fails if the new amount would not cover
// the allocations, since PendingBase would go negative.
func (d *LedgerDocument) Correct(amountBase decimal.Decimal) error {
	allocated := d.Allocated()
	if amountBase.LessThan(allocated) {
		return ErrAmountBelowAllocated
	}
	d.AmountBase = amountBase
	d.PendingBase = amountBase.Sub(allocated)
	return nil
}

// ValidateAsSource checks that amount can be drawn from the document as credit.
func (d *LedgerDocument) ValidateAsSource(amount decimal.Decimal) error {
	if !d.IsActive() {
		return ErrSourceNotActive
	}
	if !d.Kind.IsCredit() {
		return ErrNotCreditDocument
	}
	if d.PendingBase.LessThan(amount) {
		return ErrInsufficientCredit
	}
	return nil
}

// ValidateAsDebit checks that amount can be applied to the document as payment.
func (d *LedgerDocument) ValidateAsDebit(amount decimal.Decimal) error {
	if !d.IsActive() {
		return ErrDebitNotActive
	}
	if !d.Kind.IsDebit() {
		return ErrNotDebitDocument
	}
	if d.PendingBase.LessThan(amount) {
		return ErrOverAllocation
	}
	return nil
}

// DocumentFilter narrows a party ledger query.
type DocumentFilter struct {
	From   *time.Time
	To     *time.Time
	Kind   *DocumentKind
	Status *DocumentStatus
}

// Balances is the aggregate pending position of a party.
type Balances struct {
	PartyType       PartyType
	PartyID         string
	OutstandingBase decimal.Decimal
	CreditsBase     decimal.Decimal
	NetBalanceBase  decimal.Decimal
}

// NewBalances derives the net balance. Positive means the party owes the company.
func NewBalances(party PartyRef, outstanding, credits decimal.Decimal) *Balances {
	return &Balances{
		PartyType:       party.Type,
		PartyID:         party.ID,
		OutstandingBase: outstanding,
		CreditsBase:     credits,
		NetBalanceBase:  outstanding.Sub(credits),
	}
}

// Selectables are the pools a client may offer when allocating for a party.
type Selectables struct {
	Debits         []*LedgerDocument
	Credits        []*LedgerDocument
	ReceiptCredits []*LedgerDocument
}
