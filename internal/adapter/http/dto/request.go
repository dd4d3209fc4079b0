package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
)

// DateLayout is the calendar date format accepted next to RFC 3339.
const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", domain.ErrValidation, s)
	}
	return t, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertDocumentRequest represents a fiscal document pushed by an external system.
type UpsertDocumentRequest struct {
	PartyType         string          `json:"party_type"`
	PartyID           string          `json:"party_id"`
	Kind              string          `json:"kind"`
	ExternalRefID     string          `json:"external_ref_id"`
	ExternalRefNumber string          `json:"external_ref_number"`
	DocumentDate      string          `json:"document_date"`
	Currency          string          `json:"currency"`
	AmountBase        decimal.Decimal `json:"amount_base"`
	FxRate            decimal.Decimal `json:"fx_rate"`
}

// ToUseCaseInput converts to use case input.
func (r *UpsertDocumentRequest) ToUseCaseInput() (usecase.FiscalDocumentInput, error) {
	date, err := ParseDate(r.DocumentDate)
	if err != nil {
		return usecase.FiscalDocumentInput{}, err
	}
	return usecase.FiscalDocumentInput{
		DocumentDate:      date,
		PartyType:         domain.PartyType(r.PartyType),
		PartyID:           r.PartyID,
		Kind:              domain.DocumentKind(r.Kind),
		ExternalRefID:     r.ExternalRefID,
		ExternalRefNumber: r.ExternalRefNumber,
		Currency:          r.Currency,
		AmountBase:        r.AmountBase,
		FxRate:            r.FxRate,
	}, nil
}

// PaymentLineRequest is one payment inside a receipt request.
type PaymentLineRequest struct {
	Method         string          `json:"method"`
	AmountOriginal decimal.Decimal `json:"amount_original"`
	BankName       string          `json:"bank_name,omitempty"`
	BankAccount    string          `json:"bank_account,omitempty"`
	CheckNumber    string          `json:"check_number,omitempty"`
	ValueDate      string          `json:"value_date,omitempty"`
}

// AllocationRequest applies part of a new receipt to a debit document.
type AllocationRequest struct {
	DebitDocumentID string          `json:"debit_document_id"`
	AmountBase      decimal.Decimal `json:"amount_base"`
}

// CreateReceiptRequest represents a request to record a receipt.
type CreateReceiptRequest struct {
	PartyType   string               `json:"party_type"`
	PartyID     string               `json:"party_id"`
	Date        string               `json:"date"`
	Currency    string               `json:"currency"`
	FxRate      decimal.Decimal      `json:"fx_rate"`
	Notes       string               `json:"notes,omitempty"`
	Lines       []PaymentLineRequest `json:"lines"`
	Allocations []AllocationRequest  `json:"allocations,omitempty"`
}

// ToUseCaseInput converts to use case input. createdBy comes from the caller identity.
func (r *CreateReceiptRequest) ToUseCaseInput(createdBy string) (usecase.CreateReceiptInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.CreateReceiptInput{}, err
	}

	lines := make([]usecase.PaymentLineInput, len(r.Lines))
	for i, l := range r.Lines {
		valueDate, err := parseOptionalDate(l.ValueDate)
		if err != nil {
			return usecase.CreateReceiptInput{}, err
		}
		lines[i] = usecase.PaymentLineInput{
			ValueDate:      valueDate,
			Method:         domain.PaymentMethod(l.Method),
			BankName:       l.BankName,
			BankAccount:    l.BankAccount,
			CheckNumber:    l.CheckNumber,
			AmountOriginal: l.AmountOriginal,
		}
	}

	allocations := make([]usecase.ReceiptAllocationInput, len(r.Allocations))
	for i, a := range r.Allocations {
		allocations[i] = usecase.ReceiptAllocationInput{
			DebitDocumentID: a.DebitDocumentID,
			AmountBase:      a.AmountBase,
		}
	}

	return usecase.CreateReceiptInput{
		Date:        date,
		PartyType:   domain.PartyType(r.PartyType),
		PartyID:     r.PartyID,
		Currency:    r.Currency,
		Notes:       r.Notes,
		CreatedBy:   createdBy,
		FxRate:      r.FxRate,
		Lines:       lines,
		Allocations: allocations,
	}, nil
}

// ApplyAllocationRequest is the primitive source-to-debit allocation.
type ApplyAllocationRequest struct {
	SourceDocumentID string          `json:"source_document_id"`
	DebitDocumentID  string          `json:"debit_document_id"`
	AmountBase       decimal.Decimal `json:"amount_base"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyAllocationRequest) ToUseCaseInput() usecase.ApplyAllocationInput {
	return usecase.ApplyAllocationInput{
		SourceDocumentID: r.SourceDocumentID,
		DebitDocumentID:  r.DebitDocumentID,
		AmountBase:       r.AmountBase,
	}
}

// CoverSourceRequest is one credit offered to cover an invoice.
type CoverSourceRequest struct {
	SourceDocumentID string          `json:"source_document_id"`
	AmountBase       decimal.Decimal `json:"amount_base"`
}

// CoverInvoiceRequest covers a debit document, found by external reference, from several credits.
type CoverInvoiceRequest struct {
	PartyType              string               `json:"party_type"`
	PartyID                string               `json:"party_id"`
	TargetDebitExternalRef string               `json:"target_debit_external_ref"`
	Sources                []CoverSourceRequest `json:"sources"`
}

// ToUseCaseInput converts to use case input.
func (r *CoverInvoiceRequest) ToUseCaseInput() usecase.CoverInvoiceInput {
	sources := make([]domain.CoverSource, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = domain.CoverSource{SourceDocumentID: s.SourceDocumentID, AmountBase: s.AmountBase}
	}
	return usecase.CoverInvoiceInput{
		PartyType:              domain.PartyType(r.PartyType),
		PartyID:                r.PartyID,
		TargetDebitExternalRef: r.TargetDebitExternalRef,
		Sources:                sources,
	}
}

// ManualSourceRequest is one credit drawn for a debit in a manual batch.
type ManualSourceRequest struct {
	SourceKind string          `json:"source_kind"`
	SourceID   string          `json:"source_id"`
	AmountBase decimal.Decimal `json:"amount_base"`
}

// ManualEntryRequest asks to settle one debit document completely.
type ManualEntryRequest struct {
	DebitDocumentID string                `json:"debit_document_id"`
	Sources         []ManualSourceRequest `json:"sources"`
}

// ManualAllocationRequest is the body of manual preview and execute.
type ManualAllocationRequest struct {
	Entries []ManualEntryRequest `json:"entries"`
}

// ToDomainEntries converts the request into domain entries.
func (r *ManualAllocationRequest) ToDomainEntries() []domain.ManualAllocationEntry {
	entries := make([]domain.ManualAllocationEntry, len(r.Entries))
	for i, e := range r.Entries {
		sources := make([]domain.ManualAllocationSource, len(e.Sources))
		for j, s := range e.Sources {
			sources[j] = domain.ManualAllocationSource{
				SourceKind: domain.AllocationSourceKind(s.SourceKind),
				SourceID:   s.SourceID,
				AmountBase: s.AmountBase,
			}
		}
		entries[i] = domain.ManualAllocationEntry{DebitDocumentID: e.DebitDocumentID, Sources: sources}
	}
	return entries
}

// LedgerQuery holds the filters of a party ledger listing.
type LedgerQuery struct {
	From   string
	To     string
	Kind   string
	Status string
}

// ToFilter converts the query into a document filter.
func (q LedgerQuery) ToFilter() (domain.DocumentFilter, error) {
	var f domain.DocumentFilter
	var err error
	if f.From, err = parseOptionalDate(q.From); err != nil {
		return f, err
	}
	if f.To, err = parseOptionalDate(q.To); err != nil {
		return f, err
	}
	if q.Kind != "" {
		k := domain.DocumentKind(q.Kind)
		f.Kind = &k
	}
	if q.Status != "" {
		s := domain.DocumentStatus(q.Status)
		f.Status = &s
	}
	return f, nil
}
