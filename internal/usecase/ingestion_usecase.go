package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
)

// IngestionUseCase accepts invoices, debit notes and credit notes issued by
// external fiscal systems and turns them into ledger documents.
type IngestionUseCase struct {
	documents *DocumentUseCase
}

// NewIngestionUseCase creates a new IngestionUseCase.
func NewIngestionUseCase(documents *DocumentUseCase) *IngestionUseCase {
	return &IngestionUseCase{documents: documents}
}

// FiscalDocumentInput represents an externally issued document.
type FiscalDocumentInput struct {
	DocumentDate      time.Time
	PartyType         domain.PartyType
	PartyID           string
	Kind              domain.DocumentKind
	ExternalRefID     string
	ExternalRefNumber string
	Currency          string
	AmountBase        decimal.Decimal
	FxRate            decimal.Decimal
}

// Validate checks the input before any transaction is started.
func (in *FiscalDocumentInput) Validate() error {
	if err := (domain.PartyRef{Type: in.PartyType, ID: strings.TrimSpace(in.PartyID)}).Validate(); err != nil {
		return err
	}
	if in.Kind == domain.KindReceipt {
		return domain.ErrReceiptKindIngest
	}
	if !in.Kind.IsValid() {
		return domain.ErrInvalidKind
	}
	if strings.TrimSpace(in.ExternalRefID) == "" {
		return domain.ErrMissingExternalRef
	}
	if in.DocumentDate.IsZero() {
		return domain.ErrMissingDocumentDate
	}
	// Checked after rounding: the stored amount is what must be positive.
	in.AmountBase = in.AmountBase.Round(domain.BaseScale)
	if err := domain.ValidateAmount(in.AmountBase); err != nil {
		return err
	}
	if err := domain.ValidateFxRate(in.FxRate); err != nil {
		return err
	}
	currency, err := domain.NormalizeCurrency(in.Currency)
	if err != nil {
		return err
	}
	in.Currency = currency
	return nil
}

// UpsertFiscalDocument records or corrects an external document and returns its
// ledger id. Retrying with the same data is safe.
func (uc *IngestionUseCase) UpsertFiscalDocument(ctx context.Context, input FiscalDocumentInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}

	amountBase := input.AmountBase

	doc, _, err := uc.documents.Upsert(ctx, UpsertDocumentInput{
		DocumentDate:      input.DocumentDate.UTC(),
		PartyType:         input.PartyType,
		PartyID:           strings.TrimSpace(input.PartyID),
		Kind:              input.Kind,
		ExternalRefID:     strings.TrimSpace(input.ExternalRefID),
		ExternalRefNumber: input.ExternalRefNumber,
		Currency:          input.Currency,
		FxRate:            input.FxRate,
		AmountOriginal:    domain.FromBase(amountBase, input.FxRate),
		AmountBase:        amountBase,
	})
	if err != nil {
		return "", err
	}

	return doc.ID, nil
}

// CancelFiscalDocument voids the external document identified by
// (partyType, externalRefID, kind).
func (uc *IngestionUseCase) CancelFiscalDocument(ctx context.Context, partyType domain.PartyType, externalRefID string, kind domain.DocumentKind) error {
	if !partyType.IsValid() {
		return domain.ErrInvalidPartyType
	}
	if !kind.IsValid() {
		return domain.ErrInvalidKind
	}
	if strings.TrimSpace(externalRefID) == "" {
		return domain.ErrMissingExternalRef
	}

	_, err := uc.documents.Void(ctx, partyType, strings.TrimSpace(externalRefID), kind)
	return err
}
