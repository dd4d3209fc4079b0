package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

// UpsertResult tells what an upsert did to the store.
type UpsertResult string

const (
	UpsertCreated   UpsertResult = "created"
	UpsertCorrected UpsertResult = "corrected"
	UpsertUnchanged UpsertResult = "unchanged"
)

// DocumentUseCase maintains ledger documents keyed by their external reference.
type DocumentUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	docRepo    DocumentRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	balances   balanceCache
	metrics    *metrics.Metrics
}

// NewDocumentUseCase creates a new DocumentUseCase.
func NewDocumentUseCase(
	txManager TransactionManager,
	retrier Retrier,
	docRepo DocumentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *DocumentUseCase {
	return &DocumentUseCase{
		txManager:  txManager,
		retrier:    retrier,
		docRepo:    docRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		balances:   balanceCache{cache: cache},
		metrics:    metrics,
	}
}

// UpsertDocumentInput represents input for creating or correcting a document.
type UpsertDocumentInput struct {
	DocumentDate      time.Time
	PartyType         domain.PartyType
	PartyID           string
	Kind              domain.DocumentKind
	ExternalRefID     string
	ExternalRefNumber string
	Currency          string
	FxRate            decimal.Decimal
	AmountOriginal    decimal.Decimal
	AmountBase        decimal.Decimal
}

func (in UpsertDocumentInput) party() domain.PartyRef {
	return domain.PartyRef{Type: in.PartyType, ID: in.PartyID}
}

// Upsert creates the Active document for (party, kind, external ref) or corrects
// it in place. Resending identical data is a no-op that returns the same document.
func (uc *DocumentUseCase) Upsert(ctx context.Context, input UpsertDocumentInput) (*domain.LedgerDocument, UpsertResult, error) {
	start := time.Now()

	if input.Kind == domain.KindReceipt {
		return nil, "", domain.ErrReceiptKindIngest
	}
	if !input.Kind.IsValid() {
		return nil, "", domain.ErrInvalidKind
	}
	input.AmountBase = input.AmountBase.Round(domain.BaseScale)
	if err := domain.ValidateAmount(input.AmountBase); err != nil {
		return nil, "", err
	}

	var (
		doc    *domain.LedgerDocument
		result UpsertResult
	)
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		doc, result, err = uc.upsertInTx(ctx, tx, input)
		return err
	})
	uc.metrics.ObserveOperation("document_upsert", start, errorType(err))
	if err != nil {
		return nil, "", err
	}

	if result != UpsertUnchanged {
		uc.balances.invalidate(ctx, input.party())
	}
	if uc.metrics != nil {
		uc.metrics.DocumentsUpserted.WithLabelValues(string(input.Kind), string(result)).Inc()
	}

	return doc, result, nil
}

func (uc *DocumentUseCase) upsertInTx(ctx context.Context, tx Transaction, input UpsertDocumentInput) (*domain.LedgerDocument, UpsertResult, error) {
	party := input.party()
	now := time.Now().UTC()

	existing, err := uc.docRepo.GetActiveByExternalRefForUpdate(ctx, tx, party, input.Kind, input.ExternalRefID)
	if err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, "", err
	}

	result := UpsertCorrected
	if existing == nil {
		doc := &domain.LedgerDocument{
			ID:                uc.idGen.Generate(),
			PartyType:         input.PartyType,
			PartyID:           input.PartyID,
			Kind:              input.Kind,
			Status:            domain.StatusActive,
			ExternalRefID:     input.ExternalRefID,
			ExternalRefNumber: input.ExternalRefNumber,
			DocumentDate:      input.DocumentDate,
			Currency:          input.Currency,
			FxRate:            input.FxRate,
			AmountOriginal:    input.AmountOriginal,
			AmountBase:        input.AmountBase,
			PendingBase:       input.AmountBase,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		inserted, err := uc.docRepo.InsertIfAbsent(ctx, tx, doc)
		if err != nil {
			return nil, "", err
		}
		if inserted {
			if err := uc.emitUpserted(ctx, tx, doc, UpsertCreated, now); err != nil {
				return nil, "", err
			}
			return doc, UpsertCreated, nil
		}

		// A concurrent upsert created the row first; correct it instead.
		existing, err = uc.docRepo.GetActiveByExternalRefForUpdate(ctx, tx, party, input.Kind, input.ExternalRefID)
		if err != nil {
			return nil, "", err
		}
	}

	if sameDocumentData(existing, input) {
		return existing, UpsertUnchanged, nil
	}

	if err := existing.Correct(input.AmountBase); err != nil {
		return nil, "", err
	}
	existing.ExternalRefNumber = input.ExternalRefNumber
	existing.DocumentDate = input.DocumentDate
	existing.Currency = input.Currency
	existing.FxRate = input.FxRate
	existing.AmountOriginal = input.AmountOriginal
	existing.UpdatedAt = now

	if err := uc.docRepo.UpdateAmounts(ctx, tx, existing); err != nil {
		return nil, "", err
	}
	if err := uc.emitUpserted(ctx, tx, existing, result, now); err != nil {
		return nil, "", err
	}

	return existing, result, nil
}

func sameDocumentData(doc *domain.LedgerDocument, input UpsertDocumentInput) bool {
	return doc.AmountBase.Equal(input.AmountBase) &&
		doc.AmountOriginal.Equal(input.AmountOriginal) &&
		doc.FxRate.Equal(input.FxRate) &&
		doc.Currency == input.Currency &&
		doc.ExternalRefNumber == input.ExternalRefNumber &&
		doc.DocumentDate.Equal(input.DocumentDate)
}

func (uc *DocumentUseCase) emitUpserted(ctx context.Context, tx Transaction, doc *domain.LedgerDocument, result UpsertResult, now time.Time) error {
	event := newOutboxEvent(uc.idGen, doc.Party(), domain.AggregateTypeDocument, doc.ID, domain.EventTypeDocumentUpserted, map[string]any{
		"document_id":     doc.ID,
		"party_type":      string(doc.PartyType),
		"party_id":        doc.PartyID,
		"kind":            string(doc.Kind),
		"external_ref_id": doc.ExternalRefID,
		"amount_base":     doc.AmountBase.String(),
		"pending_base":    doc.PendingBase.String(),
		"result":          string(result),
	}, now)
	return uc.outboxRepo.Create(ctx, tx, event)
}

// Void voids the single Active document matching (partyType, externalRefID, kind).
// Allocations already recorded against it are left untouched.
func (uc *DocumentUseCase) Void(ctx context.Context, partyType domain.PartyType, externalRefID string, kind domain.DocumentKind) (*domain.LedgerDocument, error) {
	start := time.Now()

	if kind == domain.KindReceipt {
		return nil, domain.ErrReceiptVoidViaEngine
	}

	var voided *domain.LedgerDocument
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		docs, err := uc.docRepo.FindByExternalRefForUpdate(ctx, tx, partyType, kind, externalRefID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return domain.ErrDocumentNotFound
		}

		var active []*domain.LedgerDocument
		for _, d := range docs {
			if d.IsActive() {
				active = append(active, d)
			}
		}
		switch len(active) {
		case 0:
			return domain.ErrAlreadyVoided
		case 1:
		default:
			return domain.ErrAmbiguousDocument
		}

		doc := active[0]
		now := time.Now().UTC()
		if err := uc.docRepo.Void(ctx, tx, doc.ID, now); err != nil {
			return err
		}
		doc.Status = domain.StatusVoided
		doc.VoidedAt = &now
		doc.UpdatedAt = now

		event := newOutboxEvent(uc.idGen, doc.Party(), domain.AggregateTypeDocument, doc.ID, domain.EventTypeDocumentVoided, map[string]any{
			"document_id":     doc.ID,
			"party_type":      string(doc.PartyType),
			"party_id":        doc.PartyID,
			"kind":            string(doc.Kind),
			"external_ref_id": doc.ExternalRefID,
		}, now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		voided = doc
		return nil
	})
	uc.metrics.ObserveOperation("document_void", start, errorType(err))
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, voided.Party())
	if uc.metrics != nil {
		uc.metrics.DocumentsVoided.WithLabelValues(string(kind)).Inc()
	}

	return voided, nil
}

// GetDocument retrieves a document by ID.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*domain.LedgerDocument, error) {
	if id == "" {
		return nil, domain.ErrMissingDocumentID
	}
	return uc.docRepo.GetByID(ctx, id)
}

// GetPartyDocuments lists the Active documents of a party, newest first.
func (uc *DocumentUseCase) GetPartyDocuments(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	return uc.docRepo.ListActiveByParty(ctx, party)
}

// GetSelectableDebits lists invoices and debit notes that can still be settled, oldest first.
func (uc *DocumentUseCase) GetSelectableDebits(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	return uc.docRepo.ListSelectable(ctx, party, []domain.DocumentKind{domain.KindInvoice, domain.KindDebitNote})
}

// GetSelectableCredits lists credit notes with credit left, oldest first.
func (uc *DocumentUseCase) GetSelectableCredits(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	return uc.docRepo.ListSelectable(ctx, party, []domain.DocumentKind{domain.KindCreditNote})
}

// GetReceiptCredits lists receipt mirrors with unapplied money, oldest first.
func (uc *DocumentUseCase) GetReceiptCredits(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	return uc.docRepo.ListSelectable(ctx, party, []domain.DocumentKind{domain.KindReceipt})
}
