package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

// ReceiptUseCase records payments received from or made to a party.
type ReceiptUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	sequences   *SequenceUseCase
	docRepo     DocumentRepository
	receiptRepo ReceiptRepository
	allocRepo   AllocationRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	alloc       allocator
	balances    balanceCache
	metrics     *metrics.Metrics
}

// NewReceiptUseCase creates a new ReceiptUseCase.
func NewReceiptUseCase(
	txManager TransactionManager,
	retrier Retrier,
	sequences *SequenceUseCase,
	docRepo DocumentRepository,
	receiptRepo ReceiptRepository,
	allocRepo AllocationRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		txManager:   txManager,
		retrier:     retrier,
		sequences:   sequences,
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

// PaymentLineInput represents one payment of a new receipt.
type PaymentLineInput struct {
	ValueDate      *time.Time
	Method         domain.PaymentMethod
	BankName       string
	BankAccount    string
	CheckNumber    string
	AmountOriginal decimal.Decimal
}

// ReceiptAllocationInput applies part of a new receipt to a debit document.
type ReceiptAllocationInput struct {
	DebitDocumentID string
	AmountBase      decimal.Decimal
}

// CreateReceiptInput represents input for creating a receipt.
type CreateReceiptInput struct {
	Date        time.Time
	PartyType   domain.PartyType
	PartyID     string
	Currency    string
	Notes       string
	CreatedBy   string
	FxRate      decimal.Decimal
	Lines       []PaymentLineInput
	Allocations []ReceiptAllocationInput
}

// Validate checks the input before any transaction is started.
func (in *CreateReceiptInput) Validate() error {
	if err := (domain.PartyRef{Type: in.PartyType, ID: in.PartyID}).Validate(); err != nil {
		return err
	}
	currency, err := domain.NormalizeCurrency(in.Currency)
	if err != nil {
		return err
	}
	in.Currency = currency
	if err := domain.ValidateFxRate(in.FxRate); err != nil {
		return err
	}
	if len(in.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", domain.ErrValidation, domain.MaxNotesLength)
	}
	if len(in.Lines) == 0 {
		return domain.ErrNoPaymentLines
	}
	for i, l := range in.Lines {
		line := domain.PaymentLine{Method: l.Method, AmountOriginal: l.AmountOriginal, CheckNumber: l.CheckNumber}
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if !domain.ToBase(l.AmountOriginal, in.FxRate).IsPositive() {
			return fmt.Errorf("line %d: %w", i+1, domain.ErrInvalidAmount)
		}
	}
	for _, a := range in.Allocations {
		if a.DebitDocumentID == "" {
			return domain.ErrMissingDocumentID
		}
		if !a.AmountBase.Round(domain.BaseScale).IsPositive() {
			return domain.ErrInvalidAmount
		}
	}
	return nil
}

// CreateReceipt numbers and stores a receipt, mirrors it into the ledger and
// applies the requested allocations. Any failure leaves no trace, including the
// receipt number.
func (uc *ReceiptUseCase) CreateReceipt(ctx context.Context, input CreateReceiptInput) (*domain.Receipt, error) {
	start := time.Now()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var receipt *domain.Receipt
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		n, err := uc.sequences.NextInTx(ctx, tx, domain.ReceiptScope(input.PartyType))
		if err != nil {
			return err
		}

		r := uc.buildReceipt(input, date, now)
		r.Number = domain.FormatReceiptNumber(n)

		mirror := &domain.LedgerDocument{
			ID:                uc.idGen.Generate(),
			PartyType:         r.PartyType,
			PartyID:           r.PartyID,
			Kind:              domain.KindReceipt,
			Status:            domain.StatusActive,
			ExternalRefID:     r.ID,
			ExternalRefNumber: r.Number,
			DocumentDate:      r.Date,
			Currency:          r.Currency,
			FxRate:            r.FxRate,
			AmountOriginal:    totalOriginal(r.Lines),
			AmountBase:        r.TotalBase,
			PendingBase:       r.TotalBase,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		inserted, err := uc.docRepo.InsertIfAbsent(ctx, tx, mirror)
		if err != nil {
			return err
		}
		if !inserted {
			return fmt.Errorf("%w: mirror document for receipt %s already exists", domain.ErrConflict, r.ID)
		}
		r.LedgerDocumentID = mirror.ID

		if err := uc.receiptRepo.Create(ctx, tx, r); err != nil {
			return err
		}

		if len(input.Allocations) > 0 {
			ids := make([]string, 0, len(input.Allocations))
			for _, a := range input.Allocations {
				ids = append(ids, a.DebitDocumentID)
			}
			debits, err := uc.alloc.lockDocuments(ctx, tx, ids)
			if err != nil {
				return err
			}
			for _, a := range input.Allocations {
				if _, err := uc.alloc.apply(ctx, tx, mirror, debits[a.DebitDocumentID], a.AmountBase.Round(domain.BaseScale), now); err != nil {
					return err
				}
			}
		}

		event := newOutboxEvent(uc.idGen, domain.PartyRef{Type: r.PartyType, ID: r.PartyID}, domain.AggregateTypeReceipt, r.ID, domain.EventTypeReceiptCreated, map[string]any{
			"receipt_id":  r.ID,
			"number":      r.Number,
			"party_type":  string(r.PartyType),
			"party_id":    r.PartyID,
			"total_base":  r.TotalBase.String(),
			"allocations": len(input.Allocations),
		}, now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		receipt = r
		return nil
	})
	uc.metrics.ObserveOperation("receipt_create", start, errorType(err))
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, domain.PartyRef{Type: receipt.PartyType, ID: receipt.PartyID})
	if uc.metrics != nil {
		uc.metrics.ReceiptsCreated.Inc()
		uc.metrics.ReceiptAmount.Observe(receipt.TotalBase.InexactFloat64())
		uc.metrics.AllocationsApplied.WithLabelValues("receipt").Add(float64(len(input.Allocations)))
	}

	return receipt, nil
}

func (uc *ReceiptUseCase) buildReceipt(input CreateReceiptInput, date, now time.Time) *domain.Receipt {
	r := &domain.Receipt{
		ID:        uc.idGen.Generate(),
		PartyType: input.PartyType,
		PartyID:   input.PartyID,
		Date:      date,
		Currency:  input.Currency,
		FxRate:    input.FxRate,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedBy: input.CreatedBy,
		TotalBase: decimal.Zero,
		CreatedAt: now,
	}

	for i, l := range input.Lines {
		line := domain.PaymentLine{
			ID:             uc.idGen.Generate(),
			ReceiptID:      r.ID,
			Position:       i + 1,
			Method:         l.Method,
			AmountOriginal: l.AmountOriginal,
			AmountBase:     domain.ToBase(l.AmountOriginal, input.FxRate),
			BankName:       l.BankName,
			BankAccount:    l.BankAccount,
			CheckNumber:    l.CheckNumber,
			ValueDate:      l.ValueDate,
		}
		r.Lines = append(r.Lines, line)
		r.TotalBase = r.TotalBase.Add(line.AmountBase)
	}

	return r
}

func totalOriginal(lines []domain.PaymentLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.AmountOriginal)
	}
	return total
}

// GetReceipt retrieves a receipt with its payment lines.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	if id == "" {
		return nil, domain.ErrReceiptNotFound
	}
	return uc.receiptRepo.GetByID(ctx, id)
}

// VoidReceipt voids a receipt and its mirror document. Receipts that already
// paid something cannot be voided.
func (uc *ReceiptUseCase) VoidReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	start := time.Now()

	if id == "" {
		return nil, domain.ErrReceiptNotFound
	}

	var receipt *domain.Receipt
	err := runInTx(ctx, uc.txManager.Begin, uc.retrier, func(ctx context.Context, tx Transaction) error {
		r, err := uc.receiptRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.IsVoided {
			return domain.ErrReceiptAlreadyVoided
		}

		if _, err := uc.alloc.lockDocuments(ctx, tx, []string{r.LedgerDocumentID}); err != nil {
			return err
		}
		count, err := uc.allocRepo.CountBySource(ctx, tx, r.LedgerDocumentID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrReceiptHasAllocations
		}

		now := time.Now().UTC()
		if err := uc.receiptRepo.MarkVoided(ctx, tx, r.ID, now); err != nil {
			return err
		}
		if err := uc.docRepo.Void(ctx, tx, r.LedgerDocumentID, now); err != nil {
			return err
		}
		r.IsVoided = true
		r.VoidedAt = &now

		event := newOutboxEvent(uc.idGen, domain.PartyRef{Type: r.PartyType, ID: r.PartyID}, domain.AggregateTypeReceipt, r.ID, domain.EventTypeReceiptVoided, map[string]any{
			"receipt_id": r.ID,
			"number":     r.Number,
		}, now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		receipt = r
		return nil
	})
	uc.metrics.ObserveOperation("receipt_void", start, errorType(err))
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, domain.PartyRef{Type: receipt.PartyType, ID: receipt.PartyID})
	if uc.metrics != nil {
		uc.metrics.ReceiptsVoided.Inc()
	}

	return receipt, nil
}
