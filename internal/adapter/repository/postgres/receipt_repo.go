package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
	"github.com/iho/payledger/internal/usecase"
)

// ReceiptRepository implements usecase.ReceiptRepository.
type ReceiptRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create stores a receipt and its payment lines. The mirror document must already exist.
func (r *ReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	queries := generated.New(pgxTxOf(tx))

	err := queries.CreateReceipt(ctx, generated.CreateReceiptParams{
		ID:               receipt.ID,
		Number:           receipt.Number,
		PartyType:        string(receipt.PartyType),
		PartyID:          receipt.PartyID,
		ReceiptDate:      timeToPgTimestamptz(receipt.Date),
		Currency:         receipt.Currency,
		FxRate:           decimalToNumeric(receipt.FxRate),
		TotalBase:        decimalToNumeric(receipt.TotalBase),
		Notes:            receipt.Notes,
		CreatedBy:        receipt.CreatedBy,
		LedgerDocumentID: receipt.LedgerDocumentID,
		CreatedAt:        timeToPgTimestamptz(receipt.CreatedAt),
	})
	if err != nil {
		return mapConstraintError(err)
	}

	for _, line := range receipt.Lines {
		err := queries.CreatePaymentLine(ctx, generated.CreatePaymentLineParams{
			ID:             line.ID,
			ReceiptID:      receipt.ID,
			Position:       int32(line.Position),
			Method:         string(line.Method),
			AmountOriginal: decimalToNumeric(line.AmountOriginal),
			AmountBase:     decimalToNumeric(line.AmountBase),
			BankName:       line.BankName,
			BankAccount:    line.BankAccount,
			CheckNumber:    line.CheckNumber,
			ValueDate:      timePtrToPgTimestamptz(line.ValueDate),
		})
		if err != nil {
			return mapConstraintError(err)
		}
	}

	return nil
}

// GetByID retrieves a receipt with its lines.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	row, err := r.queries.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}

		return nil, err
	}

	return r.withLines(ctx, r.queries, row)
}

// GetByIDForUpdate locks a receipt row and reads its lines.
func (r *ReceiptRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Receipt, error) {
	queries := generated.New(pgxTxOf(tx))

	row, err := queries.GetReceiptByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}

		return nil, err
	}

	return r.withLines(ctx, queries, row)
}

// MarkVoided flags a receipt as voided.
func (r *ReceiptRepository) MarkVoided(ctx context.Context, tx usecase.Transaction, id string, voidedAt time.Time) error {
	queries := generated.New(pgxTxOf(tx))

	n, err := queries.MarkReceiptVoided(ctx, generated.MarkReceiptVoidedParams{
		VoidedAt: timeToPgTimestamptz(voidedAt),
		ID:       id,
	})

	return affectedOne(n, err, domain.ErrReceiptAlreadyVoided)
}

// MirrorDocumentIDs maps receipt ids to the ids of their mirror documents.
func (r *ReceiptRepository) MirrorDocumentIDs(ctx context.Context, receiptIDs []string) (map[string]string, error) {
	rows, err := r.queries.ListReceiptMirrors(ctx, receiptIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.LedgerDocumentID
	}

	return out, nil
}

func (r *ReceiptRepository) withLines(ctx context.Context, queries *generated.Queries, row generated.Receipt) (*domain.Receipt, error) {
	lines, err := queries.ListPaymentLinesByReceipt(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{
		ID:               row.ID,
		Number:           row.Number,
		PartyType:        domain.PartyType(row.PartyType),
		PartyID:          row.PartyID,
		Date:             row.ReceiptDate.Time,
		Currency:         row.Currency,
		FxRate:           numericToDecimal(row.FxRate),
		TotalBase:        numericToDecimal(row.TotalBase),
		Notes:            row.Notes,
		CreatedBy:        row.CreatedBy,
		LedgerDocumentID: row.LedgerDocumentID,
		IsVoided:         row.IsVoided,
		VoidedAt:         pgTimestamptzToTimePtr(row.VoidedAt),
		CreatedAt:        row.CreatedAt.Time,
		Lines:            make([]domain.PaymentLine, 0, len(lines)),
	}

	for _, l := range lines {
		receipt.Lines = append(receipt.Lines, domain.PaymentLine{
			ID:             l.ID,
			ReceiptID:      l.ReceiptID,
			Position:       int(l.Position),
			Method:         domain.PaymentMethod(l.Method),
			AmountOriginal: numericToDecimal(l.AmountOriginal),
			AmountBase:     numericToDecimal(l.AmountBase),
			BankName:       l.BankName,
			BankAccount:    l.BankAccount,
			CheckNumber:    l.CheckNumber,
			ValueDate:      pgTimestamptzToTimePtr(l.ValueDate),
		})
	}

	return receipt, nil
}
