package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
	"github.com/iho/payledger/internal/usecase"
)

// DocumentRepository implements usecase.DocumentRepository.
type DocumentRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// InsertIfAbsent inserts doc unless an active document already holds its idempotency key.
func (r *DocumentRepository) InsertIfAbsent(ctx context.Context, tx usecase.Transaction, doc *domain.LedgerDocument) (bool, error) {
	queries := generated.New(pgxTxOf(tx))

	n, err := queries.InsertDocumentIfAbsent(ctx, generated.InsertDocumentIfAbsentParams{
		ID:                doc.ID,
		PartyType:         string(doc.PartyType),
		PartyID:           doc.PartyID,
		Kind:              string(doc.Kind),
		Status:            string(doc.Status),
		ExternalRefID:     doc.ExternalRefID,
		ExternalRefNumber: doc.ExternalRefNumber,
		DocumentDate:      timeToPgTimestamptz(doc.DocumentDate),
		Currency:          doc.Currency,
		FxRate:            decimalToNumeric(doc.FxRate),
		AmountOriginal:    decimalToNumeric(doc.AmountOriginal),
		AmountBase:        decimalToNumeric(doc.AmountBase),
		PendingBase:       decimalToNumeric(doc.PendingBase),
		CreatedAt:         timeToPgTimestamptz(doc.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(doc.UpdatedAt),
	})
	if err != nil {
		return false, mapConstraintError(err)
	}

	return n == 1, nil
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.LedgerDocument, error) {
	row, err := r.queries.GetDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	return rowToDocument(row), nil
}

// GetByIDs retrieves the documents that exist among ids, ordered by id.
func (r *DocumentRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.LedgerDocument, error) {
	rows, err := r.queries.GetDocumentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// GetByIDsForUpdate locks the documents in id order so concurrent writers cannot deadlock.
func (r *DocumentRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.LedgerDocument, error) {
	queries := generated.New(pgxTxOf(tx))

	rows, err := queries.GetDocumentsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// GetActiveByExternalRefForUpdate locks the active document holding the idempotency key.
func (r *DocumentRepository) GetActiveByExternalRefForUpdate(ctx context.Context, tx usecase.Transaction, party domain.PartyRef, kind domain.DocumentKind, externalRefID string) (*domain.LedgerDocument, error) {
	queries := generated.New(pgxTxOf(tx))

	row, err := queries.GetActiveDocumentByExternalRefForUpdate(ctx, generated.GetActiveDocumentByExternalRefForUpdateParams{
		PartyType:     string(party.Type),
		PartyID:       party.ID,
		Kind:          string(kind),
		ExternalRefID: externalRefID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	return rowToDocument(row), nil
}

// FindByExternalRefForUpdate locks every document of the party type carrying the reference.
func (r *DocumentRepository) FindByExternalRefForUpdate(ctx context.Context, tx usecase.Transaction, partyType domain.PartyType, kind domain.DocumentKind, externalRefID string) ([]*domain.LedgerDocument, error) {
	queries := generated.New(pgxTxOf(tx))

	rows, err := queries.FindDocumentsByExternalRefForUpdate(ctx, generated.FindDocumentsByExternalRefForUpdateParams{
		PartyType:     string(partyType),
		Kind:          string(kind),
		ExternalRefID: externalRefID,
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// FindActiveDebitsByExternalRef finds active invoices and debit notes of the party by reference.
func (r *DocumentRepository) FindActiveDebitsByExternalRef(ctx context.Context, party domain.PartyRef, externalRefID string) ([]*domain.LedgerDocument, error) {
	rows, err := r.queries.FindActiveDebitsByExternalRef(ctx, generated.FindActiveDebitsByExternalRefParams{
		PartyType:     string(party.Type),
		PartyID:       party.ID,
		ExternalRefID: externalRefID,
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// UpdateAmounts stores a corrected document.
func (r *DocumentRepository) UpdateAmounts(ctx context.Context, tx usecase.Transaction, doc *domain.LedgerDocument) error {
	queries := generated.New(pgxTxOf(tx))

	n, err := queries.UpdateDocumentAmounts(ctx, generated.UpdateDocumentAmountsParams{
		ExternalRefNumber: doc.ExternalRefNumber,
		DocumentDate:      timeToPgTimestamptz(doc.DocumentDate),
		Currency:          doc.Currency,
		FxRate:            decimalToNumeric(doc.FxRate),
		AmountOriginal:    decimalToNumeric(doc.AmountOriginal),
		AmountBase:        decimalToNumeric(doc.AmountBase),
		PendingBase:       decimalToNumeric(doc.PendingBase),
		UpdatedAt:         timeToPgTimestamptz(doc.UpdatedAt),
		ID:                doc.ID,
	})

	return affectedOne(n, err, domain.ErrDocumentNotFound)
}

// UpdatePending sets the pending balance of a document.
func (r *DocumentRepository) UpdatePending(ctx context.Context, tx usecase.Transaction, id string, pending decimal.Decimal, updatedAt time.Time) error {
	queries := generated.New(pgxTxOf(tx))

	n, err := queries.UpdateDocumentPending(ctx, generated.UpdateDocumentPendingParams{
		PendingBase: decimalToNumeric(pending),
		UpdatedAt:   timeToPgTimestamptz(updatedAt),
		ID:          id,
	})

	return affectedOne(n, err, domain.ErrDocumentNotFound)
}

// Void marks an active document as voided.
func (r *DocumentRepository) Void(ctx context.Context, tx usecase.Transaction, id string, voidedAt time.Time) error {
	queries := generated.New(pgxTxOf(tx))

	n, err := queries.VoidDocument(ctx, generated.VoidDocumentParams{
		VoidedAt: timeToPgTimestamptz(voidedAt),
		ID:       id,
	})

	return affectedOne(n, err, domain.ErrAlreadyVoided)
}

// ListActiveByParty lists the active documents of a party, newest first.
func (r *DocumentRepository) ListActiveByParty(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	rows, err := r.queries.ListActiveDocumentsByParty(ctx, generated.ListActiveDocumentsByPartyParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// ListSelectable lists active documents of the kinds that still have a pending balance, oldest first.
func (r *DocumentRepository) ListSelectable(ctx context.Context, party domain.PartyRef, kinds []domain.DocumentKind) ([]*domain.LedgerDocument, error) {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}

	rows, err := r.queries.ListSelectableDocuments(ctx, generated.ListSelectableDocumentsParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
		Kinds:     names,
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// List returns one page of a party's documents and the total matching the filter.
func (r *DocumentRepository) List(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) ([]*domain.LedgerDocument, int, error) {
	from := timePtrToPgTimestamptz(filter.From)
	to := timePtrToPgTimestamptz(filter.To)
	var kind, status pgtype.Text
	if filter.Kind != nil {
		kind = pgtype.Text{String: string(*filter.Kind), Valid: true}
	}
	if filter.Status != nil {
		status = pgtype.Text{String: string(*filter.Status), Valid: true}
	}

	total, err := r.queries.CountDocuments(ctx, generated.CountDocumentsParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
		FromDate:  from,
		ToDate:    to,
		Kind:      kind,
		Status:    status,
	})
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.queries.ListDocuments(ctx, generated.ListDocumentsParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
		FromDate:  from,
		ToDate:    to,
		Kind:      kind,
		Status:    status,
		RowLimit:  int32(limit),
		RowOffset: int32(offset),
	})
	if err != nil {
		return nil, 0, err
	}

	return rowsToDocuments(rows), int(total), nil
}

// ListActiveBefore lists active documents dated strictly before the instant, oldest first.
func (r *DocumentRepository) ListActiveBefore(ctx context.Context, party domain.PartyRef, before time.Time) ([]*domain.LedgerDocument, error) {
	rows, err := r.queries.ListActiveDocumentsBefore(ctx, generated.ListActiveDocumentsBeforeParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
		Before:    timeToPgTimestamptz(before),
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// ListActiveBetween lists active documents dated within [from, to], oldest first.
func (r *DocumentRepository) ListActiveBetween(ctx context.Context, party domain.PartyRef, from, to time.Time) ([]*domain.LedgerDocument, error) {
	rows, err := r.queries.ListActiveDocumentsBetween(ctx, generated.ListActiveDocumentsBetweenParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
		FromDate:  timeToPgTimestamptz(from),
		ToDate:    timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// PendingTotals sums the pending balances of the party's active debits and credits.
func (r *DocumentRepository) PendingTotals(ctx context.Context, party domain.PartyRef) (decimal.Decimal, decimal.Decimal, error) {
	row, err := r.queries.GetPendingTotals(ctx, generated.GetPendingTotalsParams{
		PartyType: string(party.Type),
		PartyID:   party.ID,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(row.Outstanding), numericToDecimal(row.Credits), nil
}

// affectedOne checks that a single-row write hit its row.
func affectedOne(n int64, err error, notFound error) error {
	if err != nil {
		return mapConstraintError(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
