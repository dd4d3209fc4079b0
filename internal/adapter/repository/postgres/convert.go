package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
)

const (
	pgErrUniqueViolation = "23505"
	pgErrCheckViolation  = "23514"
	pgErrForeignKey      = "23503"
)

// mapConstraintError turns integrity violations into domain errors. Other errors pass through.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrCheckViolation:
		if pgErr.ConstraintName == "ledger_documents_pending_bounds" {
			return domain.ErrPendingOutOfBounds
		}
		return errors.Join(domain.ErrValidation, err)
	case pgErrUniqueViolation:
		return errors.Join(domain.ErrConflict, err)
	case pgErrForeignKey:
		return errors.Join(domain.ErrNotFound, err)
	}
	return err
}

func rowToDocument(row generated.LedgerDocument) *domain.LedgerDocument {
	return &domain.LedgerDocument{
		ID:                row.ID,
		PartyType:         domain.PartyType(row.PartyType),
		PartyID:           row.PartyID,
		Kind:              domain.DocumentKind(row.Kind),
		Status:            domain.DocumentStatus(row.Status),
		ExternalRefID:     row.ExternalRefID,
		ExternalRefNumber: row.ExternalRefNumber,
		DocumentDate:      row.DocumentDate.Time,
		Currency:          row.Currency,
		FxRate:            numericToDecimal(row.FxRate),
		AmountOriginal:    numericToDecimal(row.AmountOriginal),
		AmountBase:        numericToDecimal(row.AmountBase),
		PendingBase:       numericToDecimal(row.PendingBase),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
		VoidedAt:          pgTimestamptzToTimePtr(row.VoidedAt),
	}
}

func rowsToDocuments(rows []generated.LedgerDocument) []*domain.LedgerDocument {
	docs := make([]*domain.LedgerDocument, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, rowToDocument(row))
	}
	return docs
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
