package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is one document on a party statement.
type StatementLine struct {
	Date              time.Time
	DocumentID        string
	Kind              DocumentKind
	ExternalRefNumber string
	// SignedAmount is positive for debits and negative for credits.
	SignedAmount   decimal.Decimal
	RunningBalance decimal.Decimal
}

// Statement is the chronological account of a party over a period.
type Statement struct {
	From           time.Time
	To             time.Time
	PartyType      PartyType
	PartyID        string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Lines          []StatementLine
}

// SignedAmount returns the document amount with the statement sign applied.
func (d *LedgerDocument) SignedAmount() decimal.Decimal {
	if d.Kind.IsCredit() {
		return d.AmountBase.Neg()
	}
	return d.AmountBase
}

// BuildStatement computes running balances. prior holds the active documents dated
// before from; period holds those inside the window in chronological order.
func BuildStatement(party PartyRef, from, to time.Time, prior, period []*LedgerDocument) *Statement {
	opening := decimal.Zero
	for _, d := range prior {
		opening = opening.Add(d.SignedAmount())
	}

	st := &Statement{
		From:           from,
		To:             to,
		PartyType:      party.Type,
		PartyID:        party.ID,
		OpeningBalance: opening,
		Lines:          make([]StatementLine, 0, len(period)),
	}

	running := opening
	for _, d := range period {
		running = running.Add(d.SignedAmount())
		st.Lines = append(st.Lines, StatementLine{
			Date:              d.DocumentDate,
			DocumentID:        d.ID,
			Kind:              d.Kind,
			ExternalRefNumber: d.ExternalRefNumber,
			SignedAmount:      d.SignedAmount(),
			RunningBalance:    running,
		})
	}
	st.ClosingBalance = running

	return st
}

// ConsistencyIssue describes a document that breaks a conservation invariant.
type ConsistencyIssue struct {
	DocumentID    string
	Kind          DocumentKind
	Problem       string
	AmountBase    decimal.Decimal
	PendingBase   decimal.Decimal
	AllocatedBase decimal.Decimal
}

// ConsistencyReport is the result of a full ledger check.
type ConsistencyReport struct {
	CheckedAt        time.Time
	Issues           []ConsistencyIssue
	DocumentsChecked int
	Consistent       bool
}

// CheckDocumentConsistency verifies a document against the allocations recorded
// for it. allocated is the sum of allocations where the document is the source
// (credits) or the debit (debits).
func CheckDocumentConsistency(d *LedgerDocument, allocated decimal.Decimal) *ConsistencyIssue {
	issue := func(problem string) *ConsistencyIssue {
		return &ConsistencyIssue{
			DocumentID:    d.ID,
			Kind:          d.Kind,
			AmountBase:    d.AmountBase,
			PendingBase:   d.PendingBase,
			AllocatedBase: allocated,
			Problem:       problem,
		}
	}

	if err := d.CheckPendingBounds(); err != nil {
		return issue("pending balance out of bounds")
	}
	if !d.PendingBase.Equal(d.AmountBase.Sub(allocated)) {
		return issue("pending balance does not match allocations")
	}
	return nil
}
