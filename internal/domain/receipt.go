package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment line was settled.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodCard         PaymentMethod = "card"
	MethodOther        PaymentMethod = "other"
)

// IsValid reports whether the method is known.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheck, MethodCard, MethodOther:
		return true
	}
	return false
}

// Receipt groups the payment lines received from (or paid to) a party in one go.
// It is mirrored by exactly one LedgerDocument of kind receipt.
type Receipt struct {
	Date             time.Time
	CreatedAt        time.Time
	VoidedAt         *time.Time
	ID               string
	Number           string
	PartyType        PartyType
	PartyID          string
	Currency         string
	Notes            string
	CreatedBy        string
	LedgerDocumentID string
	FxRate           decimal.Decimal
	TotalBase        decimal.Decimal
	Lines            []PaymentLine
	IsVoided         bool
}

// PaymentLine is a single payment inside a receipt.
type PaymentLine struct {
	ValueDate      *time.Time
	ID             string
	ReceiptID      string
	Method         PaymentMethod
	BankName       string
	BankAccount    string
	CheckNumber    string
	AmountOriginal decimal.Decimal
	AmountBase     decimal.Decimal
	Position       int
}

// Validate checks a line before it is priced.
func (l *PaymentLine) Validate() error {
	if !l.Method.IsValid() {
		return ErrInvalidMethod
	}
	if err := ValidateAmount(l.AmountOriginal); err != nil {
		return err
	}
	if l.Method == MethodCheck && strings.TrimSpace(l.CheckNumber) == "" {
		return fmt.Errorf("%w: check payments need a check number", ErrValidation)
	}
	return nil
}

// ReceiptScope is the numbering scope receipts of a party type draw from.
func ReceiptScope(partyType PartyType) string {
	return "receipt:" + string(partyType)
}

// FormatReceiptNumber renders a sequence number as a receipt number.
func FormatReceiptNumber(n int64) string {
	return fmt.Sprintf("R-%06d", n)
}

// NumberingSequence is a gapless counter for one scope.
type NumberingSequence struct {
	Scope      string
	NextNumber int64
}
