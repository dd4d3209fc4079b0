package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of them so
// callers can branch on either.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInsufficientCredit = errors.New("insufficient credit on source document")
	ErrOverAllocation     = errors.New("allocation exceeds pending balance of debit document")
	ErrConcurrency        = errors.New("concurrent modification, retry the operation")
)

var (
	// Validation errors
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidFxRate       = fmt.Errorf("%w: fx rate must be positive", ErrValidation)
	ErrInvalidPartyType    = fmt.Errorf("%w: unknown party type", ErrValidation)
	ErrMissingPartyID      = fmt.Errorf("%w: party id is required", ErrValidation)
	ErrInvalidKind         = fmt.Errorf("%w: unknown document kind", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: unknown document status", ErrValidation)
	ErrReceiptKindIngest   = fmt.Errorf("%w: receipts cannot be ingested as external documents", ErrValidation)
	ErrMissingExternalRef  = fmt.Errorf("%w: external reference id is required", ErrValidation)
	ErrNoPaymentLines      = fmt.Errorf("%w: receipt needs at least one payment line", ErrValidation)
	ErrInvalidMethod       = fmt.Errorf("%w: unknown payment method", ErrValidation)
	ErrMissingScope        = fmt.Errorf("%w: numbering scope is required", ErrValidation)
	ErrNoSources           = fmt.Errorf("%w: at least one source is required", ErrValidation)
	ErrMissingDocumentID   = fmt.Errorf("%w: document id is required", ErrValidation)
	ErrMissingDocumentDate = fmt.Errorf("%w: document date is required", ErrValidation)
	ErrSameDocument        = fmt.Errorf("%w: source and debit must be different documents", ErrValidation)

	// Not found errors
	ErrDocumentNotFound = fmt.Errorf("%w: ledger document", ErrNotFound)
	ErrReceiptNotFound  = fmt.Errorf("%w: receipt", ErrNotFound)

	// Conflict errors
	ErrAlreadyVoided         = fmt.Errorf("%w: document is already voided", ErrConflict)
	ErrReceiptVoidViaEngine  = fmt.Errorf("%w: receipts can only be voided through the receipt engine", ErrConflict)
	ErrAmbiguousDocument     = fmt.Errorf("%w: external reference matches more than one document", ErrConflict)
	ErrAmountBelowAllocated  = fmt.Errorf("%w: new amount is lower than what is already allocated", ErrConflict)
	ErrReceiptHasAllocations = fmt.Errorf("%w: receipt has allocations and cannot be voided", ErrConflict)
	ErrReceiptAlreadyVoided  = fmt.Errorf("%w: receipt is already voided", ErrConflict)
	ErrPartyMismatch         = fmt.Errorf("%w: documents belong to different parties", ErrConflict)
	ErrSourceNotActive       = fmt.Errorf("%w: source document is not active", ErrConflict)
	ErrDebitNotActive        = fmt.Errorf("%w: debit document is not active", ErrConflict)
	ErrNotCreditDocument     = fmt.Errorf("%w: source document cannot carry credit", ErrConflict)
	ErrNotDebitDocument      = fmt.Errorf("%w: target document is not an invoice or debit note", ErrConflict)
	ErrPendingOutOfBounds    = fmt.Errorf("%w: pending balance out of bounds", ErrConflict)
)
