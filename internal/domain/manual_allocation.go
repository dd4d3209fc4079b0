package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ViolationCode classifies a problem found while validating a manual allocation batch.
type ViolationCode string

const (
	ViolationEmptyBatch          ViolationCode = "empty_batch"
	ViolationDuplicateDebit      ViolationCode = "duplicate_debit"
	ViolationEmptySources        ViolationCode = "empty_sources"
	ViolationNonPositiveAmount   ViolationCode = "non_positive_amount"
	ViolationAmountPrecision     ViolationCode = "amount_precision"
	ViolationDebitNotFound       ViolationCode = "debit_not_found"
	ViolationDebitNotActive      ViolationCode = "debit_not_active"
	ViolationDebitNotAllocatable ViolationCode = "debit_not_allocatable"
	ViolationDebitPartyMismatch  ViolationCode = "debit_party_mismatch"
	ViolationSourceNotFound      ViolationCode = "source_not_found"
	ViolationSourceNotActive     ViolationCode = "source_not_active"
	ViolationSourceKindMismatch  ViolationCode = "source_kind_mismatch"
	ViolationSourcePartyMismatch ViolationCode = "source_party_mismatch"
	ViolationSourceOverdrawn     ViolationCode = "source_overdrawn"
	ViolationExactCoverShortfall ViolationCode = "exact_cover_shortfall"
	ViolationExactCoverExcess    ViolationCode = "exact_cover_excess"
)

// Violation is one reason a manual allocation batch cannot be executed.
type Violation struct {
	Code            ViolationCode
	DebitDocumentID string
	SourceID        string
	Message         string
}

// ManualAllocationSource is one credit drawn for a debit in a manual batch.
// For SourceKindReceipt SourceID is a receipt id; for SourceKindCreditDocument
// it is the ledger document id of a credit note.
type ManualAllocationSource struct {
	SourceKind AllocationSourceKind
	SourceID   string
	AmountBase decimal.Decimal
}

// ManualAllocationEntry asks to settle one debit document completely.
type ManualAllocationEntry struct {
	DebitDocumentID string
	Sources         []ManualAllocationSource
}

// ManualAllocationLookup holds the documents a batch refers to.
type ManualAllocationLookup struct {
	// Documents by ledger document id.
	Documents map[string]*LedgerDocument
	// ReceiptMirrors maps receipt id to the id of its mirror document.
	ReceiptMirrors map[string]string
}

// ResolveSource finds the ledger document a source refers to.
func (l ManualAllocationLookup) ResolveSource(src ManualAllocationSource) *LedgerDocument {
	switch src.SourceKind {
	case SourceKindReceipt:
		mirrorID, ok := l.ReceiptMirrors[src.SourceID]
		if !ok {
			return nil
		}
		return l.Documents[mirrorID]
	case SourceKindCreditDocument:
		return l.Documents[src.SourceID]
	}
	return nil
}

// RoundManualAllocation returns a copy of entries with every source amount
// rounded to BaseScale, the precision allocations are stored at.
func RoundManualAllocation(entries []ManualAllocationEntry) []ManualAllocationEntry {
	rounded := make([]ManualAllocationEntry, len(entries))
	for i, entry := range entries {
		sources := make([]ManualAllocationSource, len(entry.Sources))
		for j, src := range entry.Sources {
			src.AmountBase = src.AmountBase.Round(BaseScale)
			sources[j] = src
		}
		rounded[i] = ManualAllocationEntry{DebitDocumentID: entry.DebitDocumentID, Sources: sources}
	}
	return rounded
}

// ValidateManualAllocation checks a batch against the current document state and
// returns every problem found. An empty result means the batch can be executed.
func ValidateManualAllocation(party PartyRef, entries []ManualAllocationEntry, lookup ManualAllocationLookup) []Violation {
	var violations []Violation
	add := func(code ViolationCode, debitID, sourceID, format string, args ...any) {
		violations = append(violations, Violation{
			Code:            code,
			DebitDocumentID: debitID,
			SourceID:        sourceID,
			Message:         fmt.Sprintf(format, args...),
		})
	}

	if len(entries) == 0 {
		add(ViolationEmptyBatch, "", "", "allocation batch has no entries")
		return violations
	}

	seenDebits := make(map[string]bool)
	draws := make(map[string]decimal.Decimal)
	var drawOrder []string

	for _, entry := range entries {
		debitID := entry.DebitDocumentID
		if seenDebits[debitID] {
			add(ViolationDuplicateDebit, debitID, "", "debit %s appears more than once in the batch", debitID)
			continue
		}
		seenDebits[debitID] = true

		debit := lookup.Documents[debitID]
		debitOK := false
		switch {
		case debit == nil:
			add(ViolationDebitNotFound, debitID, "", "debit %s not found", debitID)
		case !debit.IsActive():
			add(ViolationDebitNotActive, debitID, "", "debit %s is %s", debitID, debit.Status)
		case !debit.Kind.IsDebit():
			add(ViolationDebitNotAllocatable, debitID, "", "document %s is a %s and cannot be settled", debitID, debit.Kind)
		case debit.Party() != party:
			add(ViolationDebitPartyMismatch, debitID, "", "debit %s belongs to another party", debitID)
		default:
			debitOK = true
		}

		if len(entry.Sources) == 0 {
			add(ViolationEmptySources, debitID, "", "debit %s has no sources", debitID)
			continue
		}

		sum := decimal.Zero
		for _, src := range entry.Sources {
			if !src.AmountBase.IsPositive() {
				add(ViolationNonPositiveAmount, debitID, src.SourceID,
					"source %s for debit %s has non-positive amount %s", src.SourceID, debitID, src.AmountBase)
				continue
			}
			// Allocations are stored at BaseScale.
			if !src.AmountBase.Equal(src.AmountBase.Round(BaseScale)) {
				add(ViolationAmountPrecision, debitID, src.SourceID,
					"source %s for debit %s has amount %s with more than %d decimal places", src.SourceID, debitID, src.AmountBase, BaseScale)
				continue
			}
			sum = sum.Add(src.AmountBase)

			if !src.SourceKind.IsValid() {
				add(ViolationSourceKindMismatch, debitID, src.SourceID,
					"source %s has unknown kind %q", src.SourceID, src.SourceKind)
				continue
			}
			doc := lookup.ResolveSource(src)
			switch {
			case doc == nil:
				add(ViolationSourceNotFound, debitID, src.SourceID, "source %s %s not found", src.SourceKind, src.SourceID)
				continue
			case src.SourceKind == SourceKindCreditDocument && doc.Kind != KindCreditNote:
				add(ViolationSourceKindMismatch, debitID, src.SourceID,
					"source %s is a %s, not a credit note", src.SourceID, doc.Kind)
				continue
			case !doc.IsActive():
				add(ViolationSourceNotActive, debitID, src.SourceID, "source %s is %s", src.SourceID, doc.Status)
				continue
			case doc.Party() != party:
				add(ViolationSourcePartyMismatch, debitID, src.SourceID, "source %s belongs to another party", src.SourceID)
				continue
			}

			if _, ok := draws[doc.ID]; !ok {
				drawOrder = append(drawOrder, doc.ID)
			}
			draws[doc.ID] = draws[doc.ID].Add(src.AmountBase)
		}

		if !debitOK {
			continue
		}
		switch diff := sum.Sub(debit.PendingBase); {
		case diff.IsNegative():
			add(ViolationExactCoverShortfall, debitID, "",
				"debit %s pending %s but sources total %s (short by %s)", debitID, debit.PendingBase, sum, diff.Neg())
		case diff.IsPositive():
			add(ViolationExactCoverExcess, debitID, "",
				"debit %s pending %s but sources total %s (excess of %s)", debitID, debit.PendingBase, sum, diff)
		}
	}

	for _, docID := range drawOrder {
		doc := lookup.Documents[docID]
		if draws[docID].GreaterThan(doc.PendingBase) {
			add(ViolationSourceOverdrawn, "", docID,
				"source %s pending %s but batch draws %s", docID, doc.PendingBase, draws[docID])
		}
	}

	return violations
}

// PlannedAllocation is one allocation a valid batch will create.
type PlannedAllocation struct {
	SourceKind       AllocationSourceKind
	SourceDocumentID string
	DebitDocumentID  string
	AmountBase       decimal.Decimal
}

// PlanManualAllocation turns a batch that passed validation into allocations.
func PlanManualAllocation(entries []ManualAllocationEntry, lookup ManualAllocationLookup) []PlannedAllocation {
	var planned []PlannedAllocation
	for _, entry := range entries {
		for _, src := range entry.Sources {
			doc := lookup.ResolveSource(src)
			if doc == nil {
				continue
			}
			planned = append(planned, PlannedAllocation{
				SourceKind:       src.SourceKind,
				SourceDocumentID: doc.ID,
				DebitDocumentID:  entry.DebitDocumentID,
				AmountBase:       src.AmountBase,
			})
		}
	}
	return planned
}

// Warnings renders violations as human-readable messages.
func Warnings(violations []Violation) []string {
	warnings := make([]string, 0, len(violations))
	for _, v := range violations {
		warnings = append(warnings, v.Message)
	}
	return warnings
}
