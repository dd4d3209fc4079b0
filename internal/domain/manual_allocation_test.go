package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParty = PartyRef{Type: PartyTypeCustomer, ID: "cust-1"}

func doc(id string, kind DocumentKind, pending int64) *LedgerDocument {
	return &LedgerDocument{
		ID:          id,
		PartyType:   testParty.Type,
		PartyID:     testParty.ID,
		Kind:        kind,
		Status:      StatusActive,
		AmountBase:  decimal.NewFromInt(pending),
		PendingBase: decimal.NewFromInt(pending),
	}
}

func lookupOf(docs ...*LedgerDocument) ManualAllocationLookup {
	l := ManualAllocationLookup{
		Documents:      make(map[string]*LedgerDocument),
		ReceiptMirrors: make(map[string]string),
	}
	for _, d := range docs {
		l.Documents[d.ID] = d
		if d.Kind == KindReceipt {
			l.ReceiptMirrors["rcpt-"+d.ID] = d.ID
		}
	}
	return l
}

func codes(vs []Violation) []ViolationCode {
	out := make([]ViolationCode, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

func credit(id string, amount int64) ManualAllocationSource {
	return ManualAllocationSource{SourceKind: SourceKindCreditDocument, SourceID: id, AmountBase: decimal.NewFromInt(amount)}
}

func receiptSrc(docID string, amount int64) ManualAllocationSource {
	return ManualAllocationSource{SourceKind: SourceKindReceipt, SourceID: "rcpt-" + docID, AmountBase: decimal.NewFromInt(amount)}
}

func TestValidateManualAllocation_ExactCover(t *testing.T) {
	lookup := lookupOf(
		doc("inv-1", KindInvoice, 300),
		doc("cn-1", KindCreditNote, 200),
		doc("rc-1", KindReceipt, 500),
	)

	entries := []ManualAllocationEntry{
		{DebitDocumentID: "inv-1", Sources: []ManualAllocationSource{credit("cn-1", 200), receiptSrc("rc-1", 100)}},
	}

	vs := ValidateManualAllocation(testParty, entries, lookup)
	assert.Empty(t, vs)

	planned := PlanManualAllocation(entries, lookup)
	require.Len(t, planned, 2)
	assert.Equal(t, "rc-1", planned[1].SourceDocumentID)
	assert.Equal(t, SourceKindReceipt, planned[1].SourceKind)
}

func TestValidateManualAllocation_Excess(t *testing.T) {
	lookup := lookupOf(doc("d1", KindInvoice, 300), doc("cn-1", KindCreditNote, 400))

	vs := ValidateManualAllocation(testParty, []ManualAllocationEntry{
		{DebitDocumentID: "d1", Sources: []ManualAllocationSource{credit("cn-1", 350)}},
	}, lookup)

	require.Len(t, vs, 1)
	assert.Equal(t, ViolationExactCoverExcess, vs[0].Code)
	assert.Contains(t, vs[0].Message, "d1")
	assert.Contains(t, vs[0].Message, "50")
}

func TestValidateManualAllocation_Shortfall(t *testing.T) {
	lookup := lookupOf(doc("d1", KindInvoice, 300), doc("cn-1", KindCreditNote, 400))

	vs := ValidateManualAllocation(testParty, []ManualAllocationEntry{
		{DebitDocumentID: "d1", Sources: []ManualAllocationSource{credit("cn-1", 250)}},
	}, lookup)

	assert.Equal(t, []ViolationCode{ViolationExactCoverShortfall}, codes(vs))
}

func TestValidateManualAllocation_SourceOverdrawnAcrossDebits(t *testing.T) {
	lookup := lookupOf(
		doc("d1", KindInvoice, 100),
		doc("d2", KindDebitNote, 100),
		doc("cn-1", KindCreditNote, 150),
	)

	vs := ValidateManualAllocation(testParty, []ManualAllocationEntry{
		{DebitDocumentID: "d1", Sources: []ManualAllocationSource{credit("cn-1", 100)}},
		{DebitDocumentID: "d2", Sources: []ManualAllocationSource{credit("cn-1", 100)}},
	}, lookup)

	require.Len(t, vs, 1)
	assert.Equal(t, ViolationSourceOverdrawn, vs[0].Code)
	assert.Equal(t, "cn-1", vs[0].SourceID)
}

func TestValidateManualAllocation_ReportsEveryProblem(t *testing.T) {
	voided := doc("d-void", KindInvoice, 100)
	voided.Status = StatusVoided
	foreign := doc("cn-foreign", KindCreditNote, 100)
	foreign.PartyID = "cust-2"

	lookup := lookupOf(
		voided,
		foreign,
		doc("d1", KindInvoice, 100),
		doc("cn-1", KindCreditNote, 100),
		doc("rc-1", KindReceipt, 100),
	)

	vs := ValidateManualAllocation(testParty, []ManualAllocationEntry{
		{DebitDocumentID: "missing", Sources: []ManualAllocationSource{credit("cn-1", 10)}},
		{DebitDocumentID: "d-void", Sources: []ManualAllocationSource{credit("cn-1", 10)}},
		{DebitDocumentID: "cn-1", Sources: []ManualAllocationSource{credit("cn-1", 10)}},
		{DebitDocumentID: "d1", Sources: []ManualAllocationSource{
			credit("cn-foreign", 10),
			credit("nope", 10),
			credit("rc-1", 10),
			credit("cn-1", 0),
		}},
		{DebitDocumentID: "d1", Sources: []ManualAllocationSource{credit("cn-1", 100)}},
	}, lookup)

	assert.Equal(t, []ViolationCode{
		ViolationDebitNotFound,
		ViolationDebitNotActive,
		ViolationDebitNotAllocatable,
		ViolationSourcePartyMismatch,
		ViolationSourceNotFound,
		ViolationSourceKindMismatch,
		ViolationNonPositiveAmount,
		ViolationExactCoverShortfall,
		ViolationDuplicateDebit,
	}, codes(vs))

	assert.Len(t, Warnings(vs), len(vs))
}

func TestValidateManualAllocation_EmptyInputs(t *testing.T) {
	lookup := lookupOf(doc("d1", KindInvoice, 100))

	assert.Equal(t, []ViolationCode{ViolationEmptyBatch},
		codes(ValidateManualAllocation(testParty, nil, lookup)))

	assert.Equal(t, []ViolationCode{ViolationEmptySources},
		codes(ValidateManualAllocation(testParty, []ManualAllocationEntry{{DebitDocumentID: "d1"}}, lookup)))
}

func TestValidateManualAllocation_SubCentAmounts(t *testing.T) {
	lookup := lookupOf(doc("d1", KindInvoice, 100), doc("cn-1", KindCreditNote, 100))
	sub := func(amount string) ManualAllocationSource {
		return ManualAllocationSource{SourceKind: SourceKindCreditDocument, SourceID: "cn-1", AmountBase: decimal.RequireFromString(amount)}
	}
	// Exact at full precision, but neither amount fits a stored allocation.
	entries := []ManualAllocationEntry{{DebitDocumentID: "d1", Sources: []ManualAllocationSource{sub("50.005"), sub("49.995")}}}

	assert.Equal(t, []ViolationCode{
		ViolationAmountPrecision,
		ViolationAmountPrecision,
		ViolationExactCoverShortfall,
	}, codes(ValidateManualAllocation(testParty, entries, lookup)))

	rounded := RoundManualAllocation(entries)
	assert.Equal(t, "50.01", rounded[0].Sources[0].AmountBase.String())
	assert.Equal(t, "50", rounded[0].Sources[1].AmountBase.String())
	assert.Equal(t, "50.005", entries[0].Sources[0].AmountBase.String(), "input must not be modified")

	assert.Equal(t, []ViolationCode{ViolationExactCoverExcess, ViolationSourceOverdrawn},
		codes(ValidateManualAllocation(testParty, rounded, lookup)))
}

func TestBuildStatement(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	prior := []*LedgerDocument{doc("old-inv", KindInvoice, 100)}
	inv := doc("inv", KindInvoice, 500)
	inv.DocumentDate = day(5)
	rc := doc("rc", KindReceipt, 200)
	rc.DocumentDate = day(10)

	st := BuildStatement(testParty, day(1), day(31), prior, []*LedgerDocument{inv, rc})

	assert.True(t, st.OpeningBalance.Equal(decimal.NewFromInt(100)))
	require.Len(t, st.Lines, 2)
	assert.True(t, st.Lines[0].RunningBalance.Equal(decimal.NewFromInt(600)))
	assert.True(t, st.Lines[1].SignedAmount.Equal(decimal.NewFromInt(-200)))
	assert.True(t, st.ClosingBalance.Equal(decimal.NewFromInt(400)))
}

func TestCheckDocumentConsistency(t *testing.T) {
	d := doc("inv", KindInvoice, 500)
	d.PendingBase = decimal.NewFromInt(300)

	assert.Nil(t, CheckDocumentConsistency(d, decimal.NewFromInt(200)))

	issue := CheckDocumentConsistency(d, decimal.NewFromInt(100))
	require.NotNil(t, issue)
	assert.Equal(t, "inv", issue.DocumentID)

	d.PendingBase = decimal.NewFromInt(-1)
	require.NotNil(t, CheckDocumentConsistency(d, decimal.NewFromInt(501)))
}
