package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"2026-03-01T10:30:00Z", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), false},
		{" 2026-03-01 ", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"01/03/2026", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("ParseDate(%q): expected validation error, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}

func TestCreateReceiptRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateReceiptRequest{
		PartyType: "customer",
		PartyID:   "c-1",
		Date:      "2026-03-01",
		Currency:  "USD",
		FxRate:    decimal.NewFromInt(1),
		Lines: []PaymentLineRequest{
			{Method: "cash", AmountOriginal: decimal.NewFromInt(40)},
			{Method: "check", AmountOriginal: decimal.NewFromInt(60), CheckNumber: "0042", ValueDate: "2026-03-10"},
		},
		Allocations: []AllocationRequest{{DebitDocumentID: "inv-1", AmountBase: decimal.NewFromInt(100)}},
	}

	got, err := req.ToUseCaseInput("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.CreatedBy != "alice" || got.PartyType != domain.PartyTypeCustomer {
		t.Fatalf("unexpected input %+v", got)
	}
	if len(got.Lines) != 2 || got.Lines[1].Method != domain.MethodCheck || got.Lines[1].ValueDate == nil {
		t.Fatalf("unexpected lines %+v", got.Lines)
	}
	if got.Lines[0].ValueDate != nil {
		t.Fatalf("expected no value date on cash line")
	}
	if len(got.Allocations) != 1 || !got.Allocations[0].AmountBase.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected allocations %+v", got.Allocations)
	}

	req.Lines[0].ValueDate = "tomorrow"
	if _, err := req.ToUseCaseInput("alice"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad value date, got %v", err)
	}
}

func TestManualAllocationRequest_ToDomainEntries(t *testing.T) {
	req := &ManualAllocationRequest{Entries: []ManualEntryRequest{{
		DebitDocumentID: "inv-1",
		Sources: []ManualSourceRequest{
			{SourceKind: "receipt", SourceID: "rcpt-1", AmountBase: decimal.NewFromInt(70)},
			{SourceKind: "credit_document", SourceID: "cn-1", AmountBase: decimal.NewFromInt(30)},
		},
	}}}

	entries := req.ToDomainEntries()
	if len(entries) != 1 || len(entries[0].Sources) != 2 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Sources[0].SourceKind != domain.SourceKindReceipt || entries[0].Sources[1].SourceKind != domain.SourceKindCreditDocument {
		t.Fatalf("unexpected source kinds %+v", entries[0].Sources)
	}
}

func TestLedgerQuery_ToFilter(t *testing.T) {
	f, err := LedgerQuery{From: "2026-01-01", Kind: "invoice", Status: "active"}.ToFilter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.From == nil || f.To != nil || *f.Kind != domain.KindInvoice || *f.Status != domain.StatusActive {
		t.Fatalf("unexpected filter %+v", f)
	}

	if _, err := (LedgerQuery{To: "soon"}).ToFilter(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
