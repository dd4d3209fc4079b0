package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/adapter/http/dto"
	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
)

const upsertBody = `{
	"party_type": "customer",
	"party_id": "c-1",
	"kind": "invoice",
	"external_ref_id": "ext-1",
	"external_ref_number": "A-0001",
	"document_date": "2026-03-01",
	"currency": "USD",
	"amount_base": "1000.00",
	"fx_rate": "1"
}`

func TestDocumentHandler_Upsert(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"created", upsertBody, nil, http.StatusOK},
		{"receipt kind rejected", upsertBody, domain.ErrReceiptKindIngest, http.StatusBadRequest},
		{"ambiguous reference", upsertBody, domain.ErrAmbiguousDocument, http.StatusConflict},
		{"malformed json", `{"party_type":`, nil, http.StatusBadRequest},
		{"unknown field", `{"amount":"1"}`, nil, http.StatusBadRequest},
		{"bad date", strings.Replace(upsertBody, "2026-03-01", "March", 1), nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.FiscalDocumentInput
			h := NewDocumentHandler(&ingestionStub{
				upsertFn: func(ctx context.Context, input usecase.FiscalDocumentInput) (string, error) {
					captured = input
					if tt.err != nil {
						return "", tt.err
					}
					return "doc-1", nil
				},
			}, nil)

			req := httptest.NewRequest(http.MethodPost, "/external-documents", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Upsert(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp dto.IDResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.ID != "doc-1" {
				t.Fatalf("expected id doc-1, got %q", resp.ID)
			}
			if captured.Kind != domain.KindInvoice || !captured.AmountBase.Equal(decimal.NewFromInt(1000)) {
				t.Fatalf("unexpected input %+v", captured)
			}
		})
	}
}

func TestDocumentHandler_Void(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"voided", nil, http.StatusNoContent},
		{"missing", domain.ErrDocumentNotFound, http.StatusNotFound},
		{"already voided", domain.ErrAlreadyVoided, http.StatusConflict},
		{"receipt mirror", domain.ErrReceiptVoidViaEngine, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotParty domain.PartyType
			var gotRef string
			var gotKind domain.DocumentKind
			h := NewDocumentHandler(&ingestionStub{
				cancelFn: func(ctx context.Context, partyType domain.PartyType, externalRefID string, kind domain.DocumentKind) error {
					gotParty, gotRef, gotKind = partyType, externalRefID, kind
					return tt.err
				},
			}, nil)

			req := httptest.NewRequest(http.MethodPut, "/external-documents/void/credit_note/ext-7?partyType=supplier", nil)
			req = withURLParams(req, "kind", "credit_note", "externalRefId", "ext-7")
			rec := httptest.NewRecorder()
			h.Void(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if gotParty != domain.PartyTypeSupplier || gotRef != "ext-7" || gotKind != domain.KindCreditNote {
				t.Fatalf("unexpected arguments %s %s %s", gotParty, gotRef, gotKind)
			}
		})
	}
}

func TestDocumentHandler_ListByParty(t *testing.T) {
	h := NewDocumentHandler(nil, &documentQueryStub{
		listFn: func(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
			if party.Type != domain.PartyTypeCustomer || party.ID != "c-1" {
				t.Fatalf("unexpected party %+v", party)
			}
			return []*domain.LedgerDocument{{ID: "d-2"}, {ID: "d-1"}}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/customers/c-1/documents", nil),
		"partyType", "customers", "partyId", "c-1")
	rec := httptest.NewRecorder()
	h.ListByParty(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var docs []dto.DocumentResponse
	if err := json.NewDecoder(rec.Body).Decode(&docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "d-2" {
		t.Fatalf("unexpected documents %+v", docs)
	}

	bad := withURLParams(httptest.NewRequest(http.MethodGet, "/partners/c-1/documents", nil),
		"partyType", "partners", "partyId", "c-1")
	rec = httptest.NewRecorder()
	h.ListByParty(rec, bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown party collection, got %d", rec.Code)
	}
}

func TestDocumentHandler_Get(t *testing.T) {
	h := NewDocumentHandler(nil, &documentQueryStub{
		getFn: func(ctx context.Context, id string) (*domain.LedgerDocument, error) {
			if id == "missing" {
				return nil, domain.ErrDocumentNotFound
			}
			return &domain.LedgerDocument{ID: id, Kind: domain.KindInvoice}, nil
		},
	})

	for id, want := range map[string]int{"d-1": http.StatusOK, "missing": http.StatusNotFound} {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil), "id", id)
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		if rec.Code != want {
			t.Errorf("GET %s: expected %d, got %d", id, want, rec.Code)
		}
	}
}
