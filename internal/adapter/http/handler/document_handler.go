package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/payledger/internal/adapter/http/dto"
	"github.com/iho/payledger/internal/domain"
)

// DocumentHandler handles external document ingestion and document reads.
type DocumentHandler struct {
	ingestion IngestionService
	documents DocumentQueryService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(ingestion IngestionService, documents DocumentQueryService) *DocumentHandler {
	return &DocumentHandler{ingestion: ingestion, documents: documents}
}

// Upsert creates or corrects a document identified by its external reference.
func (h *DocumentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document", err.Error())
		return
	}

	id, err := h.ingestion.UpsertFiscalDocument(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to upsert document", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IDResponse{ID: id})
}

// Void cancels the active document with the given external reference.
func (h *DocumentHandler) Void(w http.ResponseWriter, r *http.Request) {
	kind := domain.DocumentKind(chi.URLParam(r, "kind"))
	externalRefID := chi.URLParam(r, "externalRefId")
	partyType := domain.PartyType(r.URL.Query().Get("partyType"))

	if err := h.ingestion.CancelFiscalDocument(r.Context(), partyType, externalRefID, kind); err != nil {
		writeDomainError(w, "failed to void document", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get retrieves a ledger document by ID.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get document", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromDomain(doc))
}

// ListByParty lists the active documents of a party, newest first.
func (h *DocumentHandler) ListByParty(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	docs, err := h.documents.GetPartyDocuments(r.Context(), party)
	if err != nil {
		writeDomainError(w, "failed to list documents", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentsFromDomain(docs))
}
