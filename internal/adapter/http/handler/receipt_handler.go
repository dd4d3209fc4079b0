package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/payledger/internal/adapter/http/dto"
)

// ReceiptHandler handles receipt requests.
type ReceiptHandler struct {
	receipts ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receipts ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Create records a receipt, its mirror document and any inline allocations.
func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(actor(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid receipt", err.Error())
		return
	}

	receipt, err := h.receipts.CreateReceipt(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create receipt", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReceiptFromDomain(receipt))
}

// Get retrieves a receipt with its payment lines.
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.receipts.GetReceipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get receipt", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// Void voids a receipt that has no allocations.
func (h *ReceiptHandler) Void(w http.ResponseWriter, r *http.Request) {
	if _, err := h.receipts.VoidReceipt(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to void receipt", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
