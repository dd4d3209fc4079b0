package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/payledger/internal/adapter/http/dto"
	"github.com/iho/payledger/internal/usecase"
)

// AllocationHandler handles allocation requests.
type AllocationHandler struct {
	allocations AllocationService
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(allocations AllocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

// Apply moves credit from one source document to one debit document.
func (h *AllocationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	alloc, err := h.allocations.ApplyAllocation(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to apply allocation", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AllocationFromDomain(alloc))
}

// CoverInvoice covers the debit document with the given external reference from several sources.
func (h *AllocationHandler) CoverInvoice(w http.ResponseWriter, r *http.Request) {
	var req dto.CoverInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := h.allocations.CoverInvoiceWithReceipts(r.Context(), req.ToUseCaseInput()); err != nil {
		writeDomainError(w, "failed to cover invoice", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByDocument lists the allocations touching a document.
func (h *AllocationHandler) ListByDocument(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.allocations.ListDocumentAllocations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list allocations", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationsFromDomain(allocs))
}

// GetBatch retrieves an executed manual batch.
func (h *AllocationHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.allocations.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get allocation batch", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}

// PreviewManual validates a manual batch without writing. Problems are reported
// in the body; the status is 200 either way.
func (h *AllocationHandler) PreviewManual(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	var req dto.ManualAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.allocations.PreviewManualAllocation(r.Context(), party, req.ToDomainEntries())
	if err != nil {
		writeDomainError(w, "failed to preview allocation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ManualAllocationFromResult(result))
}

// ExecuteManual writes a manual batch when it validates cleanly and otherwise
// writes nothing and returns the same problems as the preview.
func (h *AllocationHandler) ExecuteManual(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	var req dto.ManualAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.allocations.ExecuteManualAllocation(r.Context(), usecase.ExecuteManualAllocationInput{
		PartyType: party.Type,
		PartyID:   party.ID,
		CreatedBy: actor(r),
		Entries:   req.ToDomainEntries(),
	})
	if err != nil {
		writeDomainError(w, "failed to execute allocation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ManualAllocationFromResult(result))
}
