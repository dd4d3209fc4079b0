package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/payledger/internal/adapter/http/dto"
)

// SequenceHandler exposes the numbering sequences.
type SequenceHandler struct {
	sequences SequenceService
}

// NewSequenceHandler creates a new SequenceHandler.
func NewSequenceHandler(sequences SequenceService) *SequenceHandler {
	return &SequenceHandler{sequences: sequences}
}

// Next issues the next number of a scope.
func (h *SequenceHandler) Next(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")

	n, err := h.sequences.GetNext(r.Context(), scope)
	if err != nil {
		writeDomainError(w, "failed to issue number", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SequenceNumberResponse{Scope: scope, Number: n})
}

// Get shows the number a scope will issue next without consuming it.
func (h *SequenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	seq, err := h.sequences.Peek(r.Context(), chi.URLParam(r, "scope"))
	if err != nil {
		writeDomainError(w, "failed to get sequence", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SequenceResponse{Scope: seq.Scope, NextNumber: seq.NextNumber})
}
