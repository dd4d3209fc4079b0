package handler

import (
	"net/http"

	"github.com/iho/payledger/internal/adapter/http/dto"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	consistency ConsistencyService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(consistency ConsistencyService) *LedgerHandler {
	return &LedgerHandler{consistency: consistency}
}

// CheckConsistency verifies every document against its allocations.
// An inconsistent ledger is reported with 409.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.consistency.Check(r.Context())
	if err != nil {
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ConsistencyFromDomain(report))
}
