package handler

import (
	"net/http"

	"github.com/iho/payledger/internal/adapter/http/dto"
)

// BalanceHandler serves the per-party read models.
type BalanceHandler struct {
	balances BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balances BalanceService) *BalanceHandler {
	return &BalanceHandler{balances: balances}
}

// Balances returns outstanding debt, available credit and the net position.
func (h *BalanceHandler) Balances(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	balances, err := h.balances.GetBalances(r.Context(), party)
	if err != nil {
		writeDomainError(w, "failed to get balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances))
}

// Ledger returns a filtered page of the party's documents.
func (h *BalanceHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	q := r.URL.Query()
	filter, err := dto.LedgerQuery{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Kind:   q.Get("kind"),
		Status: q.Get("status"),
	}.ToFilter()
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	page, err := h.balances.GetLedger(r.Context(), party, filter,
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerPageFromUseCase(page))
}

// Selectables lists the debits and credits a new receipt may be allocated against.
func (h *BalanceHandler) Selectables(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	sel, err := h.balances.GetSelectablesForReceipt(r.Context(), party)
	if err != nil {
		writeDomainError(w, "failed to get selectables", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SelectablesFromDomain(sel))
}

// ReceiptCredits lists receipt mirrors that still hold unallocated credit.
func (h *BalanceHandler) ReceiptCredits(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	docs, err := h.balances.GetReceiptCredits(r.Context(), party)
	if err != nil {
		writeDomainError(w, "failed to get receipt credits", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentsFromDomain(docs))
}

// Statement returns the running-balance statement between from and to.
func (h *BalanceHandler) Statement(w http.ResponseWriter, r *http.Request) {
	party, err := partyFromPath(r)
	if err != nil {
		writeDomainError(w, "invalid party", err)
		return
	}

	from, err := dto.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeDomainError(w, "invalid from date", err)
		return
	}
	to, err := dto.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeDomainError(w, "invalid to date", err)
		return
	}

	st, err := h.balances.GetStatement(r.Context(), party, from, to)
	if err != nil {
		writeDomainError(w, "failed to get statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(st))
}

