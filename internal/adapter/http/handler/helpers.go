package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/iho/payledger/internal/adapter/http/dto"
	"github.com/iho/payledger/internal/domain"
)

// ActorHeader carries the caller identity recorded on receipts and batches.
const ActorHeader = "X-Actor"

// retryAfterSeconds is sent with 503 responses for concurrency failures.
const retryAfterSeconds = "1"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it. Internal errors never
// leak their details to the client.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)
	switch status {
	case http.StatusInternalServerError:
		log.Error().Err(err).Msg(message)
		writeError(w, status, message, "")
		return
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientCredit),
		errors.Is(err, domain.ErrOverAllocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConcurrency):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// actor returns the caller identity, or "system" when the header is absent.
func actor(r *http.Request) string {
	if a := r.Header.Get(ActorHeader); a != "" {
		return a
	}
	return "system"
}

// partyFromPath reads the {partyType}/{partyId} segments. The collection name is
// plural on the wire (customers, suppliers).
func partyFromPath(r *http.Request) (domain.PartyRef, error) {
	var pt domain.PartyType
	switch chi.URLParam(r, "partyType") {
	case "customers":
		pt = domain.PartyTypeCustomer
	case "suppliers":
		pt = domain.PartyTypeSupplier
	default:
		return domain.PartyRef{}, domain.ErrInvalidPartyType
	}
	party := domain.PartyRef{Type: pt, ID: chi.URLParam(r, "partyId")}
	return party, party.Validate()
}
