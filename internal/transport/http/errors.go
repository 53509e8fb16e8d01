package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/bookingapi"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeInvalidID            = "invalid_id"
	codeInvalidOffer         = "invalid_offer"
	codeInvalidPassengerData = "invalid_passenger_data"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidAmount        = "invalid_amount"
	codeIdempotencyRequired  = "idempotency_key_required"
	codeIdempotencyConflict  = "idempotency_conflict"
	codeHoldNotFound         = "hold_not_found"
	codeSliceNotFound        = "slice_not_found"
	codeHoldExpired          = "hold_expired"
	codeAlreadyTerminal      = "hold_already_terminal"
	codePaymentDeclined      = "payment_declined"
	codeQuoteExpired         = "quote_expired"
	codeCurrencyMismatch     = "currency_mismatch"
	codeConcurrentUpdate     = "concurrent_update"
	codeLockTimeout          = "lock_timeout"
	codeConsistency          = "consistency_violation"
	codeUpstreamError        = "upstream_error"
	codeRateLimited          = "rate_limited"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorMappings is checked in order; the first sentinel err wraps wins.
var errorMappings = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrIdempotencyKeyRequired, http.StatusBadRequest, codeIdempotencyRequired},
	{domain.ErrInvalidPassengerData, http.StatusBadRequest, codeInvalidPassengerData},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, codeInvalidQuantity},
	{domain.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
	{domain.ErrCurrencyMismatch, http.StatusUnprocessableEntity, codeCurrencyMismatch},
	{domain.ErrInvalidOffer, http.StatusUnprocessableEntity, codeInvalidOffer},
	{domain.ErrHoldNotFound, http.StatusNotFound, codeHoldNotFound},
	{domain.ErrSliceNotFound, http.StatusNotFound, codeSliceNotFound},
	{domain.ErrIdempotencyConflict, http.StatusConflict, codeIdempotencyConflict},
	{domain.ErrHoldExpired, http.StatusGone, codeHoldExpired},
	{domain.ErrAlreadyTerminal, http.StatusConflict, codeAlreadyTerminal},
	{domain.ErrQuoteExpired, http.StatusConflict, codeQuoteExpired},
	{domain.ErrConcurrentUpdate, http.StatusConflict, codeConcurrentUpdate},
	{domain.ErrPaymentDeclined, http.StatusPaymentRequired, codePaymentDeclined},
	{domain.ErrLockTimeout, http.StatusServiceUnavailable, codeLockTimeout},
	{domain.ErrConsistencyViolation, http.StatusInternalServerError, codeConsistency},
}

// writeServiceError maps a service error to a status and stable code. Only
// mapped errors expose their message.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	if bookingapi.IsUpstream(err) {
		writeError(w, http.StatusBadGateway, codeUpstreamError, "booking provider error")
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
