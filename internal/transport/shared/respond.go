// Package shared holds response helpers used by all HTTP handlers.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "smartsave/pkg/domain-errors"
)

// Envelope is the standard response shape: a success indicator plus either
// payload fields or an error message.
type Envelope map[string]any

// WriteJSON writes payload with success=true merged in.
func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	body := Envelope{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into its HTTP status and a stable,
// user-safe message. Raw store errors never reach the caller.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusOf(dErrors.CodeOf(err)))
	_ = json.NewEncoder(w).Encode(Envelope{
		"success": false,
		"error":   dErrors.MessageOf(err),
	})
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidState:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
