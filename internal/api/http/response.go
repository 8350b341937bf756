package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
)

// retryAfterSeconds is advertised on contention responses.
const retryAfterSeconds = "1"

// SchemaError rejects a payload before it reaches a service: malformed JSON,
// a field of the wrong type or a missing required field.
type SchemaError struct {
	Message string `json:"erreur"`
	Field   string `json:"champ,omitempty"`
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func missingField(field string) *SchemaError {
	return &SchemaError{Message: "champ requis", Field: field}
}

func invalidField(field, message string) *SchemaError {
	return &SchemaError{Message: message, Field: field}
}

type errorResponse struct {
	Message string `json:"erreur"`
	Field   string `json:"champ,omitempty"`
}

// StatusFor maps a service error to its HTTP status code.
func StatusFor(err error) int {
	var schemaErr *SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrContention), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientObjectiveFunds),
		errors.Is(err, domain.ErrRepaymentExceedsDebt):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	resp := errorResponse{Message: err.Error()}

	var schemaErr *SchemaError
	switch {
	case errors.As(err, &schemaErr):
		resp = errorResponse{Message: schemaErr.Message, Field: schemaErr.Field}
	case status == http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Unhandled error", "path", r.URL.Path, "error", err)
		resp.Message = "erreur interne"
	case errors.Is(err, domain.ErrContention):
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeJSON(w, status, resp)
}
