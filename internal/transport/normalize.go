package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

// APIError is the normalized form of every failure leaving the transport
// layer. No raw *http.Response or net error escapes this package.
type APIError struct {
	Message string
	Status  int
	Data    json.RawMessage
	// Fields carries the per-field messages of a 422 validation failure.
	// It is nil for every other status.
	Fields map[string][]string
}

func (e *APIError) Error() string { return e.Message }

// Unwrap maps the error onto the domain taxonomy so callers can use
// errors.Is without depending on status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrAuthenticationRequired
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnprocessableEntity:
		return domain.ErrValidation
	default:
		return nil
	}
}

// validationBody is the 422 contract: {"errors": {"field": ["msg", ...]}}.
type validationBody struct {
	Errors map[string][]string `json:"errors"`
}

// NormalizeFailure maps a client-side error (no response at all) into an
// APIError carrying the raw message.
func NormalizeFailure(err error) *APIError {
	if err == nil {
		return &APIError{Message: "An unexpected error occurred"}
	}
	return &APIError{Message: err.Error()}
}

// NormalizeResponse maps a non-2xx response into the fixed taxonomy.
// Unrecognized statuses and unparseable bodies fall through to the
// generic message.
func NormalizeResponse(status int, body []byte) *APIError {
	out := &APIError{Status: status, Data: json.RawMessage(body)}

	switch status {
	case http.StatusUnauthorized:
		out.Message = "Authentication required"
	case http.StatusForbidden:
		out.Message = "Insufficient permissions"
	case http.StatusNotFound:
		out.Message = "Resource not found"
	case http.StatusUnprocessableEntity:
		out.Message = "Validation failed"
		var vb validationBody
		if err := json.Unmarshal(body, &vb); err == nil && len(vb.Errors) > 0 {
			out.Fields = vb.Errors
		}
	default:
		out.Message = "An unexpected error occurred"
		out.Data = nil
	}

	return out
}

// FieldErrors extracts the form-error map from an error, or nil when the
// error is not a 422 validation failure. Forms unpack this; every other
// error renders as a single message.
func FieldErrors(err error) map[string][]string {
	var ae *APIError
	if !errors.As(err, &ae) {
		return nil
	}
	if ae.Status != http.StatusUnprocessableEntity {
		return nil
	}
	return ae.Fields
}
