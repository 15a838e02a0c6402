package domain

import "errors"

var (
	// ErrAuthenticationRequired maps to upstream 401: the session has no
	// valid credential. Handled centrally (forced logout + redirect).
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden maps to upstream 403.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrNotFound maps to upstream 404.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation maps to upstream 422; the transport layer carries the
	// per-field messages alongside it.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidRouteTable signals a malformed route policy table at startup.
	ErrInvalidRouteTable = errors.New("invalid route table")
)
