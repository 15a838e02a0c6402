package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/transport"
)

func runErrorHandler(t *testing.T, path string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_AuthenticationRequiredRedirects(t *testing.T) {
	err := transport.NormalizeResponse(http.StatusUnauthorized, []byte(`{}`))

	rec := runErrorHandler(t, "/contracts", err)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirect target: %q", loc)
	}
}

func TestErrorHandler_NoRedirectLoopOnLogin(t *testing.T) {
	err := transport.NormalizeResponse(http.StatusUnauthorized, []byte(`{}`))

	rec := runErrorHandler(t, "/login", err)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected plain 401 on /login, got %d", rec.Code)
	}
}

func TestErrorHandler_AuthEndpointsGetPlain401(t *testing.T) {
	err := transport.NormalizeResponse(http.StatusUnauthorized, []byte(`{}`))

	// A rejected login attempt renders in place; no redirect.
	rec := runErrorHandler(t, "/auth/login", err)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestErrorHandler_ValidationCarriesFieldErrors(t *testing.T) {
	err := transport.NormalizeResponse(http.StatusUnprocessableEntity, []byte(`{"errors":{"email":["invalid"]}}`))

	rec := runErrorHandler(t, "/auth/register", err)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var body struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Validation failed" {
		t.Fatalf("message: %q", body.Error)
	}
	if got := body.Fields["email"]; len(got) != 1 || got[0] != "invalid" {
		t.Fatalf("field errors: %+v", body.Fields)
	}
}

func TestErrorHandler_TaxonomyStatuses(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusForbidden, "Insufficient permissions"},
		{http.StatusNotFound, "Resource not found"},
	}

	for _, tc := range tests {
		err := transport.NormalizeResponse(tc.status, []byte(`{}`))
		rec := runErrorHandler(t, "/contracts", err)
		if rec.Code != tc.status {
			t.Errorf("status %d: got %d", tc.status, rec.Code)
		}

		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != tc.message {
			t.Errorf("status %d: message %q, want %q", tc.status, body.Error, tc.message)
		}
	}
}

func TestErrorHandler_UnexpectedErrorIsGeneric(t *testing.T) {
	rec := runErrorHandler(t, "/contracts", errors.New("pg: connection reset"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "An unexpected error occurred" {
		t.Fatalf("internal detail leaked: %q", body.Error)
	}
}
