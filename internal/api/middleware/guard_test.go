package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
	"github.com/brokerhub/admin-gateway/internal/guard"
	"github.com/brokerhub/admin-gateway/internal/routing"
	"github.com/brokerhub/admin-gateway/internal/session"
)

type stubBackend struct{}

func (stubBackend) Login(context.Context, ports.Credentials) (*ports.AuthResult, error) {
	return nil, nil
}

func (stubBackend) Register(context.Context, ports.Registration) (*ports.AuthResult, error) {
	return nil, nil
}

func (stubBackend) Logout(context.Context) error { return nil }

type stubStorage struct {
	env *domain.SessionEnvelope
}

func (s *stubStorage) Load(context.Context) (*domain.SessionEnvelope, error) { return s.env, nil }

func (s *stubStorage) Save(_ context.Context, env domain.SessionEnvelope) error {
	copied := env
	s.env = &copied
	return nil
}

func (s *stubStorage) Clear(context.Context) error {
	s.env = nil
	return nil
}

type recordingAuditor struct {
	events []ports.AccessEvent
}

func (r *recordingAuditor) Record(event ports.AccessEvent) {
	r.events = append(r.events, event)
}

func newGuardFixture(t *testing.T, env *domain.SessionEnvelope, hydrate bool) (*guard.Guard, *session.Store) {
	t.Helper()
	routes, err := routing.NewService(routing.DefaultTable())
	if err != nil {
		t.Fatalf("route service: %v", err)
	}
	store := session.NewStore(stubBackend{}, &stubStorage{env: env}, zerolog.Nop())
	if hydrate {
		store.InitializeAuth(context.Background())
	}
	return guard.New(routes), store
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, path string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func adminEnvelope() *domain.SessionEnvelope {
	return &domain.SessionEnvelope{State: domain.SessionState{
		Token: "tok",
		User:  &domain.User{ID: "u1", Email: "op@broker.test", Role: domain.RoleAdmin},
	}}
}

func TestGuard_WaitsBeforeHydration(t *testing.T) {
	g, store := newGuardFixture(t, nil, false)
	auditor := &recordingAuditor{}
	mw := Guard(g, store, auditor)

	rec, called := invoke(t, mw, "/policies")
	if called {
		t.Fatalf("handler reached before hydration")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
	// Hydration gating: waits are not redirects and are not audited.
	if len(auditor.events) != 0 {
		t.Fatalf("wait was audited: %+v", auditor.events)
	}
}

func TestGuard_RedirectsAnonymousAndAudits(t *testing.T) {
	g, store := newGuardFixture(t, nil, true)
	auditor := &recordingAuditor{}
	mw := Guard(g, store, auditor)

	rec, called := invoke(t, mw, "/policies")
	if called {
		t.Fatalf("handler reached without a session")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirect target: %q", loc)
	}
	if len(auditor.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(auditor.events))
	}
	event := auditor.events[0]
	if event.Path != "/policies" || event.Target != "/login" || event.Reason != guard.ReasonUnauthenticated {
		t.Fatalf("unexpected audit event: %+v", event)
	}
	if event.ID == "" {
		t.Fatalf("audit event missing id")
	}
}

func TestGuard_RendersAuthorized(t *testing.T) {
	g, store := newGuardFixture(t, adminEnvelope(), true)
	mw := Guard(g, store, &recordingAuditor{})

	rec, called := invoke(t, mw, "/users")
	if !called {
		t.Fatalf("authorized request blocked")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_BouncesAuthenticatedFromLogin(t *testing.T) {
	g, store := newGuardFixture(t, adminEnvelope(), true)
	mw := Guard(g, store, &recordingAuditor{})

	rec, called := invoke(t, mw, "/login")
	if called {
		t.Fatalf("login rendered for an authenticated session")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/admin" {
		t.Fatalf("bounce target: %q", loc)
	}
}

func TestGuard_RecomputesAfterTransition(t *testing.T) {
	g, store := newGuardFixture(t, adminEnvelope(), true)
	mw := Guard(g, store, &recordingAuditor{})

	if _, called := invoke(t, mw, "/users"); !called {
		t.Fatalf("expected render before logout")
	}

	store.Logout(context.Background())

	rec, called := invoke(t, mw, "/users")
	if called {
		t.Fatalf("handler reached after logout")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirect target after logout: %q", loc)
	}
}
