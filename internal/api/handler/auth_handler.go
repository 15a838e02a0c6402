package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerhub/admin-gateway/internal/api/metrics"
	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
	"github.com/brokerhub/admin-gateway/internal/session"
)

// AuthHandler adapts the session store's transitions to HTTP. Login and
// register failures come back through the central error handler; the
// store has already captured the message into its snapshot for the
// session endpoint to report.
type AuthHandler struct {
	store   *session.Store
	backend ports.AuthBackend
}

func NewAuthHandler(store *session.Store, backend ports.AuthBackend) *AuthHandler {
	return &AuthHandler{store: store, backend: backend}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the sanitized session snapshot: the bearer token
// never leaves the gateway.
type sessionResponse struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
	IsLoading       bool         `json:"is_loading"`
	Error           string       `json:"error,omitempty"`
	Hydrated        bool         `json:"hydrated"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
		Error:           s.Error,
		Hydrated:        s.Hydrated,
	}
}

// Login authenticates the operator session against the backend.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err := h.store.Login(c.Request().Context(), ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusOK, toSessionResponse(h.store.Snapshot()))
}

// Register creates an account and signs the session in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err := h.store.Register(c.Request().Context(), ports.Registration{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusCreated, toSessionResponse(h.store.Snapshot()))
}

// Logout clears the session. The local state is cleared first and always
// succeeds; backend revocation is best effort.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	h.store.Logout(ctx)
	_ = h.backend.Logout(ctx)
	return c.NoContent(http.StatusNoContent)
}

// Session reports the sanitized snapshot.
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.store.Snapshot()))
}

// ClearError drops a captured auth error so forms can reset.
func (h *AuthHandler) ClearError(c echo.Context) error {
	h.store.ClearError()
	return c.NoContent(http.StatusNoContent)
}
