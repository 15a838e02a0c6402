package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerhub/admin-gateway/internal/transport"
)

// ProxyHandler forwards entity CRUD calls (policies, contracts, payments,
// users, …) to the brokerage backend through the transport client, which
// attaches the session's bearer token and normalizes failures. The guard
// middleware has already authorized the path by the time this runs.
type ProxyHandler struct {
	client *transport.Client
}

func NewProxyHandler(client *transport.Client) *ProxyHandler {
	return &ProxyHandler{client: client}
}

// Forward relays the request verbatim: same method, path, query, and
// JSON body.
func (h *ProxyHandler) Forward(c echo.Context) error {
	ctx := c.Request().Context()

	path := c.Request().URL.Path
	if q := c.Request().URL.RawQuery; q != "" {
		path += "?" + q
	}

	// body stays untyped nil when the request carries none, so the
	// client sends no payload at all rather than JSON null.
	var body any
	if c.Request().Body != nil {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
		}
		if len(raw) > 0 {
			body = json.RawMessage(raw)
		}
	}

	var (
		resp *transport.Response
		err  error
	)
	switch c.Request().Method {
	case http.MethodGet:
		resp, err = h.client.Get(ctx, path)
	case http.MethodPost:
		resp, err = h.client.Post(ctx, path, body)
	case http.MethodPut:
		resp, err = h.client.Put(ctx, path, body)
	case http.MethodPatch:
		resp, err = h.client.Patch(ctx, path, body)
	case http.MethodDelete:
		resp, err = h.client.Delete(ctx, path)
	default:
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "unsupported method")
	}
	if err != nil {
		return err
	}

	if len(resp.Data) == 0 {
		return c.NoContent(resp.Status)
	}
	return c.JSONBlob(resp.Status, resp.Data)
}
