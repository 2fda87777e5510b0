package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"profile-api/internal/pkg/metrics"
	"profile-api/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(m *metrics.Metrics) *fiber.App {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(nil, m).Middleware())
	app.Use(NewErrorMiddleware(nil).Middleware())

	app.Get("/ok", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusNotFound, "Profile not found!", nil, errors.New("no rows"))
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "pq: relation does not exist", nil, errors.New("pq"))
	})
	app.Get("/raw", func(c fiber.Ctx) error { return errors.New("unexpected") })
	app.Get("/panic", func(c fiber.Ctx) error { panic("kaboom") })
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) response.SemanticResponse {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env response.SemanticResponse
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func TestErrorMiddleware(t *testing.T) {
	app := newTestApp(nil)

	tests := []struct {
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"/missing", fiber.StatusNotFound, "Profile not found!"},
		{"/boom", fiber.StatusInternalServerError, response.MessageInternalServerError},
		{"/raw", fiber.StatusInternalServerError, response.MessageInternalServerError},
		{"/panic", fiber.StatusInternalServerError, response.MessageInternalServerError},
		{"/nowhere", fiber.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, resp.StatusCode)

			env := decodeEnvelope(t, resp)
			assert.Equal(t, tt.wantStatus, env.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, env.Message)
			}
		})
	}
}

func TestAccessLog_RequestID(t *testing.T) {
	app := newTestApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "rid-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "rid-123", resp.Header.Get(HeaderRequestID))
}

func TestAccessLog_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	app := newTestApp(m)

	for _, p := range []string{"/ok", "/ok", "/missing"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, p, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/ok", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/missing", http.MethodGet, "404")))
}
