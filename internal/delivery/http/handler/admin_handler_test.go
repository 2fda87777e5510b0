package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"profile-api/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	resets   int
	seeded   []int
	resetErr error
	seedErr  error
}

func (f *fakeAdmin) ResetSchema(context.Context) error {
	f.resets++
	return f.resetErr
}

func (f *fakeAdmin) SeedProfiles(_ context.Context, count int) error {
	f.seeded = append(f.seeded, count)
	return f.seedErr
}

func newAdminApp(adm *fakeAdmin) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	NewAdminHandler(adm, adm, 1000).RegisterRoutes(app)
	return app
}

func TestAdminHandler_CreateTables(t *testing.T) {
	adm := &fakeAdmin{}
	app := newAdminApp(adm)

	resp, raw := doRequest(t, app, http.MethodGet, "/create_tables", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Say":"Tables created!"}`, string(raw))
	assert.Equal(t, 1, adm.resets)

	adm.resetErr = errors.New("boom")
	resp, _ = doRequest(t, app, http.MethodGet, "/create_tables", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestAdminHandler_CreateProfiles(t *testing.T) {
	adm := &fakeAdmin{}
	app := newAdminApp(adm)

	resp, raw := doRequest(t, app, http.MethodGet, "/create_profiles/25", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Say":"Profiles created!"}`, string(raw))
	assert.Equal(t, []int{25}, adm.seeded)

	for _, n := range []string{"0", "-3", "abc", "1001"} {
		resp, _ := doRequest(t, app, http.MethodGet, "/create_profiles/"+n, "")
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, n)
	}
	assert.Len(t, adm.seeded, 1)

	adm.seedErr = errors.New("insert failed")
	resp, _ = doRequest(t, app, http.MethodGet, "/create_profiles/5", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
