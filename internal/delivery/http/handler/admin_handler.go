package handler

import (
	"context"
	"strconv"

	"profile-api/internal/delivery/http/dto"
	"profile-api/internal/delivery/http/middleware"
	"profile-api/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// SchemaManager recreates the profiles schema and drops stale cache entries.
type SchemaManager interface {
	ResetSchema(ctx context.Context) error
}

// ProfileSeeder bulk inserts generated profiles.
type ProfileSeeder interface {
	SeedProfiles(ctx context.Context, count int) error
}

// AdminHandler exposes the data management endpoints used to prepare test
// environments.
type AdminHandler struct {
	schema   SchemaManager
	seeder   ProfileSeeder
	maxCount int
}

func NewAdminHandler(schema SchemaManager, seeder ProfileSeeder, maxCount int) *AdminHandler {
	return &AdminHandler{schema: schema, seeder: seeder, maxCount: maxCount}
}

func (h *AdminHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/create_tables", h.CreateTables)
	r.Get("/create_profiles/:number", h.CreateProfiles)
}

func (h *AdminHandler) CreateTables(c fiber.Ctx) error {
	if err := h.schema.ResetSchema(c.Context()); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.SayResponse{Say: "Tables created!"})
}

func (h *AdminHandler) CreateProfiles(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("number"))
	if err != nil || n <= 0 || (h.maxCount > 0 && n > h.maxCount) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "number must be in 1.."+strconv.Itoa(h.maxCount), nil, err)
	}

	if err := h.seeder.SeedProfiles(c.Context(), n); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.SayResponse{Say: "Profiles created!"})
}
