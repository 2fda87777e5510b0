package handler

import (
	"context"
	"time"

	"profile-api/internal/delivery/http/dto"
	"profile-api/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Root(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.SayResponse{Say: "Hello!"})
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	res := dto.HealthResponse{Database: probe(ctx, h.db), Cache: probe(ctx, h.cache)}
	if res.Database != "ok" || res.Cache != "ok" {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, res)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "unconfigured"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
