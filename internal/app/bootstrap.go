package app

import (
	"context"
	"fmt"
	"strings"

	"profile-api/internal/config"
	"profile-api/internal/delivery/http/handler"
	"profile-api/internal/delivery/http/middleware"
	"profile-api/internal/delivery/http/routes"
	"profile-api/internal/pkg/metrics"
	"profile-api/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber *fiber.App
}

// New builds the Fiber app around an already assembled route registry.
func New(cfg config.Config, registry *routes.Registry, logger *zap.Logger, m *metrics.Metrics) *App {
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, logger, m)
	if registry != nil {
		registry.Register(f, cfg.App.APIPrefix)
	}

	return &App{Fiber: f}
}

func Bootstrap(cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	registry := &routes.Registry{
		Health: handler.NewHealthHandler(c.DB, c.Cache),
		Profiles: handler.NewProfileHandler(c.Profiles, handler.Paging{
			DefaultLimit: cfg.Profiles.DefaultPageSize,
			MaxLimit:     cfg.Profiles.MaxPageSize,
		}),
		WS:      ws.NewHandler(c.Hub, c.Logger),
		Metrics: c.Metrics.Registry,
	}
	if cfg.App.AdminEndpoints {
		registry.Admin = handler.NewAdminHandler(c.Admin, c.Admin, cfg.Profiles.MaxSeedCount)
	}

	application := New(cfg, registry, c.Logger, c.Metrics)

	cleanup := func() error {
		stopHub()
		return c.Close()
	}
	return application, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger, m *metrics.Metrics) {
	if app == nil {
		return
	}

	accessLog := middleware.NewAccessLogMiddleware(logger, m)
	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(accessLog.Middleware())
	app.Use(errMw.Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
