package routes

import (
	"strings"

	"profile-api/internal/delivery/http/handler"
	"profile-api/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	Health   *handler.HealthHandler
	Profiles *handler.ProfileHandler
	Admin    *handler.AdminHandler
	WS       *ws.Handler
	Metrics  prometheus.Gatherer
}

// Register mounts health and metrics at the root and everything else under
// prefix. Nil handlers are skipped.
func (r *Registry) Register(app *fiber.App, prefix string) {
	if app == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Metrics, promhttp.HandlerOpts{})))
	}

	var api fiber.Router = app
	if p := strings.TrimRight(strings.TrimSpace(prefix), "/"); p != "" {
		api = app.Group(p)
	}

	if r.Profiles != nil {
		r.Profiles.RegisterRoutes(api)
	}
	if r.Admin != nil {
		r.Admin.RegisterRoutes(api)
	}
	if r.WS != nil {
		r.WS.RegisterRoutes(api)
	}
}
