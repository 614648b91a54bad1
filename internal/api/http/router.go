package http

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/api/http/handlers"
	"github.com/gitanomongolomon/gmm-site/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Updates        *handlers.UpdatesHandler
	Stream         *handlers.StreamHandler
	Telemetry      *handlers.TelemetryHandler
	Chat           *handlers.ChatHandler
	OG             *handlers.OGHandler
	Blobs          *handlers.BlobsHandler
	AuthMiddleware *auth.AuthMiddleware
	StaticDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/tickets", cfg.Tickets.Submit)

	api.Get("/updates", cfg.Updates.List)
	api.Get("/updates/latest", cfg.Updates.Latest)
	api.Get("/updates/stream", cfg.Stream.Updates)
	api.Get("/updates/:slug", cfg.Updates.Detail)
	api.Get("/banner", cfg.Updates.Banner)

	api.Get("/telemetry", cfg.Telemetry.Status)
	api.Post("/chat", cfg.Chat.Ask)
	api.Get("/og/updates/:slug?", cfg.OG.Render)

	admin := api.Group("/admin")
	admin.Post("/login", cfg.Auth.Login)
	admin.Post("/logout", cfg.Auth.Logout)

	protected := admin.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	protected.Get("/session", cfg.Auth.Session)
	protected.Get("/stream", cfg.Stream.Admin)
	protected.Get("/metrics", cfg.Health.Metrics)

	protected.Get("/tickets", cfg.Tickets.List)
	protected.Post("/tickets/:id/status", cfg.Tickets.SetStatus)
	protected.Delete("/tickets/:id", cfg.Tickets.Delete)

	protected.Get("/updates", cfg.Updates.AdminList)
	protected.Post("/updates", cfg.Updates.Create)
	protected.Patch("/updates/:id", cfg.Updates.Edit)
	protected.Delete("/updates/:id", cfg.Updates.Delete)
	protected.Post("/uploads", cfg.Updates.Upload)

	if cfg.Blobs != nil {
		app.Get("/blobs/:bucket/*", cfg.Blobs.Get)
	}
	if cfg.StaticDir != "" {
		registerStatic(app, cfg.StaticDir)
	}
}

// registerStatic serves the single-page app, answering unknown non-API paths with index.html.
func registerStatic(app *fiber.App, dir string) {
	app.Static("/", dir)
	index := filepath.Join(dir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return fiber.ErrNotFound
		}
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}
