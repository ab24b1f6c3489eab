package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/handler"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Report *handler.ReportHandler
	Health *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the
// given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")
	api.Get("/partners", h.Report.Partners)
	api.Get("/rankings", h.Report.Rankings)
	api.Get("/categories", h.Report.Categories)
	api.Get("/regions", h.Report.Regions)
	api.Get("/status", h.Report.Status)
	api.Get("/export/latest", h.Report.LatestExport)
}
