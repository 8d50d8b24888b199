package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func perIP(limit int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	sessions middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	newsHandler *handlers.NewsHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	healthHandler *handlers.HealthHandler,
) {
	// Uploaded files, when kept on local disk
	if cfg.StorageDriver == "local" {
		app.Static(cfg.MediaBaseURL, cfg.MediaDir, fiber.Static{MaxAge: 3600})
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(perIP(60))

	api.Get("/health", healthHandler.Check)

	// Code requests send email and logins check passwords: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Post("/request-code", perIP(10), authHandler.RequestCode)
	auth.Post("/login", perIP(10), authHandler.Login)
	auth.Get("/me", middleware.SessionRequired(sessions), authHandler.Me)
	auth.Post("/logout", middleware.SessionRequired(sessions), authHandler.Logout)

	staff := middleware.SessionRequired(sessions)
	optional := middleware.OptionalSession(sessions)

	reports := api.Group("/reports")
	reports.Post("/", reportHandler.Create)
	reports.Get("/", optional, reportHandler.List)
	reports.Get("/nearby", optional, reportHandler.Nearby)
	reports.Get("/:id", optional, reportHandler.Get)

	// Staff only
	reports.Patch("/:id/status", staff, reportHandler.UpdateStatus)
	reports.Post("/:id/comments", staff, reportHandler.AddComment)
	reports.Post("/:id/media", staff, reportHandler.AddMedia)
	reports.Patch("/:id", staff, reportHandler.Update)
	reports.Delete("/:id", staff, reportHandler.Delete)

	news := api.Group("/news")
	news.Get("/", newsHandler.List)
	news.Get("/:id", newsHandler.Get)
	news.Post("/", staff, newsHandler.Create)
	news.Put("/:id", staff, newsHandler.Update)
	news.Delete("/:id", staff, newsHandler.Delete)

	analytics := api.Group("/analytics")
	analytics.Post("/visits", analyticsHandler.RegisterVisit)
	analytics.Get("/visits/count", analyticsHandler.VisitCount)
}
