package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/database"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/logging"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/routes"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/storage"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store/gormstore"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store/memstore"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (overrides CONFIG_FILE)")
	flag.Parse()

	// Structured logging (JSON to stdout)
	logging.Setup()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}
	if *configFile != "" {
		os.Setenv("CONFIG_FILE", *configFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		slog.Error("SESSION_SECRET environment variable is required")
		os.Exit(1)
	}

	// Persistence
	var st store.Store
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		st = memstore.New()
	case "postgres":
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = gormstore.New(database.DB)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(logging.NewStdoutHandler(), pgLogHandler)))
		logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)
	default:
		slog.Error("unknown STORE_DRIVER", "driver", cfg.StoreDriver)
		os.Exit(1)
	}

	media, err := newStorage(cfg)
	if err != nil {
		slog.Error("media storage setup failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	notifier := newNotifier(cfg)

	// Services
	clk := clock.Real()
	otpService := services.NewOTPService(st, clk, notifier, cfg)
	sessionService := services.NewSessionService(st, clk, services.BcryptVerifier{}, cfg)
	reportService := services.NewReportService(st, clk, notifier)
	statusService := services.NewStatusService(st, clk, reportService, notifier)
	proximityService := services.NewProximityService(st, cfg.NearbyMaxRadiusKm)
	submissionService := services.NewSubmissionService(st, otpService, reportService)
	newsService := services.NewNewsService(st, clk)
	visitService := services.NewVisitService(st, clk)

	// Handlers
	authHandler := handlers.NewAuthHandler(otpService, sessionService)
	reportHandler := handlers.NewReportHandler(submissionService, reportService, statusService,
		proximityService, media, cfg.MaxUploadFiles)
	newsHandler := handlers.NewNewsHandler(newsService, media, cfg.MaxUploadFiles)
	analyticsHandler := handlers.NewAnalyticsHandler(visitService)
	healthHandler := handlers.NewHealthHandler(st)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, sessionService, authHandler, reportHandler, newsHandler, analyticsHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "storage", cfg.StorageDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "local":
		return storage.NewLocal(cfg.MediaDir, cfg.MediaBaseURL)
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func newNotifier(cfg *config.Config) services.Notifier {
	if cfg.MailDriver == "smtp" && cfg.SMTPEnabled() {
		return mailer.NewSMTPMailer(cfg)
	}
	slog.Warn("SMTP not configured, notifications are only logged", "mail_driver", cfg.MailDriver)
	return mailer.LogMailer{}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
