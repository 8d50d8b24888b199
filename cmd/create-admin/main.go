// Command create-admin registers a staff account that can sign in to
// manage reports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/database"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/logging"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store/gormstore"
)

func main() {
	name := flag.String("name", "Luis Hernandez", "display name")
	username := flag.String("username", "lhernandez", "login name")
	password := flag.String("password", "", "password, at least 8 characters (or ADMIN_PASSWORD)")
	flag.Parse()

	logging.Setup()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}
	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions := services.NewSessionService(gormstore.New(database.DB), clock.Real(), services.BcryptVerifier{}, cfg)
	user, err := sessions.CreateStaffUser(ctx, *name, *username, *password)
	if err != nil {
		slog.Error("failed to create staff user", "username", *username, "error", err)
		os.Exit(1)
	}
	slog.Info("staff user created", "id", user.ID, "username", user.Username)
}
