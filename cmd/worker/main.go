package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database"
	"github.com/punctoo/punctoo/internal/metrics"
	"github.com/punctoo/punctoo/internal/tasks"
	"github.com/punctoo/punctoo/pkg/config"
	"github.com/punctoo/punctoo/pkg/queue"
	"github.com/punctoo/punctoo/pkg/util"
)

// purgeCronSpec runs the session sweep hourly.
const purgeCronSpec = "0 * * * *"

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting punctoo worker")

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Create task handler
	collector := metrics.NewCollector()
	sessionStore := auth.NewSessionStore(db, cfg.Session.RenewalWindow())
	adminSessionStore := auth.NewAdminSessionStore(db, cfg.Session.RenewalWindow())
	handler := tasks.NewHandler(logger, sessionStore, adminSessionStore, collector)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Schedule the periodic session purge
	scheduler := queue.NewScheduler(&cfg.Redis)
	if _, err := scheduler.Register(purgeCronSpec, tasks.NewSessionPurgeTask()); err != nil {
		logger.Error("failed to register purge schedule", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
