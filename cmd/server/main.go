package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/punctoo/punctoo/internal/api"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/codes"
	"github.com/punctoo/punctoo/internal/database"
	"github.com/punctoo/punctoo/internal/metrics"
	"github.com/punctoo/punctoo/pkg/config"
	"github.com/punctoo/punctoo/pkg/util"
	"github.com/redis/go-redis/v9"
)

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

	logger.Info("starting punctoo server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis. The API degrades without it (no purge enqueue, health
	// reports it down) but still serves requests.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Initialize services
	collector := metrics.NewCollector()
	sessionStore := auth.NewSessionStore(db, cfg.Session.RenewalWindow())
	adminSessionStore := auth.NewAdminSessionStore(db, cfg.Session.RenewalWindow())
	authService := auth.NewService(db, sessionStore, collector)
	adminService := auth.NewAdminService(db, adminSessionStore)
	allocator := codes.NewAllocator(collector)

	// Seed the bootstrap admin account from configuration
	if err := adminService.SeedBootstrapAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:              db,
		Redis:           redisClient,
		Logger:          logger,
		AuthService:     authService,
		AdminService:    adminService,
		Allocator:       allocator,
		Metrics:         collector,
		CookieName:      cfg.Session.CookieName,
		AdminCookieName: cfg.Session.AdminCookieName,
		SecureCookies:   cfg.Server.IsProduction(),
		RateLimitReqs:   cfg.RateLimit.Requests,
		RateLimitSecs:   cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
