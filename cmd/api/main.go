package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/manovie/backend/internal/analysis"
	"github.com/manovie/backend/internal/analytics"
	"github.com/manovie/backend/internal/api/handlers"
	"github.com/manovie/backend/internal/api/response"
	cacheredis "github.com/manovie/backend/internal/cache/redis"
	"github.com/manovie/backend/internal/metrics"
	"github.com/manovie/backend/internal/middleware/auth"
	"github.com/manovie/backend/internal/middleware/ratelimit"
	"github.com/manovie/backend/internal/middleware/security"
	"github.com/manovie/backend/internal/middleware/validation"
	"github.com/manovie/backend/internal/scoring"
	"github.com/manovie/backend/internal/storage/sqlite"
	"github.com/manovie/backend/pkg/config"
	appLogger "github.com/manovie/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ManoVie API Server")

	if cfg.Auth.JWTSecret == "" {
		appLogger.Fatal("auth.jwtSecret must be configured")
	}

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	err = store.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache *cacheredis.Client
	if cfg.Redis.Enabled {
		cache, err = cacheredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	cacheTTL := time.Duration(cfg.Redis.TTLSec) * time.Second

	toxicityClient := scoring.NewToxicityClient(
		cfg.Perspective.APIKey,
		cfg.Perspective.BaseURL,
		time.Duration(cfg.Perspective.TimeoutSec)*time.Second,
	)

	service := analysis.NewService(store, toxicityClient, cache, cacheTTL)
	engine := analytics.NewEngine(store, cache, cacheTTL)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: response.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	sentimentHandler := handlers.NewSentimentHandler(service, engine)
	loginLogHandler := handlers.NewLoginLogHandler(store)
	healthHandler := handlers.NewHealthHandler(store)

	api := app.Group("/api/v1")

	api.Get("/healthcheck", healthHandler.Healthcheck)
	api.Get("/metrics", metrics.MetricsHandler())

	authMiddleware := auth.Middleware(auth.Config{JWTSecret: cfg.Auth.JWTSecret})

	sentiments := api.Group("/users/sentiments", authMiddleware)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Logger:               appLogger.GetLogger(),
		})
		defer limiter.Stop()
		sentiments.Use(limiter.Middleware())
	}
	sentiments.Use(validation.Middleware(validation.Config{MaxTextLength: cfg.Server.BodyLimit}))

	sentiments.Post("/analyze", sentimentHandler.Analyze)
	sentiments.Get("/trends", sentimentHandler.Trends)
	sentiments.Get("/summary", sentimentHandler.Summary)
	sentiments.Get("/total", sentimentHandler.Total)
	sentiments.Get("/history", sentimentHandler.History)
	sentiments.Get("/weekly-stability", sentimentHandler.WeeklyStability)

	loginLogs := api.Group("/login-logs", authMiddleware)
	loginLogs.Post("/", loginLogHandler.RecordLogin)
	loginLogs.Get("/", loginLogHandler.GetLoginLogs)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
