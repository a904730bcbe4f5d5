package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/udhago/udhago-backend/internal/analytics"
	"github.com/udhago/udhago-backend/internal/auth"
	"github.com/udhago/udhago-backend/internal/bookings"
	"github.com/udhago/udhago-backend/internal/rides"
	"github.com/udhago/udhago-backend/pkg/clock"
	"github.com/udhago/udhago-backend/pkg/config"
	"github.com/udhago/udhago-backend/pkg/database"
	"github.com/udhago/udhago-backend/pkg/logger"
	"github.com/udhago/udhago-backend/pkg/middleware"
	"github.com/udhago/udhago-backend/pkg/ratelimit"
	"github.com/udhago/udhago-backend/pkg/validation"
)

const (
	serviceName = "udhago-api"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting server",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(&cfg.Database); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	var (
		redisClient *redis.Client
		limiter     *ratelimit.Limiter
	)
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit)
		logger.Info("Rate limiting enabled",
			zap.Int("default_limit", cfg.RateLimit.DefaultLimit),
			zap.Int("default_burst", cfg.RateLimit.DefaultBurst),
			zap.Duration("window", cfg.RateLimit.Window()),
		)
	}

	validation.RegisterCustomValidators()

	clk := clock.Real{}

	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.JWT, clk)
	authHandler := auth.NewHandler(authService)

	analyticsRepo := analytics.NewRepository(db)
	analyticsService := analytics.NewService(analyticsRepo, clk)
	analyticsHandler := analytics.NewHandler(analyticsService)

	ridesRepo := rides.NewRepository(db)
	ridesService := rides.NewService(ridesRepo, analyticsService, clk)
	ridesHandler := rides.NewHandler(ridesService)

	bookingsRepo := bookings.NewRepository(db)
	bookingsService := bookings.NewService(bookingsRepo, ridesRepo, clk)
	bookingsHandler := bookings.NewHandler(bookingsService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.RateLimit(limiter))

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler.RegisterRoutes(router, cfg.JWT.Secret)
	ridesHandler.RegisterRoutes(router, cfg.JWT.Secret)
	bookingsHandler.RegisterRoutes(router, cfg.JWT.Secret)
	analyticsHandler.RegisterRoutes(router, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
