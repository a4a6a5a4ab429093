package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/currencies/internal/currency"
	"github.com/richxcame/currencies/internal/scheduler"
	"github.com/richxcame/currencies/pkg/common"
	"github.com/richxcame/currencies/pkg/config"
	"github.com/richxcame/currencies/pkg/database"
	"github.com/richxcame/currencies/pkg/health"
	"github.com/richxcame/currencies/pkg/logger"
	"github.com/richxcame/currencies/pkg/middleware"
	"github.com/richxcame/currencies/pkg/redis"
	"go.uber.org/zap"
)

const (
	serviceName = "currencyd"
	version     = "1.0.0"

	// headroom for the store writes that follow a quote fetch
	writeTimeoutSlack = 10 * time.Second
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment, cfg.Server.LogLevel, serviceName); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := currency.ValidateStore(cfg.Currency.Store); err != nil {
		logger.Fatal("Invalid currency store",
			zap.String("store", cfg.Currency.Store),
			zap.Strings("supported", currency.SupportedStores()),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database/sql handle for migrations and health checks
	sqlDB, err := database.OpenSQL(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Database migrations applied")
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)

	deps := currency.StoreDeps{DB: pool, CacheEnabled: cfg.Currency.Cache}

	var redisClient *redis.Client
	if cfg.Currency.Cache {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		deps.Cache = redisClient
		logger.Info("Connected to Redis")
	}

	store, err := currency.NewStore(cfg.Currency.Store, deps)
	if err != nil {
		logger.Fatal("Failed to create currency store",
			zap.String("store", cfg.Currency.Store),
			zap.Strings("supported", currency.SupportedStores()),
			zap.Error(err),
		)
	}

	registry, err := currency.NewRegistry(ctx, store, currency.Options{
		DefaultCode:  cfg.Currency.Default,
		CacheEnabled: cfg.Currency.Cache,
	})
	if err != nil {
		logger.Fatal("Failed to load currencies", zap.Error(err))
	}

	parser, err := currency.NewQuoteParser(cfg.Quote.Format)
	if err != nil {
		logger.Fatal("Invalid quote format", zap.Error(err))
	}

	updater := currency.NewRateUpdater(registry, store, currency.NewHTTPQuoteFetcher(cfg.Quote), parser)
	autoUpdate := currency.AutoUpdateOptions{
		Enabled: cfg.Currency.AutoUpdate,
		Exclude: cfg.Currency.AutoUpdateExclude,
	}
	handler := currency.NewHandler(registry, updater, autoUpdate)

	worker := scheduler.NewWorker(updater, autoUpdate,
		time.Duration(cfg.Currency.AutoUpdateInterval)*time.Minute, logger.Get())
	go worker.Start(ctx)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger("/livez", "/healthz", "/metrics"))
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders(cfg.Server.Environment == "production"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	checks := map[string]common.DependencyCheck{
		"database": {Check: health.DatabaseChecker(sqlDB), Critical: true},
	}
	if redisClient != nil {
		checks["redis"] = common.DependencyCheck{Check: health.RedisChecker(redisClient.Client), Critical: true}
	}
	if cfg.Quote.HealthCheck {
		// refreshes are best effort, so a dead quote service only degrades
		checks["quote_service"] = common.DependencyCheck{Check: health.HTTPEndpointChecker(cfg.Quote.URL)}
	}

	router.GET("/livez", common.Liveness(serviceName, version))
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, version, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: writeTimeout(cfg),
	}

	go func() {
		logger.Info("Currency service starting",
			zap.String("port", cfg.Server.Port),
			zap.String("default_currency", registry.DefaultCode()),
			zap.Int("currencies", len(registry.GetAll())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down currency service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

// writeTimeout covers the slowest handler: the refresh routes wait on a full
// quote fetch, retries included.
func writeTimeout(cfg *config.Config) time.Duration {
	configured := time.Duration(cfg.Server.WriteTimeout) * time.Second
	refresh := currency.QuoteBudget(cfg.Quote) + writeTimeoutSlack
	if refresh > configured {
		return refresh
	}
	return configured
}
