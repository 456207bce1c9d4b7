package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/api"
	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/lock"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository/postgres"
	"github.com/chiefcousin/toybox/internal/service"
	"github.com/chiefcousin/toybox/internal/zoho"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = level
	}
	return zcfg.Build()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting ToyBox API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	// Full-sync lock: Redis when several instances share the database
	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb, "toybox:lock:")
		logger.Info("Using Redis sync lock", zap.String("addr", cfg.Redis.Addr))
	}

	if !cfg.Zoho.Configured() {
		logger.Warn("Zoho Inventory is not configured (ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET, ZOHO_ORG_ID); sync and order push stay disabled")
	}

	m := metrics.New()
	tokens := zoho.NewTokenManager(cfg.Zoho, repos.Settings, logger)
	client := zoho.NewClient(cfg.Zoho, tokens, logger)

	syncSvc := service.NewCatalogSyncService(client, tokens, repos, locker, m, cfg.Zoho.CompareAtLabel, logger)
	pusher := service.NewOrderPushService(client, tokens, repos, m, logger)
	services := api.Services{
		Catalog:   service.NewCatalogService(repos, logger),
		Sync:      syncSvc,
		Orders:    service.NewOrderService(repos, pusher, cfg.Store, logger),
		Customers: service.NewCustomerService(repos.Customer, cfg.Store.OTPTTL, cfg.Auth.JWTSecret, logger),
		Staff:     service.NewStaffService(repos.Staff, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger),
	}

	// Initialize router
	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Repos:    repos,
		Services: services,
		Zoho:     tokens,
		Metrics:  m,
		Logger:   logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// full syncs run inside POST /api/zoho/sync
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	if cfg.Zoho.SyncInterval > 0 {
		go syncSvc.RunSyncLoop(syncCtx, cfg.Zoho.SyncInterval)
		logger.Info("Zoho catalog sync job started", zap.Duration("interval", cfg.Zoho.SyncInterval))
	}

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSync()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
