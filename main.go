package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/config"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/db"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/handlers"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/internal/fdaapi"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/logger"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/router"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/services"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() {
		_ = logger.Close()
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database connection pool
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.Connect(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis client, TLS in production. A disabled cache leaves the client
	// nil and the health aggregator reports it as not configured.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisOptions := &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		if cfg.Redis.UseTLS || cfg.IsProduction() {
			redisOptions.TLSConfig = &tls.Config{
				ServerName: cfg.Redis.Address,
				MinVersion: tls.VersionTLS12,
			}
		}
		redisClient = redis.NewClient(redisOptions)
		defer func() {
			_ = redisClient.Close()
		}()
	}

	// openFDA client for regulatory lookups and the external-api probe.
	var fdaClient *fdaapi.Client
	if cfg.FDA.Enabled {
		fdaClient = fdaapi.NewClient(cfg.FDA.BaseURL, cfg.FDA.APIKey,
			fdaapi.WithTimeout(cfg.FDA.Timeout()))
	}

	// Health aggregator and HTTP surface
	healthService := services.NewHealthService(
		cfg.Health,
		pool,
		redisClient,
		fdaClient,
		cfg.Server.Version,
		services.WithMetrics(prometheus.DefaultRegisterer),
	)

	r := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		HealthHandler: handlers.NewHealthHandler(healthService),
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until shutdown signal, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
}
