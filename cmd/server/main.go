package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BAHUBALISID/smj/internal/app"
	"github.com/BAHUBALISID/smj/internal/config"
	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/logger"
	"github.com/BAHUBALISID/smj/internal/middleware"
	"github.com/BAHUBALISID/smj/internal/router"
	"github.com/BAHUBALISID/smj/internal/worker"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr}); err != nil {
		log.Fatal().Err(err).Msg("invalid LOG_LEVEL")
	}

	dbCfg := infra.DefaultDatabaseConfig()
	dbCfg.LogSQL = cfg.Env == "development" && cfg.LogLevel == "debug"
	db, err := infra.NewDatabase(cfg.DatabaseURL, dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svcs, err := app.NewServices(cfg, db, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire services")
	}

	// Receipt store: local disk or MinIO
	breakers := map[string]*infra.CircuitBreaker{"rate_cache": svcs.CacheCB}
	var store infra.ReceiptStore = infra.LocalStore{}
	if cfg.ReceiptStore == "minio" {
		storeCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "minio", Clock: svcs.Clock})
		ms, err := infra.NewMinioStore(ctx, infra.MinioConfig{
			URL:       cfg.MinioURL,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Secure:    cfg.MinioSecure,
			Bucket:    cfg.MinioBucket,
			Location:  cfg.MinioLocation,
		}, storeCB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to minio")
		}
		store = ms
		breakers["receipt_store"] = storeCB
	}

	receipts := worker.NewReceiptWorker(svcs.Repos.Bills, svcs.Repos.Exchanges, store, infra.ReceiptOptions{
		StoragePath:   cfg.PDFStoragePath,
		BusinessName:  cfg.BusinessName,
		VerifyBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/") + "/v1/public",
	}, worker.ReceiptWorkerConfig{})
	pool := worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Processor{
		worker.JobReceipt: receipts,
	})

	limiter := middleware.NewRateLimiter(600, time.Minute)
	limiter.StartPurge(ctx, 5*time.Minute)

	r := router.New(router.Deps{
		Env:         cfg.Env,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.AllowedOrigins(),
		DB:          db,
		Redis:       rdb,
		Breakers:    breakers,
		Limiter:     limiter,
		Rates:       svcs.Rates,
		Bills:       svcs.Bills,
		Payments:    svcs.Payments,
		Exchanges:   svcs.Exchanges,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("smj billing backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	cancel()
	pool.Wait()
	log.Info().Msg("server exited")
}
