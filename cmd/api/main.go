package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/leadform/internal/cache"
	"github.com/octobees/leadform/internal/config"
	"github.com/octobees/leadform/internal/database"
	"github.com/octobees/leadform/internal/handler"
	"github.com/octobees/leadform/internal/logger"
	middlewarepkg "github.com/octobees/leadform/internal/middleware"
	"github.com/octobees/leadform/internal/repository"
	"github.com/octobees/leadform/internal/router"
	"github.com/octobees/leadform/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, closeStore, err := openDocumentStore(ctx, cfg)
	if err != nil {
		lg.Fatal("failed to open document store", zap.String("store", cfg.DocumentStore), zap.Error(err))
	}
	defer closeStore()

	var recordCache service.RecordCache
	if cfg.Redis.Address != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			lg.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		recordCache = cache.NewRedisRecordCache(rdb, cfg.Redis.TTL)
	}

	webhook, err := handler.NewWebhookClient(ctx, nil, cfg.Webhook)
	if err != nil {
		lg.Fatal("failed to build webhook client", zap.Error(err))
	}

	lookupService := service.NewLookupService(store, recordCache, lg.Named("lookup"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(lg.Named("http")))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	router.Register(e, cfg, router.Handlers{
		Submit:  handler.NewSubmitHandler(webhook, lg.Named("submit")),
		Company: handler.NewCompanyHandler(lookupService, lg.Named("company")),
		Store:   store,
	})

	serverErr := make(chan error, 1)
	go func() {
		lg.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.DocumentStore),
			zap.Bool("cache", recordCache != nil),
		)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		lg.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openDocumentStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, func(), error) {
	switch cfg.DocumentStore {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPGXDocumentStore(pool, cfg.DocumentTable), pool.Close, nil
	case config.StoreElasticsearch:
		client, err := database.ConnectElasticsearch(ctx, cfg.Elasticsearch)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewElasticsearchDocumentStore(client, cfg.Elasticsearch.Index), func() {}, nil
	case config.StoreMemory:
		if cfg.MemorySeedFile == "" {
			return repository.NewMemoryDocumentStore(), func() {}, nil
		}
		f, err := os.Open(cfg.MemorySeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()
		store, err := repository.LoadMemoryDocuments(f)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported document store %q", cfg.DocumentStore)
	}
}
