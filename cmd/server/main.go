package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/cache"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/config"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/metrics"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/repository"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/rest"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/ws"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return err
	}
	logger.Info("connected to MongoDB", "database", cfg.Mongo.Database)

	db := mongoClient.Database(cfg.Mongo.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return err
	}
	logger.Info("connected to Redis", "addr", cfg.RedisAddr)

	wsHub := ws.NewHub()
	defer wsHub.Close()

	// Repositories and caches
	programRepo := repository.NewProgramRepo(db)
	transcriptRepo := repository.NewTranscriptRepo(db)

	draftCache := cache.NewDraftCache(rdb, cfg.Cache.DraftTTL)
	progressCache := cache.NewProgressCache(rdb, cfg.Cache.ProgressTTL)
	programLRU, err := cache.NewProgramLRU(cfg.Cache.ProgramCacheSize)
	if err != nil {
		return err
	}

	m := metrics.New()

	// Services
	authSvc := service.NewAuthService(cfg.Auth)
	programSvc := service.NewProgramService(programRepo, draftCache, progressCache, programLRU, m, logger)
	progressSvc := service.NewProgressService(programSvc, transcriptRepo, progressCache, m, logger)

	programSvc.SetBroadcaster(wsHub)

	if cfg.CatalogEnabled() {
		catalog, err := repository.NewCatalogRepo(ctx, cfg.Catalog.DSN)
		if err != nil {
			return err
		}
		defer catalog.Close()
		programSvc.SetCatalog(catalog)
		logger.Info("course catalog enabled")
	} else {
		logger.Warn("CATALOG_PG_DSN not set, catalog lookups disabled")
	}

	if cfg.ArchiveEnabled() {
		archive, err := repository.NewArchiveStore(repository.ArchiveConfig{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			return err
		}
		programSvc.SetArchive(archive)
		logger.Info("snapshot archive enabled", "bucket", cfg.Archive.Bucket)
	}

	container := &rest.Container{
		AuthService:     authSvc,
		ProgramService:  programSvc,
		ProgressService: progressSvc,
		Metrics:         m,
		WSHub:           wsHub,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           rest.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
