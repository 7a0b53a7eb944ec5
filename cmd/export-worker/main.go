package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"school-portal-gateway/internal/backend"
	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/db"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/queue"
	"school-portal-gateway/internal/session"
	"school-portal-gateway/internal/storage"
	"school-portal-gateway/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting export worker")

	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := db.EnsureSchema(context.Background(), database); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare database schema")
	}
	repo := db.NewRepository(database)

	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	s3, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	client := backend.NewClient(cfg)
	// Exports only read sessions the gateway wrote, so this needs the shared store.
	sessions := session.NewManager(cfg, client, session.NewRedisStore(redisClient))

	exportWorker := worker.NewExportWorker(cfg, repo, s3, client, sessions, redisClient)
	daily := worker.NewDailyExport(cfg, worker.NewDispatcher(repo, queue.NewProducer(redisClient, cfg)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return exportWorker.Start(ctx) })
	g.Go(func() error { return daily.Start(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Export worker stopped with error")
	}

	log.Info().Msg("Shutting down export worker...")
	exportWorker.Stop()

	log.Info().Msg("Export worker exited")
}
