package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/adapter/repo"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/infra"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/jobs"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	if err := infra.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to apply migrations")
	}

	redisOpt, err := infra.QueueRedisOpt(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: invalid redis url")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	registry := generator.NewRegistry(cfg.GeneratorLocale)
	jobRepo := repo.NewJobRepository(pool)
	templateRepo := repo.NewTemplateRepository(pool)

	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	manager := jobs.NewManager(cfg, jobRepo, templateRepo, registry, store, queue, logger)
	worker := jobs.NewWorker(manager, store, logger)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			jobs.QueueGeneration:  6,
			jobs.QueueMaintenance: 1,
		},
	})
	mux := asynq.NewServeMux()
	worker.Register(mux)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register("@every 24h", jobs.NewCleanupTask()); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to register cleanup schedule")
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error().Err(err).Msg("worker: scheduler stopped")
		}
	}()

	go func() {
		logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker: started")
		if err := srv.Run(mux); err != nil {
			logger.Fatal().Err(err).Msg("worker: server stopped with error")
		}
	}()

	<-ctx.Done()
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info().Msg("worker: stopped")
}
