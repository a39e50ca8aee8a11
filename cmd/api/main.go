package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/adapter/repo"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/http/handlers"
	httpapi "github.com/HeetPatel8126/SyntheticDataGen/internal/http"
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

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := infra.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	if err := infra.PingRedis(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	redisOpt, err := infra.QueueRedisOpt(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid redis url")
	}
	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	registry := generator.NewRegistry(cfg.GeneratorLocale)
	jobRepo := repo.NewJobRepository(pool)
	templateRepo := repo.NewTemplateRepository(pool)
	manager := jobs.NewManager(cfg, jobRepo, templateRepo, registry, store, queue, logger)

	app := handlers.NewApp(manager, templateRepo, registry, store, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
