package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"rentals/internal/config"
	"rentals/internal/handler"
	"rentals/internal/logging"
	"rentals/internal/metrics"
	"rentals/internal/repository"
	"rentals/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("info", "json")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("rentals listing service")

	gin.SetMode(cfg.Server.GinMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	store, catalog, closeStore := openCatalog(cfg)
	defer closeStore()

	ctx := context.Background()
	backend, err := service.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation backend")
	}
	if cfg.GenerationEnabled() {
		log.Info().
			Str("backend", backend.Name()).
			Dur("timeout", cfg.Generation.Timeout).
			Int("max_retries", cfg.Generation.MaxRetries).
			Int("max_concurrency", cfg.Generation.MaxConcurrency).
			Msg("generation backend initialized")
	} else {
		log.Warn().
			Str("provider", cfg.Generation.Provider).
			Msg("generation is disabled, description enhancement will fail until an API key is set")
	}

	generator := service.NewGenerationClient(backend,
		service.WithMaxRetries(cfg.Generation.MaxRetries),
		service.WithInitialDelay(cfg.Generation.RetryDelay),
		service.WithBackoffFactor(cfg.Generation.BackoffFactor),
		service.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
		service.WithMetrics(recorder),
		service.WithLogger(logging.Component("generation")),
	)
	enhancer := service.NewDescriptionEnhancer(generator, cfg.Generation.Timeout,
		service.WithEnhancerMetrics(recorder),
		service.WithEnhancerLogger(logging.Component("enhancer")),
	)

	router := handler.NewRouter(handler.RouterConfig{
		Listings:       handler.NewListingHandler(service.NewListingService(store), 20, 100, logging.Component("listings")),
		Enhance:        handler.NewEnhanceHandler(enhancer),
		Gatherer:       reg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Backend:        backend.Name(),
		Catalog:        catalog,
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		Logger:         logging.Component("http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Generation.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// openCatalog picks the Postgres catalog when configured and the built-in
// seed otherwise.
func openCatalog(cfg *config.Config) (service.ListingStore, string, func()) {
	if !cfg.UsePostgres() {
		log.Info().Msg("using built-in property catalog")
		return repository.NewSeedRepository(), "memory", func() {}
	}

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("connected to PostgreSQL catalog")

	return repo, "postgres", func() {
		if err := repo.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
