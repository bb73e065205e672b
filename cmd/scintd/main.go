// Command scintd runs the streaming flux service: it consumes raw BLS450
// records from Kafka, derives sensible heat fluxes, and publishes the
// estimates to the sink topic, optionally archiving them to PostgreSQL.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gampnico/scintillometry-tools/internal/adapter/geosphere"
	httpadapter "github.com/gampnico/scintillometry-tools/internal/adapter/http"
	kafkaadapter "github.com/gampnico/scintillometry-tools/internal/adapter/kafka"
	"github.com/gampnico/scintillometry-tools/internal/adapter/postgres"
	"github.com/gampnico/scintillometry-tools/internal/config"
	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/observability"
	"github.com/gampnico/scintillometry-tools/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	stations, err := config.LoadStations(cfg.StationsFile)
	if err != nil {
		logger.Error("failed to load station registry", "error", err)
		os.Exit(1)
	}
	logger.Info("station registry loaded", "stations", len(stations))

	// Weather enrichment is feature-flagged via GEOSPHERE_ENABLED.
	var weather domain.WeatherProvider
	if cfg.GeoSphereEnabled {
		client := geosphere.NewClient(cfg.GeoSphereURL, cfg.GeoSphereTimeout, metrics, logger)
		weather = geosphere.NewCachedProvider(client, cfg.GeoSphereCacheSize, cfg.GeoSphereMaxAge, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("geosphere weather enabled",
			"cache_size", cfg.GeoSphereCacheSize,
			"max_age", cfg.GeoSphereMaxAge,
			"timeout", cfg.GeoSphereTimeout,
		)
	} else {
		logger.Info("geosphere weather disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	loaders := []pipeline.BatchLoader{writer}
	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		loaders = append(loaders, store)
		logger.Info("postgres archive enabled")
	}

	transformer := pipeline.NewTransformer(stations, weather, cfg.FallbackTemperature, logger)
	p := pipeline.New(reader, transformer, pipeline.NewMultiLoader(loaders...), logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, stations, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
