package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hazard-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazard-engine/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-engine/internal/config"
	"github.com/couchcryptid/hazard-engine/internal/hazard"
	"github.com/couchcryptid/hazard-engine/internal/observability"
	"github.com/couchcryptid/hazard-engine/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := hazard.LoadRegistry(ctx, cfg.Hazards, hazard.DirSource{Dir: cfg.ModelDir},
		predictorOptions(cfg, logger, metrics)...)
	if err != nil {
		logger.Error("failed to load predictors", "error", err, "model_dir", cfg.ModelDir)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(hazard.NewAssessor(registry, logger), logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, registry, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

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

func predictorOptions(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) []hazard.Option {
	opts := []hazard.Option{
		hazard.WithLogger(logger),
		hazard.WithObserver(metrics),
		hazard.WithBlendWeights(hazard.BlendWeights{
			Primary:   cfg.EnsemblePrimaryWeight,
			Secondary: 1 - cfg.EnsemblePrimaryWeight,
		}),
	}
	if cfg.ForceFallback {
		opts = append(opts, hazard.WithForcedFallback())
	}
	for h, w := range cfg.RuleWeights {
		if len(w) > 0 {
			opts = append(opts, hazard.WithRuleWeights(h, w))
		}
	}
	for h, th := range cfg.RuleThresholds {
		if len(th) > 0 {
			opts = append(opts, hazard.WithRuleThresholds(h, th))
		}
	}
	return opts
}
