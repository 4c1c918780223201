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

	"golang.org/x/time/rate"

	"github.com/Tekknobot/geopol-dashboard/internal/adapter/gdelt"
	"github.com/Tekknobot/geopol-dashboard/internal/adapter/geocode"
	httpadapter "github.com/Tekknobot/geopol-dashboard/internal/adapter/http"
	kafkaadapter "github.com/Tekknobot/geopol-dashboard/internal/adapter/kafka"
	"github.com/Tekknobot/geopol-dashboard/internal/adapter/rss"
	"github.com/Tekknobot/geopol-dashboard/internal/classify"
	"github.com/Tekknobot/geopol-dashboard/internal/config"
	"github.com/Tekknobot/geopol-dashboard/internal/domain"
	"github.com/Tekknobot/geopol-dashboard/internal/extract"
	"github.com/Tekknobot/geopol-dashboard/internal/observability"
	"github.com/Tekknobot/geopol-dashboard/internal/pipeline"
)

// classifierOptions converts the config's integer thresholds into the
// classifier's float score domain.
func classifierOptions(cfg *config.Config) classify.Options {
	return classify.Options{
		MinScore:  float64(cfg.MinCategoryScore),
		TieMargin: float64(cfg.TieMargin),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	feedClient := gdelt.NewClient(gdelt.Config{
		BaseURL:   cfg.FeedBaseURL,
		Timespan:  cfg.FeedTimespan,
		MaxPoints: cfg.FeedMaxPoints,
		Timeout:   cfg.FeedTimeout,
		RateLimit: rate.Limit(cfg.FeedRateLimit),
	}, metrics, logger)

	classifier := classify.New(classifierOptions(cfg))
	picker := extract.NewPicker(cfg.LinkScoreMin)
	transformer := pipeline.NewTransformer(classifier, picker, cfg.OtherLabelMin, logger)

	// Reverse geocoding, feature-flagged via GEOCODE_ENABLED.
	var resolver pipeline.CountryResolver
	if cfg.GeocodeEnabled {
		client := geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeUserAgent, cfg.GeocodeTimeout, logger)
		resolver = geocode.NewCachedResolver(client, cfg.GeocodeCacheSize)
		logger.Info("reverse geocoding enabled", "cache_size", cfg.GeocodeCacheSize)
	} else {
		logger.Info("reverse geocoding disabled")
	}

	orchestrator := pipeline.New(feedClient, transformer, logger, metrics, pipeline.Settings{
		Queries:   cfg.Queries,
		BatchSize: cfg.BatchSize,
		BatchTick: cfg.BatchTick,
		Resolver:  resolver,
	})

	// Kafka sink, feature-flagged via KAFKA_ENABLED.
	var sink *kafkaadapter.Writer
	var onPoints func([]domain.SocioPoint)
	if cfg.KafkaEnabled {
		sink = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		onPoints = func(batch []domain.SocioPoint) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sink.PublishBatch(ctx, batch); err != nil {
				logger.Error("kafka publish failed", "batch_size", len(batch), "error", err)
			}
		}
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic)
	}

	var sitrep *rss.Source
	if cfg.SitrepFeedURL != "" {
		sitrep = rss.NewSource(cfg.SitrepFeedURL, logger)
		logger.Info("situation-report feed enabled", "url", cfg.SitrepFeedURL)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, orchestrator, orchestrator, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Refresh loop: one orchestrator run immediately, then on the interval.
	go func() {
		refresh := func() {
			if sitrep != nil {
				items, err := sitrep.Fetch(ctx)
				if err != nil {
					logger.Warn("situation feed fetch failed", "error", err)
				} else {
					orchestrator.AddHeadlines(items)
				}
			}
			if err := orchestrator.Run(ctx, onPoints, nil); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Error("refresh run failed", "error", err)
			}
		}

		refresh()
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
