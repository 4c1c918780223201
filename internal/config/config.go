// Package config loads service settings from environment variables, with
// an optional YAML file for the feed query set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultQueries are the overlapping boolean-OR feed queries run each
// refresh, broad to narrow. Overlap is intentional; the orchestrator
// deduplicates across them.
var DefaultQueries = []string{
	"(protest OR riot OR unrest OR clashes OR strike)",
	"(sanctions OR embargo OR \"export controls\" OR tariffs)",
	"(pipeline OR refinery OR blackout OR \"power grid\" OR blockade)",
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Event feed client.
	FeedBaseURL   string
	FeedTimespan  string
	FeedMaxPoints int
	FeedTimeout   time.Duration
	FeedRateLimit float64 // requests per second

	// Pipeline tunables.
	Queries          []string
	BatchSize        int
	BatchTick        time.Duration
	RefreshInterval  time.Duration
	MinCategoryScore int
	TieMargin        int
	LinkScoreMin     float64
	OtherLabelMin    int

	// Situation-report feed, optional.
	SitrepFeedURL string

	// Kafka sink, optional.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Reverse geocoding, optional.
	GeocodeEnabled   bool
	GeocodeBaseURL   string
	GeocodeUserAgent string
	GeocodeTimeout   time.Duration
	GeocodeCacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	feedTimeout, err := parseDuration("FEED_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	batchTick, err := parseDuration("BATCH_TICK", "50ms")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	maxPoints, err := parseInt("FEED_MAXPOINTS", 250)
	if err != nil {
		return nil, err
	}
	batchSize, err := parseInt("BATCH_SIZE", 80)
	if err != nil {
		return nil, err
	}
	minScore, err := parseInt("MIN_CATEGORY_SCORE", 6)
	if err != nil {
		return nil, err
	}
	tieMargin, err := parseInt("TIE_MARGIN", 2)
	if err != nil {
		return nil, err
	}
	otherLabelMin, err := parseInt("OTHER_LABEL_MIN", 6)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseFloat("FEED_RATE_LIMIT", 1.0)
	if err != nil {
		return nil, err
	}
	linkScoreMin, err := parseFloat("LINK_SCORE_MIN", 0)
	if err != nil {
		return nil, err
	}

	queries, err := loadQueries(os.Getenv("QUERIES_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedBaseURL:   envOrDefault("FEED_BASE_URL", "https://api.gdeltproject.org/api/v2"),
		FeedTimespan:  envOrDefault("FEED_TIMESPAN", "24h"),
		FeedMaxPoints: maxPoints,
		FeedTimeout:   feedTimeout,
		FeedRateLimit: rateLimit,

		Queries:          queries,
		BatchSize:        batchSize,
		BatchTick:        batchTick,
		RefreshInterval:  refreshInterval,
		MinCategoryScore: minScore,
		TieMargin:        tieMargin,
		LinkScoreMin:     linkScoreMin,
		OtherLabelMin:    otherLabelMin,

		SitrepFeedURL: os.Getenv("SITREP_FEED_URL"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "geopol-points"),

		GeocodeEnabled:   os.Getenv("GEOCODE_ENABLED") == "true",
		GeocodeBaseURL:   envOrDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent: envOrDefault("GEOCODE_USER_AGENT", "geopol-dashboard/1.0"),
		GeocodeTimeout:   geocodeTimeout,
		GeocodeCacheSize: cacheSize,
	}

	if len(cfg.Queries) == 0 {
		return nil, errors.New("at least one feed query is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if cfg.FeedMaxPoints <= 0 {
		return nil, errors.New("FEED_MAXPOINTS must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// queriesFile is the YAML shape of a QUERIES_FILE override.
type queriesFile struct {
	Queries []string `yaml:"queries"`
}

func loadQueries(path string) ([]string, error) {
	if path == "" {
		return DefaultQueries, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}
	var qf queriesFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parse queries file: %w", err)
	}
	queries := make([]string, 0, len(qf.Queries))
	for _, q := range qf.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
