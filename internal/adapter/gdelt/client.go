// Package gdelt fetches geocoded event features from the GDELT GEO 2.0 API.
package gdelt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
	"github.com/Tekknobot/geopol-dashboard/internal/observability"
)

// DefaultBaseURL is the public GDELT API root.
const DefaultBaseURL = "https://api.gdeltproject.org/api/v2"

// Client implements pipeline.FeatureFetcher against the geo/geo endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timespan   string
	maxPoints  int
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Config holds the feed client settings.
type Config struct {
	BaseURL   string
	Timespan  string // feed window, e.g. "24h"
	MaxPoints int
	Timeout   time.Duration
	RateLimit rate.Limit // requests per second against the public API
}

// NewClient creates a feed client. The rate limiter is shared across the
// concurrent orchestrator queries so the service stays polite to the
// public endpoint.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(base, "/"),
		timespan:   cfg.Timespan,
		maxPoints:  cfg.MaxPoints,
		limiter:    rate.NewLimiter(limit, 1),
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchFeatures runs one boolean-OR keyword query over the configured time
// window and returns the raw features. Rate-limit responses (429/503) fail
// the call; retrying is the caller's decision.
func (c *Client) FetchFeatures(ctx context.Context, query string) ([]domain.RawFeature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{
		"query":     {query},
		"format":    {"GeoJSON"},
		"timespan":  {c.timespan},
		"maxpoints": {strconv.Itoa(c.maxPoints)},
	}
	fullURL := c.baseURL + "/geo/geo?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.FeedRequestDuration.Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d: %s", resp.StatusCode, truncateBody(body))
	}

	fc, err := decodeFeatureCollection(body)
	if err != nil {
		return nil, err
	}

	features := make([]domain.RawFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		features = append(features, domain.RawFeature{
			Name:        f.Properties.Name,
			HTML:        f.Properties.HTML,
			Coordinates: f.Geometry.Coordinates,
		})
	}
	return features, nil
}

// decodeFeatureCollection parses the GeoJSON payload, recovering from the
// HTML-wrapped responses the endpoint sometimes emits by slicing from the
// first '{' to the last '}'.
func decodeFeatureCollection(body []byte) (*featureCollection, error) {
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err == nil {
		return &fc, nil
	}

	s := string(body)
	open := strings.IndexByte(s, '{')
	clos := strings.LastIndexByte(s, '}')
	if open < 0 || clos <= open {
		return nil, fmt.Errorf("unparsable feed payload: %s", truncateBody(body))
	}

	fc = featureCollection{}
	if err := json.Unmarshal([]byte(s[open:clos+1]), &fc); err != nil {
		return nil, fmt.Errorf("recover feed payload: %w", err)
	}
	return &fc, nil
}

func truncateBody(body []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

// GeoJSON response types. Coordinates stay untyped for tolerant parsing.

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Coordinates []any `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name string `json:"name"`
		HTML string `json:"html"`
	} `json:"properties"`
}
