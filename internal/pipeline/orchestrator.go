package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
	"github.com/Tekknobot/geopol-dashboard/internal/observability"
	"github.com/Tekknobot/geopol-dashboard/internal/rank"
)

// ErrFeedUnavailable is the single systemic error the orchestrator surfaces:
// all queries settled and nothing usable came back.
var ErrFeedUnavailable = errors.New("event feed unreachable or rate-limited")

// FeatureFetcher issues one query against the event feed.
type FeatureFetcher interface {
	FetchFeatures(ctx context.Context, query string) ([]domain.RawFeature, error)
}

// CountryResolver turns coordinates into a country name for headline items.
// Optional; a nil resolver leaves CountryName empty.
type CountryResolver interface {
	CountryName(ctx context.Context, lat, lon float64) (string, error)
}

// Settings holds the orchestrator's tunables.
type Settings struct {
	Queries   []string      // overlapping broad-to-narrow feed queries
	BatchSize int           // points per emitted batch
	BatchTick time.Duration // minimum spacing between batch emissions
	Clock     clockwork.Clock
	Resolver  CountryResolver
}

// Orchestrator runs the configured feed queries concurrently, deduplicates
// candidates across them, and streams accepted points to subscribers in
// fixed-size, tick-paced batches.
//
// The dedup set lives as long as the Orchestrator: calling Run again (for
// example on a refresh interval) only ever emits events not seen before.
type Orchestrator struct {
	fetcher     FeatureFetcher
	transformer *Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	settings    Settings

	mu     sync.Mutex
	seen   map[string]struct{}
	points []domain.SocioPoint
	news   []domain.HeadlineItem

	ready atomic.Bool
}

// New creates an Orchestrator with an empty dedup set.
func New(fetcher FeatureFetcher, transformer *Transformer, logger *slog.Logger, metrics *observability.Metrics, settings Settings) *Orchestrator {
	if settings.Clock == nil {
		settings.Clock = clockwork.NewRealClock()
	}
	if settings.BatchSize <= 0 {
		settings.BatchSize = 80
	}
	if settings.BatchTick <= 0 {
		settings.BatchTick = 50 * time.Millisecond
	}
	return &Orchestrator{
		fetcher:     fetcher,
		transformer: transformer,
		logger:      logger,
		metrics:     metrics,
		settings:    settings,
		seen:        make(map[string]struct{}),
	}
}

// CheckReadiness reports nil once at least one batch has been emitted.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("no event batch emitted yet")
	}
	return nil
}

// Run issues every configured query concurrently and pumps accepted points
// to the callbacks until all queries settle or ctx is cancelled. Individual
// query failures are logged and swallowed; Run returns ErrFeedUnavailable
// only when the whole run produced nothing usable. Cancelling ctx stops
// in-flight fetches and further batch emission; batches already delivered
// stay delivered.
func (o *Orchestrator) Run(ctx context.Context, onPoints func([]domain.SocioPoint), onNews func([]domain.HeadlineItem)) error {
	o.metrics.RunActive.Set(1)
	defer o.metrics.RunActive.Set(0)

	accepted := make(chan domain.SocioPoint, 4*o.settings.BatchSize)

	var featuresTotal, acceptedTotal atomic.Int64
	var wg sync.WaitGroup
	for _, query := range o.settings.Queries {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			o.runQuery(ctx, q, accepted, &featuresTotal, &acceptedTotal)
		}(query)
	}
	go func() {
		wg.Wait()
		close(accepted)
	}()

	o.pump(ctx, accepted, onPoints, onNews)

	if err := ctx.Err(); err != nil {
		return err
	}
	if featuresTotal.Load() == 0 || acceptedTotal.Load() == 0 {
		return ErrFeedUnavailable
	}
	return nil
}

// runQuery fetches and maps one query's features. Failures are isolated:
// they never cancel sibling queries.
func (o *Orchestrator) runQuery(ctx context.Context, query string, accepted chan<- domain.SocioPoint, featuresTotal, acceptedTotal *atomic.Int64) {
	features, err := o.fetcher.FetchFeatures(ctx, query)
	if err != nil {
		o.logger.Warn("feed query failed", "query", query, "error", err)
		o.metrics.QueryFailures.Inc()
		return
	}

	featuresTotal.Add(int64(len(features)))
	o.metrics.FeaturesFetched.Add(float64(len(features)))

	for _, f := range features {
		point, ok := o.transformer.Transform(f)
		if !ok {
			o.metrics.PointsRejected.Inc()
			continue
		}

		// Claim the key before emission so a concurrent sibling query
		// cannot re-add the same event while this one is in flight.
		if !o.claim(point.DedupKey()) {
			o.metrics.PointsDuplicate.Inc()
			continue
		}

		acceptedTotal.Add(1)
		o.metrics.PointsAccepted.Inc()
		o.metrics.PointsByCategory.WithLabelValues(string(point.Category)).Inc()

		select {
		case accepted <- point:
		case <-ctx.Done():
			return
		}
	}
}

// claim inserts the dedup key, returning false if it was already present.
func (o *Orchestrator) claim(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, dup := o.seen[key]; dup {
		return false
	}
	o.seen[key] = struct{}{}
	return true
}

// pump drains accepted points into fixed-size batches, emitting at most one
// batch per tick so a burst of hundreds of points cannot monopolize the
// subscriber.
func (o *Orchestrator) pump(ctx context.Context, accepted <-chan domain.SocioPoint, onPoints func([]domain.SocioPoint), onNews func([]domain.HeadlineItem)) {
	ticker := o.settings.Clock.NewTicker(o.settings.BatchTick)
	defer ticker.Stop()

	for {
		batch, open := o.fillBatch(ctx, accepted)
		if ctx.Err() != nil {
			return
		}
		if len(batch) > 0 {
			o.emit(ctx, batch, onPoints, onNews)
		}
		if !open {
			return
		}

		select {
		case <-ticker.Chan():
		case <-ctx.Done():
			return
		}
	}
}

// fillBatch blocks for the first point, then takes whatever else is
// immediately available up to the batch size.
func (o *Orchestrator) fillBatch(ctx context.Context, accepted <-chan domain.SocioPoint) ([]domain.SocioPoint, bool) {
	batch := make([]domain.SocioPoint, 0, o.settings.BatchSize)

	select {
	case point, open := <-accepted:
		if !open {
			return batch, false
		}
		batch = append(batch, point)
	case <-ctx.Done():
		return batch, false
	}

	for len(batch) < o.settings.BatchSize {
		select {
		case point, open := <-accepted:
			if !open {
				return batch, false
			}
			batch = append(batch, point)
		default:
			return batch, true
		}
	}
	return batch, true
}

// emit records the batch in the snapshot, marks readiness, and fires the
// subscriber callbacks.
func (o *Orchestrator) emit(ctx context.Context, batch []domain.SocioPoint, onPoints func([]domain.SocioPoint), onNews func([]domain.HeadlineItem)) {
	news := o.newsFromPoints(ctx, batch)

	o.mu.Lock()
	o.points = append(o.points, batch...)
	o.news = append(o.news, news...)
	o.mu.Unlock()

	o.ready.Store(true)
	o.metrics.BatchesEmitted.Inc()
	o.metrics.BatchSize.Observe(float64(len(batch)))
	o.logger.Debug("batch emitted", "points", len(batch), "headlines", len(news))

	if onPoints != nil {
		onPoints(batch)
	}
	if onNews != nil && len(news) > 0 {
		onNews(news)
	}
}

// newsFromPoints derives headline items from the points in a batch that
// carry a trustworthy link. Country resolution is best effort.
func (o *Orchestrator) newsFromPoints(ctx context.Context, batch []domain.SocioPoint) []domain.HeadlineItem {
	now := o.settings.Clock.Now()

	var items []domain.HeadlineItem
	for _, p := range batch {
		if !p.HasLink() || p.Headline == "" {
			continue
		}
		lat, lon := p.Lat, p.Lon
		item := domain.HeadlineItem{
			ID:       p.URL,
			Headline: p.Headline,
			URL:      p.URL,
			Source:   p.Source,
			Category: p.Category,
			Lat:      &lat,
			Lon:      &lon,
			Created:  now,
		}
		if o.settings.Resolver != nil {
			resolveCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			name, err := o.settings.Resolver.CountryName(resolveCtx, p.Lat, p.Lon)
			cancel()
			if err != nil {
				o.logger.Debug("country resolution failed", "lat", p.Lat, "lon", p.Lon, "error", err)
			} else {
				item.CountryName = name
			}
		}
		items = append(items, item)
	}
	return items
}

// PointsSnapshot returns a copy of every point accepted so far.
func (o *Orchestrator) PointsSnapshot() []domain.SocioPoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.points)
}

// HeadlinesSnapshot returns every derived headline item, relevance-ranked.
func (o *Orchestrator) HeadlinesSnapshot() []domain.HeadlineItem {
	o.mu.Lock()
	items := slices.Clone(o.news)
	o.mu.Unlock()
	return rank.Rank(items, o.settings.Clock.Now())
}

// AddHeadlines merges externally sourced headline items (situation reports)
// into the snapshot, skipping IDs already present.
func (o *Orchestrator) AddHeadlines(items []domain.HeadlineItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	existing := make(map[string]struct{}, len(o.news))
	for _, it := range o.news {
		existing[it.ID] = struct{}{}
	}
	for _, it := range items {
		if _, dup := existing[it.ID]; dup {
			continue
		}
		o.news = append(o.news, it)
		existing[it.ID] = struct{}{}
	}
}
