// Package rss pulls situation-report feeds (ReliefWeb-style RSS/Atom) and
// maps their entries into headline items for the carousel.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
)

// CategoryUpdate tags situation-report entries; the ranker scores it with
// the generic fallback weight.
const CategoryUpdate = domain.Category("Update")

// Source fetches and parses one situation-report feed.
type Source struct {
	parser  *gofeed.Parser
	feedURL string
	logger  *slog.Logger
}

// NewSource creates a situation-report source for the given feed URL.
func NewSource(feedURL string, logger *slog.Logger) *Source {
	return &Source{
		parser:  gofeed.NewParser(),
		feedURL: feedURL,
		logger:  logger,
	}
}

// Fetch parses the feed and returns its entries as headline items. Entries
// without a link are skipped; the feed's item order is preserved.
func (s *Source) Fetch(ctx context.Context) ([]domain.HeadlineItem, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse situation feed: %w", err)
	}

	items := make([]domain.HeadlineItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry.Link == "" || entry.Title == "" {
			continue
		}
		item := domain.HeadlineItem{
			ID:       entry.Link,
			Headline: strings.TrimSpace(entry.Title),
			URL:      entry.Link,
			Source:   hostOf(entry.Link),
			Category: CategoryUpdate,
		}
		if entry.PublishedParsed != nil {
			item.Created = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Created = *entry.UpdatedParsed
		}
		items = append(items, item)
	}

	s.logger.Debug("situation feed parsed", "url", s.feedURL, "items", len(items))
	return items, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
