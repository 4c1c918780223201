// Package rank orders headline items by relevance: source reputation,
// category weight, textual urgency, recency, and geolocation presence.
package rank

import (
	"regexp"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
	"github.com/Tekknobot/geopol-dashboard/internal/extract"
)

// defaultCategoryWeight applies to categories without an explicit entry,
// including the generic "Update" tag used by situation-report feeds.
const defaultCategoryWeight = 6

var categoryWeights = map[domain.Category]float64{
	domain.CategorySecurityConflict: 18,
	domain.CategorySanctions:        16,
	domain.CategoryEnergy:           14,
	domain.CategorySupplyChain:      14,
	domain.CategoryCyber:            12,
	domain.CategoryProtestUnrest:    12,
	domain.CategoryMacroFinance:     10,
	domain.CategoryDiplomacy:        10,
	domain.CategoryHumanitarian:     10,
	domain.CategoryDisasterClimate:  10,
	domain.CategoryElections:        8,
	domain.CategoryHealth:           8,
	domain.CategoryMigration:        8,
	domain.CategoryOther:            4,
}

var (
	urgencyRe = regexp.MustCompile(`(?i)\b(?:coup|ceasefire|sanctions?|strikes?|blockade|tariffs?|default|attacks?|missiles?|ransomware|pipeline|invasion|escalation|embargo|evacuation|mobilization|export\s+controls?)\b`)

	// Six or more consecutive capitals reads as clickbait shouting.
	capsRunRe = regexp.MustCompile(`[A-Z]{6,}`)
)

// Rank returns the items sorted by descending relevance score. The sort is
// stable: equal scores keep their input order. Rank keeps no state between
// calls and never mutates the input items themselves.
func Rank(items []domain.HeadlineItem, now time.Time) []domain.HeadlineItem {
	type scored struct {
		item  domain.HeadlineItem
		score float64
	}

	entries := make([]scored, len(items))
	for i, item := range items {
		entries[i] = scored{item: item, score: Score(item, now)}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })

	ranked := make([]domain.HeadlineItem, len(entries))
	for i, e := range entries {
		ranked[i] = e.item
	}
	return ranked
}

// Score computes the relevance of one item at the given instant.
func Score(item domain.HeadlineItem, now time.Time) float64 {
	score := extract.ScoreDomain(item.Source) * 0.15
	score += categoryWeight(item.Category)
	score += headlineSignal(item.Headline)
	score += freshnessBoost(item.Created, now)
	if item.Lat != nil && item.Lon != nil {
		score += 2
	}
	return score
}

func categoryWeight(cat domain.Category) float64 {
	if w, ok := categoryWeights[cat]; ok {
		return w
	}
	return defaultCategoryWeight
}

// headlineSignal rewards urgency vocabulary and an informative length,
// and penalizes shouting.
func headlineSignal(text string) float64 {
	var score float64
	if urgencyRe.MatchString(text) {
		score += 10
	}
	if capsRunRe.MatchString(text) {
		score -= 2
	}
	if n := utf8.RuneCountInString(text); n >= 40 && n <= 140 {
		score += 2
	}
	return score
}

// freshnessBoost decays linearly from 12 to 10 across the first 24 hours,
// then from 2 to 0 between 24 and 72 hours, and contributes nothing beyond.
func freshnessBoost(created, now time.Time) float64 {
	if created.IsZero() {
		return 0
	}
	age := now.Sub(created)
	if age < 0 {
		age = 0
	}
	switch {
	case age <= 24*time.Hour:
		return 12 - 2*(age.Hours()/24)
	case age <= 72*time.Hour:
		return 2 - 2*((age.Hours()-24)/48)
	default:
		return 0
	}
}
