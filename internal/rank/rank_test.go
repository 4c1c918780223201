package rank

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
)

var rankNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func item(overrides func(*domain.HeadlineItem)) domain.HeadlineItem {
	it := domain.HeadlineItem{
		ID:       "https://reuters.com/a",
		Headline: "Talks continue over regional security arrangement",
		URL:      "https://reuters.com/a",
		Source:   "reuters.com",
		Category: domain.CategoryDiplomacy,
		Created:  rankNow.Add(-2 * time.Hour),
	}
	if overrides != nil {
		overrides(&it)
	}
	return it
}

func TestScore_FresherRanksHigher(t *testing.T) {
	fresh := item(func(it *domain.HeadlineItem) { it.Created = rankNow })
	stale := item(func(it *domain.HeadlineItem) { it.Created = rankNow.Add(-100 * time.Hour) })

	assert.GreaterOrEqual(t, Score(fresh, rankNow), Score(stale, rankNow))
	assert.InDelta(t, 12, Score(fresh, rankNow)-Score(stale, rankNow), 0.01,
		"full freshness boost vs none")
}

func TestFreshnessBoost(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"brand new", 0, 12},
		{"half a day", 12 * time.Hour, 11},
		{"exactly one day", 24 * time.Hour, 10},
		{"two days", 48 * time.Hour, 1},
		{"three days", 72 * time.Hour, 0},
		{"one week", 168 * time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, freshnessBoost(rankNow.Add(-tt.age), rankNow), 0.01)
		})
	}

	t.Run("zero created time contributes nothing", func(t *testing.T) {
		assert.Zero(t, freshnessBoost(time.Time{}, rankNow))
	})
}

func TestHeadlineSignal(t *testing.T) {
	t.Run("urgency keyword", func(t *testing.T) {
		assert.Equal(t, 12.0, headlineSignal("Naval blockade tightens around the main export port"))
	})

	t.Run("caps run penalized", func(t *testing.T) {
		plain := headlineSignal("Officials confirm new measures in the region")
		shouty := headlineSignal("Officials CONFIRM new measures in the BREAKING region")
		assert.Equal(t, plain-2, shouty)
	})

	t.Run("informative length band", func(t *testing.T) {
		assert.Equal(t, 0.0, headlineSignal("Too short"))
	})

	t.Run("length band counts runes, not bytes", func(t *testing.T) {
		headline := "Переговори про довгострокове врегулювання тривають у столиці попри зовнішній дипломатичний тиск"
		runes := utf8.RuneCountInString(headline)
		require.Greater(t, len(headline), 140, "byte length must exceed the band")
		require.GreaterOrEqual(t, runes, 40)
		require.LessOrEqual(t, runes, 140)

		assert.Equal(t, 2.0, headlineSignal(headline))
	})
}

func TestScore_GeoSignal(t *testing.T) {
	lat, lon := 37.97, 23.73
	located := item(func(it *domain.HeadlineItem) { it.Lat, it.Lon = &lat, &lon })
	unlocated := item(nil)

	assert.InDelta(t, 2, Score(located, rankNow)-Score(unlocated, rankNow), 0.001)
}

func TestScore_TrustedSourceOutranksContentFarm(t *testing.T) {
	trusted := item(nil)
	farm := item(func(it *domain.HeadlineItem) { it.Source = "hot-takes.blogspot.com" })

	assert.Greater(t, Score(trusted, rankNow), Score(farm, rankNow))
}

func TestRank_SortsDescendingAndStable(t *testing.T) {
	a := item(func(it *domain.HeadlineItem) {
		it.ID = "a"
		it.Category = domain.CategorySecurityConflict
	})
	b := item(func(it *domain.HeadlineItem) { it.ID = "b" })
	c := item(func(it *domain.HeadlineItem) { it.ID = "c" }) // identical score to b

	got := Rank([]domain.HeadlineItem{b, c, a}, rankNow)

	assert.Equal(t, "a", got[0].ID, "highest category weight first")
	assert.Equal(t, "b", got[1].ID, "ties keep input order")
	assert.Equal(t, "c", got[2].ID)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	a := item(func(it *domain.HeadlineItem) { it.ID = "a"; it.Category = domain.CategoryOther })
	b := item(func(it *domain.HeadlineItem) { it.ID = "b"; it.Category = domain.CategorySanctions })
	in := []domain.HeadlineItem{a, b}

	Rank(in, rankNow)

	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "b", in[1].ID)
}
