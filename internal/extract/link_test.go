package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPick_EmptyAndLinkless(t *testing.T) {
	p := NewPicker(0)

	t.Run("empty html", func(t *testing.T) {
		got := p.Pick("", "fallback")
		assert.Equal(t, float64(-999), got.Score)
		assert.Empty(t, got.URL)
	})

	t.Run("whitespace html", func(t *testing.T) {
		got := p.Pick("   \n\t ", "fallback")
		assert.Equal(t, float64(-999), got.Score)
	})

	t.Run("no anchors", func(t *testing.T) {
		got := p.Pick("<p>Unrest reported in the capital.</p>", "fallback")
		assert.Equal(t, float64(-999), got.Score)
		assert.Empty(t, got.URL)
		assert.Empty(t, got.Headline)
		assert.Empty(t, got.Source)
	})

	t.Run("non-http schemes skipped", func(t *testing.T) {
		html := `<a href="javascript:void(0)">x</a><a href="mailto:a@b.com">y</a><a href="ftp://x.com/f">z</a>`
		got := p.Pick(html, "fallback")
		assert.Equal(t, float64(-999), got.Score)
	})
}

func TestPick_TrustedOutlet(t *testing.T) {
	p := NewPicker(0)

	html := `<a href="https://reuters.com/x?utm_source=y" title="Port of Piraeus blockade disrupts shipping">link</a>`
	got := p.Pick(html, "Piraeus unrest")

	require.GreaterOrEqual(t, got.Score, float64(0))
	assert.Equal(t, "https://reuters.com/x", got.URL, "tracking params stripped")
	assert.Equal(t, "reuters.com", got.Source)
	assert.Equal(t, "Port of Piraeus blockade disrupts shipping", got.Headline,
		"title attribute preferred over generic anchor text")
}

func TestPick_BlockedDomainStaysNegative(t *testing.T) {
	p := NewPicker(0)

	html := `<a href="https://randomblogspot123.blogspot.com/post">A very long and perfectly fluent English headline about the local event</a>`
	got := p.Pick(html, "Local event")

	assert.Negative(t, got.Score, "language bonus is capped and cannot rescue a blocked domain")
	assert.Empty(t, got.URL)
	assert.Empty(t, got.Headline)
	assert.Empty(t, got.Source)
}

func TestPick_RanksTrustedAboveUnknown(t *testing.T) {
	p := NewPicker(0)

	html := `
		<a href="https://some-random-news-4u.info/a">Clashes erupt near the border</a>
		<a href="https://apnews.com/article/x">Clashes erupt near the border</a>`
	got := p.Pick(html, "border clashes")

	assert.Equal(t, "apnews.com", got.Source)
}

func TestPick_BareHrefRecoveredFromMalformedMarkup(t *testing.T) {
	p := NewPicker(0)

	// Unterminated anchor tag: the href never makes it into a parsed <a>.
	html := `<div>coverage at <a href="https://bbc.com/news/world-1" Ukraine grain corridor deal extended</div>`
	got := p.Pick(html, "grain corridor")

	require.GreaterOrEqual(t, got.Score, float64(0))
	assert.Equal(t, "bbc.com", got.Source)
	assert.Equal(t, "grain corridor", got.Headline, "fallback label used for bare hrefs")
}

func TestPick_HeadlineCleanup(t *testing.T) {
	p := NewPicker(0)

	t.Run("entities and whitespace", func(t *testing.T) {
		html := `<a href="https://reuters.com/a">Talks   stall &amp; sanctions
			loom</a>`
		got := p.Pick(html, "x")
		assert.Equal(t, "Talks stall & sanctions loom", got.Headline)
	})

	t.Run("truncated to 160 runes", func(t *testing.T) {
		long := strings.Repeat("negotiations ", 30)
		html := `<a href="https://reuters.com/a">` + long + `</a>`
		got := p.Pick(html, "x")
		assert.LessOrEqual(t, len([]rune(got.Headline)), 160)
		assert.True(t, strings.HasSuffix(got.Headline, "…"))
	})
}

func TestScoreDomain(t *testing.T) {
	tests := []struct {
		host string
		sign int // -1 negative, 0 any, 1 positive
	}{
		{"reuters.com", 1},
		{"www.reuters.com", 1},
		{"state.gov", 1},
		{"example.org", 1},
		{"my-very-long-hyphen-site-123.info", -1},
		{"foo.blogspot.com", -1},
		{"cheap-pressrelease-hub.com", -1},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			score := ScoreDomain(tt.host)
			switch tt.sign {
			case 1:
				assert.Positive(t, score)
			case -1:
				assert.Negative(t, score)
			}
		})
	}

	t.Run("trusted beats plain com", func(t *testing.T) {
		assert.Greater(t, ScoreDomain("reuters.com"), ScoreDomain("somewhere.com"))
	})
}
