// Package classify assigns exactly one category to a feed event using
// weighted phrase and keyword rules with tie-break overrides.
//
// Keyword matching is a two-step scan modeled on a trie rule engine: an
// Aho-Corasick automaton over every keyword term prescreens which terms
// occur at all, then only the surviving terms are counted with word
// boundaries enforced. Phrases and exclusions use compiled regexps.
package classify

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
)

// Weighted is a phrase or exclusion pattern with its score contribution.
// Pattern is a regular expression fragment matched with word boundaries.
type Weighted struct {
	Pattern string
	Weight  float64
}

// Keyword is a single literal term. Each boundary-verified occurrence
// contributes Weight, up to MaxHits occurrences (default 2).
type Keyword struct {
	Term    string
	Weight  float64
	MaxHits int
}

// Rule is the scoring rule set for one named category.
type Rule struct {
	Category domain.Category
	Base     float64 // added once if anything in the rule matched
	Cap      float64 // clamp on the category total, 0 = uncapped
	Phrases  []Weighted
	Keywords []Keyword
	Excludes []Weighted
}

// Override is a tie-break rule: when the named category scores within the
// tie margin of the top score and the pattern matches, it wins outright.
type Override struct {
	Category domain.Category
	re       *regexp.Regexp
}

type termRef struct {
	rule    int
	keyword int
}

type compiledRule struct {
	rule     Rule
	phrases  []*regexp.Regexp
	excludes []*regexp.Regexp
}

// Classifier scores the fourteen categories for a feature and picks one.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules     []compiledRule
	overrides []Override
	minScore  float64
	tieMargin float64

	matcher   *ahocorasick.Matcher
	terms     []string
	termRules map[string][]termRef
}

// Options tunes the acceptance thresholds. The defaults are the empirically
// chosen constants the rule weights were calibrated against.
type Options struct {
	MinScore  float64 // minimum top score before falling back to Other
	TieMargin float64 // how close a score must be to the top for overrides
}

// DefaultOptions returns the calibrated thresholds.
func DefaultOptions() Options {
	return Options{MinScore: 6, TieMargin: 2}
}

// New builds a Classifier from the default rule sets.
func New(opts Options) *Classifier {
	return NewWithRules(defaultRules(), defaultOverrides(), opts)
}

// NewWithRules builds a Classifier from explicit rules, for tests and
// alternative vocabularies.
func NewWithRules(rules []Rule, overrides []Override, opts Options) *Classifier {
	c := &Classifier{
		overrides: overrides,
		minScore:  opts.MinScore,
		tieMargin: opts.TieMargin,
		termRules: make(map[string][]termRef),
	}

	for ri, r := range rules {
		cr := compiledRule{rule: r}
		for _, p := range r.Phrases {
			cr.phrases = append(cr.phrases, compileBounded(p.Pattern))
		}
		for _, e := range r.Excludes {
			cr.excludes = append(cr.excludes, compileBounded(e.Pattern))
		}
		c.rules = append(c.rules, cr)

		for ki, kw := range r.Keywords {
			term := strings.ToLower(kw.Term)
			if _, known := c.termRules[term]; !known {
				c.terms = append(c.terms, term)
			}
			c.termRules[term] = append(c.termRules[term], termRef{rule: ri, keyword: ki})
		}
	}

	if len(c.terms) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.terms)
	}

	return c
}

// Classify returns exactly one category for the event. Pure function of
// its input: identical (name, html) always yields the same category.
func (c *Classifier) Classify(name, html string) domain.Category {
	text := Normalize(name + " " + html)
	scores := c.scoreText(text)
	return c.pick(text, scores)
}

// Scores returns all fourteen category scores, sorted descending, with
// ties broken by rule order. The Other entry always scores 0.
func (c *Classifier) Scores(name, html string) []domain.CategoryScore {
	return c.scoreText(Normalize(name + " " + html))
}

func (c *Classifier) scoreText(text string) []domain.CategoryScore {
	totals := make([]float64, len(c.rules))
	matched := make([]bool, len(c.rules))

	// Prescreen: which keyword terms occur anywhere in the text.
	if c.matcher != nil {
		for _, hit := range c.matcher.Match([]byte(text)) {
			if hit >= len(c.terms) {
				continue
			}
			term := c.terms[hit]
			n := countWordOccurrences(text, term)
			if n == 0 {
				continue
			}
			for _, ref := range c.termRules[term] {
				kw := c.rules[ref.rule].rule.Keywords[ref.keyword]
				maxHits := kw.MaxHits
				if maxHits <= 0 {
					maxHits = 2
				}
				hits := n
				if hits > maxHits {
					hits = maxHits
				}
				totals[ref.rule] += kw.Weight * float64(hits)
				matched[ref.rule] = true
			}
		}
	}

	for ri := range c.rules {
		cr := &c.rules[ri]
		for pi, re := range cr.phrases {
			n := len(re.FindAllStringIndex(text, 2))
			if n > 0 {
				totals[ri] += cr.rule.Phrases[pi].Weight * float64(n)
				matched[ri] = true
			}
		}
		for ei, re := range cr.excludes {
			if re.MatchString(text) {
				totals[ri] -= cr.rule.Excludes[ei].Weight
			}
		}
		if matched[ri] {
			totals[ri] += cr.rule.Base
			if cr.rule.Cap > 0 && totals[ri] > cr.rule.Cap {
				totals[ri] = cr.rule.Cap
			}
		}
		if totals[ri] < 0 {
			totals[ri] = 0
		}
	}

	scores := make([]domain.CategoryScore, 0, len(c.rules)+1)
	for ri := range c.rules {
		scores = append(scores, domain.CategoryScore{Category: c.rules[ri].rule.Category, Score: totals[ri]})
	}
	scores = append(scores, domain.CategoryScore{Category: domain.CategoryOther, Score: 0})

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

// pick applies the minimum threshold and the tie-break overrides.
func (c *Classifier) pick(text string, scores []domain.CategoryScore) domain.Category {
	top := scores[0]
	if top.Score < c.minScore {
		return domain.CategoryOther
	}

	for _, ov := range c.overrides {
		s, ok := scoreFor(scores, ov.Category)
		if !ok || s < top.Score-c.tieMargin {
			continue
		}
		if ov.re.MatchString(text) {
			return ov.Category
		}
	}

	return top.Category
}

func scoreFor(scores []domain.CategoryScore, cat domain.Category) (float64, bool) {
	for _, s := range scores {
		if s.Category == cat {
			return s.Score, true
		}
	}
	return 0, false
}

// compileBounded wraps a pattern in word boundaries, letting internal
// whitespace match flexibly.
func compileBounded(pattern string) *regexp.Regexp {
	pattern = strings.ReplaceAll(pattern, " ", `\s+`)
	return regexp.MustCompile(`\b(?:` + pattern + `)\b`)
}

// countWordOccurrences counts boundary-verified occurrences of term.
func countWordOccurrences(text, term string) int {
	count := 0
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return count
		}
		i += start
		if boundaryBefore(text, i) && boundaryAfter(text, i+len(term)) {
			count++
		}
		start = i + len(term)
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	return !isWordByte(text[i])
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Normalize lowercases the text and strips diacritics so rule terms match
// accented spellings. Falls back to plain lowercasing if the Unicode
// transform fails on malformed input.
func Normalize(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
