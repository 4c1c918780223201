// Package extract finds the most trustworthy article link inside the HTML
// snippet attached to a feed event.
package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
)

// noLinkScore marks snippets with no usable anchors at all.
const noLinkScore = -999

// maxHeadlineLen truncates picked headlines for display.
const maxHeadlineLen = 160

// englishnessCap bounds the language bonus so it can never rescue a
// blocklisted or otherwise untrusted domain.
const englishnessCap = 15

// trustedOutlets are established news and institutional domains that get a
// large flat bonus. Matching is done on the registrable host with any
// leading "www." removed.
var trustedOutlets = map[string]struct{}{
	"reuters.com":         {},
	"apnews.com":          {},
	"bbc.com":             {},
	"bbc.co.uk":           {},
	"aljazeera.com":       {},
	"bloomberg.com":       {},
	"ft.com":              {},
	"economist.com":       {},
	"theguardian.com":     {},
	"nytimes.com":         {},
	"washingtonpost.com":  {},
	"wsj.com":             {},
	"dw.com":              {},
	"france24.com":        {},
	"afp.com":             {},
	"cnn.com":             {},
	"nbcnews.com":         {},
	"abcnews.go.com":      {},
	"cbsnews.com":         {},
	"npr.org":             {},
	"politico.com":        {},
	"politico.eu":         {},
	"axios.com":           {},
	"foreignpolicy.com":   {},
	"kyivindependent.com": {},
	"timesofisrael.com":   {},
	"scmp.com":            {},
	"nikkei.com":          {},
	"straitstimes.com":    {},
	"un.org":              {},
	"reliefweb.int":       {},
	"who.int":             {},
	"imf.org":             {},
	"worldbank.org":       {},
}

// lowQualityPatterns mark content farms and self-publishing hosts. A match
// applies a penalty large enough to push the final score negative.
var lowQualityPatterns = []string{
	"blogspot",
	"wordpress",
	"medium.com",
	"substack",
	"tumblr",
	"weebly",
	"wixsite",
	"livejournal",
	"blogger",
	"pressrelease",
	"prnewswire",
	"prweb",
	"newswire",
	"einpresswire",
}

var strongTLDs = []string{".gov", ".edu", ".int", ".mil"}
var okTLDs = []string{".org", ".com", ".net"}

// englishTLDs get a small language-likelihood bonus in addition to any
// reputation bonus.
var englishTLDs = []string{".com", ".org", ".gov", ".edu", ".uk", ".au", ".ca", ".nz", ".ie"}

var englishStopwords = []string{" the ", " and ", " of ", " in ", " to ", " for ", " on ", " at ", " with ", " over ", " after "}

// trackingParams are stripped from picked URLs before they are returned.
var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"mc_cid": {},
	"mc_eid": {},
}

var (
	bareHrefRe   = regexp.MustCompile(`(?i)href\s*=\s*["']?(https?://[^"'\s>]+)`)
	digitRe      = regexp.MustCompile(`\d`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	allDigitsRe  = regexp.MustCompile(`^[\d.]+$`)
)

type candidate struct {
	rawURL   string
	headline string
	score    float64
}

// Picker scores anchors by domain reputation and language likelihood and
// returns the single best link per snippet.
type Picker struct {
	threshold float64
}

// NewPicker creates a Picker that rejects links scoring below threshold.
func NewPicker(threshold float64) *Picker {
	return &Picker{threshold: threshold}
}

// Pick extracts every anchor from the snippet, scores each, and returns the
// best as a PickedLink. A Score below the acceptance threshold means no
// trustworthy link was found and URL, Source and Headline are left empty.
// Pick never fails: malformed markup and unparsable URLs are skipped.
func (p *Picker) Pick(html, fallbackLabel string) domain.PickedLink {
	if strings.TrimSpace(html) == "" {
		return domain.PickedLink{Score: noLinkScore}
	}

	cands := collectCandidates(html, fallbackLabel)
	if len(cands) == 0 {
		return domain.PickedLink{Score: noLinkScore}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	top := cands[0]

	if top.score < p.threshold {
		return domain.PickedLink{Score: top.score}
	}

	u, err := url.Parse(top.rawURL)
	if err != nil {
		return domain.PickedLink{Score: noLinkScore}
	}

	return domain.PickedLink{
		URL:      stripTracking(u),
		Source:   hostOf(u),
		Headline: cleanHeadline(top.headline),
		Score:    top.score,
	}
}

// collectCandidates walks the parsed anchor tags, then sweeps for bare
// href attributes the tree parse missed inside broken markup.
func collectCandidates(html, fallbackLabel string) []candidate {
	var cands []candidate
	seen := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			headline := strings.TrimSpace(sel.Text())
			if isGenericAnchorText(headline) {
				headline = strings.TrimSpace(sel.AttrOr("title", ""))
			}
			if headline == "" {
				headline = fallbackLabel
			}
			if c, ok := scoreCandidate(href, headline); ok {
				cands = append(cands, c)
				seen[c.rawURL] = struct{}{}
			}
		})
	}

	// Bare hrefs not captured above: malformed snippets sometimes carry
	// attributes outside any well-formed anchor.
	for _, m := range bareHrefRe.FindAllStringSubmatch(html, -1) {
		raw := strings.TrimRight(m[1], `"'>`)
		if _, dup := seen[raw]; dup {
			continue
		}
		if c, ok := scoreCandidate(raw, fallbackLabel); ok {
			cands = append(cands, c)
			seen[raw] = struct{}{}
		}
	}

	return cands
}

// scoreCandidate validates the URL and computes the combined domain plus
// capped englishness score.
func scoreCandidate(rawURL, headline string) (candidate, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return candidate{}, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return candidate{}, false
	}
	host := hostOf(u)
	if host == "" {
		return candidate{}, false
	}

	score := ScoreDomain(host)
	if u.Scheme == "https" {
		score += 2
	}

	lang := englishness(headline, host)
	if lang > englishnessCap {
		lang = englishnessCap
	}
	score += lang

	return candidate{rawURL: u.String(), headline: headline, score: score}, true
}

// ScoreDomain rates a host by reputation. Positive for trusted outlets and
// strong TLDs, strongly negative for content-farm patterns. Shared with the
// headline ranker.
func ScoreDomain(host string) float64 {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "" {
		return 0
	}

	var score float64

	if _, ok := trustedOutlets[host]; ok {
		score += 50
	}

	switch {
	case hasAnySuffix(host, strongTLDs):
		score += 12
	case hasAnySuffix(host, okTLDs):
		score += 4
	}

	if len(host) > 25 {
		score -= 2
	}
	if strings.Count(host, "-") > 2 {
		score -= 2
	}
	if digitRe.MatchString(host) {
		score--
	}

	for _, pat := range lowQualityPatterns {
		if strings.Contains(host, pat) {
			score -= 25
			break
		}
	}

	return score
}

// englishness estimates how likely the candidate headline is English text:
// ASCII ratio, common stopwords, and an English-preferred TLD nudge.
func englishness(text, host string) float64 {
	var score float64

	if text != "" && !allDigitsRe.MatchString(text) {
		ascii := 0
		total := 0
		for _, r := range text {
			total++
			if r < 128 {
				ascii++
			}
		}
		ratio := float64(ascii) / float64(total)
		switch {
		case ratio > 0.95:
			score += 10
		case ratio >= 0.70:
			score += 2
		default:
			score -= 10
		}

		padded := " " + strings.ToLower(text) + " "
		stopHits := 0
		for _, w := range englishStopwords {
			if strings.Contains(padded, w) {
				stopHits++
			}
		}
		if stopHits > 3 {
			stopHits = 3
		}
		score += float64(stopHits) * 2
	}

	if hasAnySuffix(strings.ToLower(host), englishTLDs) {
		score += 2
	}

	return score
}

// stripTracking removes marketing query parameters and rebuilds the URL.
func stripTracking(u *url.URL) string {
	q := u.Query()
	changed := false
	for key := range q {
		_, tracked := trackingParams[key]
		if tracked || strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// entityReplacer handles the few entities that survive into headline text
// pulled from attributes or the bare-href sweep.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
)

// cleanHeadline decodes entities, collapses whitespace, and truncates.
func cleanHeadline(s string) string {
	s = entityReplacer.Replace(s)
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if runes := []rune(s); len(runes) > maxHeadlineLen {
		s = strings.TrimSpace(string(runes[:maxHeadlineLen-1])) + "…"
	}
	return s
}

// genericAnchorTexts are boilerplate labels that carry no headline value;
// the title attribute or fallback label is preferred over them.
var genericAnchorTexts = map[string]struct{}{
	"link": {}, "here": {}, "source": {}, "more": {},
	"read more": {}, "click here": {}, "article": {},
}

func isGenericAnchorText(s string) bool {
	if s == "" {
		return true
	}
	_, generic := genericAnchorTexts[strings.ToLower(s)]
	return generic
}

func hostOf(u *url.URL) string {
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
