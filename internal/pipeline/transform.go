package pipeline

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/Tekknobot/geopol-dashboard/internal/classify"
	"github.com/Tekknobot/geopol-dashboard/internal/domain"
	"github.com/Tekknobot/geopol-dashboard/internal/extract"
)

// Transformer maps one raw geo-feature into a classified SocioPoint.
// It implements the mapper stage between the feed fetch and dedup.
type Transformer struct {
	classifier    *classify.Classifier
	picker        *extract.Picker
	minOtherLabel int
	logger        *slog.Logger
}

// NewTransformer creates a Transformer. minOtherLabel is the minimum length
// of the label's longest word for an "Other" point without a link to survive.
func NewTransformer(classifier *classify.Classifier, picker *extract.Picker, minOtherLabel int, logger *slog.Logger) *Transformer {
	return &Transformer{
		classifier:    classifier,
		picker:        picker,
		minOtherLabel: minOtherLabel,
		logger:        logger,
	}
}

// Transform validates coordinates, classifies the event, attaches the best
// link, and applies the noise-acceptance rule. Returns false when the
// feature is dropped; dropping is filtering, not an error.
func (t *Transformer) Transform(f domain.RawFeature) (domain.SocioPoint, bool) {
	lat, lon, ok := parseGeometry(f.Coordinates)
	if !ok {
		return domain.SocioPoint{}, false
	}

	category := t.classifier.Classify(f.Name, f.HTML)

	label := f.Name
	if label == "" {
		label = string(category)
	}

	point := domain.SocioPoint{
		Lat:      lat,
		Lon:      lon,
		Label:    label,
		Category: category,
	}

	link := t.picker.Pick(f.HTML, label)
	if link.URL != "" {
		point.URL = link.URL
		point.Source = link.Source
		point.Headline = link.Headline
	}

	// Noise filter: an unclassifiable point with no link and a stub label
	// carries no information worth pinning. A label is a stub when even its
	// longest word is short ("Local event" is all five-letter filler).
	if category == domain.CategoryOther && !point.HasLink() && longestToken(label) < t.minOtherLabel {
		return domain.SocioPoint{}, false
	}

	return point, true
}

func longestToken(label string) int {
	longest := 0
	for _, tok := range strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if n := len([]rune(tok)); n > longest {
			longest = n
		}
	}
	return longest
}

// parseGeometry extracts and validates [lon, lat] from raw coordinates.
func parseGeometry(coords []any) (lat, lon float64, ok bool) {
	if len(coords) < 2 {
		return 0, 0, false
	}
	lon, okLon := domain.ParseCoordinate(coords[0])
	lat, okLat := domain.ParseCoordinate(coords[1])
	if !okLon || !okLat {
		return 0, 0, false
	}
	if !domain.ValidCoordinates(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}
