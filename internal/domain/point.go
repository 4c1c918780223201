package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Category tags a classified event. Thirteen named categories plus the
// CategoryOther fallback.
type Category string

const (
	CategorySecurityConflict Category = "Security/Conflict"
	CategoryEnergy           Category = "Energy"
	CategorySupplyChain      Category = "Supply Chain"
	CategorySanctions        Category = "Sanctions"
	CategoryMacroFinance     Category = "Macro/Finance"
	CategoryCyber            Category = "Cyber"
	CategoryProtestUnrest    Category = "Protest/Unrest"
	CategoryDiplomacy        Category = "Diplomacy"
	CategoryElections        Category = "Elections/Politics"
	CategoryHumanitarian     Category = "Humanitarian"
	CategoryDisasterClimate  Category = "Disaster/Climate"
	CategoryHealth           Category = "Health"
	CategoryMigration        Category = "Migration"
	CategoryOther            Category = "Other"
)

// Categories lists all category tags in classification priority order.
// CategoryOther is last and serves as the zero-score fallback.
var Categories = []Category{
	CategorySecurityConflict,
	CategoryEnergy,
	CategorySupplyChain,
	CategorySanctions,
	CategoryMacroFinance,
	CategoryCyber,
	CategoryProtestUnrest,
	CategoryDiplomacy,
	CategoryElections,
	CategoryHumanitarian,
	CategoryDisasterClimate,
	CategoryHealth,
	CategoryMigration,
	CategoryOther,
}

// RawFeature is one unprocessed GeoJSON feature from the event feed.
// Coordinates are kept untyped because the feed sometimes emits numbers
// as strings; ParseCoordinate handles both. Not retained after mapping.
type RawFeature struct {
	Name        string
	HTML        string
	Coordinates []any // [lon, lat]
}

// SocioPoint is one classified, geolocated event ready for display.
// Headline, Source and URL are set together when a trustworthy link was
// found in the event HTML, or all empty otherwise.
type SocioPoint struct {
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Headline string   `json:"headline,omitempty"`
	Source   string   `json:"source,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// HasLink reports whether a trustworthy link was attached.
func (p SocioPoint) HasLink() bool { return p.URL != "" }

// DedupKey identifies an event across overlapping feed queries: the URL
// when present, otherwise rounded coordinates plus the label.
func (p SocioPoint) DedupKey() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("%.3f,%.3f:%s", p.Lat, p.Lon, p.Label)
}

// PickedLink is the result of scoring the anchors in an event's HTML.
// Score below zero means no trustworthy link; URL, Source and Headline
// must be treated as absent in that case.
type PickedLink struct {
	URL      string
	Source   string
	Headline string
	Score    float64
}

// CategoryScore pairs a category with its rule score for one feature.
type CategoryScore struct {
	Category Category
	Score    float64
}

// HeadlineItem is one entry in the ranked headline carousel. Items are
// derived either from SocioPoints carrying a link or from situation-report
// feed entries; they are immutable once scored.
type HeadlineItem struct {
	ID          string    `json:"id"`
	Headline    string    `json:"headline"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	Category    Category  `json:"category,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	CountryName string    `json:"country_name,omitempty"`
	Created     time.Time `json:"created,omitempty"`
}

// ValidCoordinates reports whether a lat/lon pair is usable. The feed
// emits 0,0 for events it could not geocode, so the origin is rejected
// along with out-of-range values.
func ValidCoordinates(lat, lon float64) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	return true
}

var embeddedNumberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseCoordinate extracts a float from a GeoJSON coordinate value that
// may be a number, a numeric string, or a string with an embedded number.
func ParseCoordinate(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		if m := embeddedNumberRe.FindString(s); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
