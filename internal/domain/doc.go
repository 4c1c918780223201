// Package domain models geocoded geopolitical news events.
//
// # Data Source
//
// Events originate from the GDELT GEO 2.0 API
// (https://api.gdeltproject.org/api/v2/geo/geo), which geocodes worldwide
// news coverage and returns GeoJSON FeatureCollections. Each feature has
// point geometry in [lon, lat] order and two properties: a short name and
// an HTML snippet containing one or more source article links.
//
// # Feed Conventions
//
// Coordinates:
//
//	[lon, lat] per GeoJSON. The feed emits 0,0 when an event could not be
//	geocoded, so the exact origin is treated as a missing-data sentinel
//	and rejected by [ValidCoordinates]. Values occasionally arrive as
//	strings ("31.02") or with stray prose around the number; see
//	[ParseCoordinate].
//
// HTML property:
//
//	Frequently malformed: unclosed anchors, bare href attributes outside
//	any <a> tag, HTML entities in link text. Link extraction must stay
//	tolerant and non-throwing.
//
// # Identity and Deduplication
//
// The three feed queries overlap deliberately (broad to narrow), so the
// same underlying event arrives more than once. [SocioPoint.DedupKey]
// gives each event a session-stable identity: the extracted article URL
// when one exists, else coordinates rounded to three decimals plus the
// label. The dedup set lives for the process lifetime; the feed window is
// bounded (last 24h), so the set needs no eviction.
package domain
