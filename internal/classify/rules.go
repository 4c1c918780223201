package classify

import (
	"regexp"

	"github.com/Tekknobot/geopol-dashboard/internal/domain"
)

// defaultRules holds the hand-tuned vocabulary for the thirteen named
// categories. Weights were calibrated against a 24h window of feed output;
// the Other fallback scores 0 implicitly.
func defaultRules() []Rule {
	return []Rule{
		{
			Category: domain.CategorySecurityConflict,
			Cap:      30,
			Phrases: []Weighted{
				{Pattern: "air strike", Weight: 6},
				{Pattern: "armed clash(?:es)?", Weight: 6},
				{Pattern: "cross-border shelling", Weight: 6},
				{Pattern: "ground offensive", Weight: 6},
			},
			Keywords: []Keyword{
				{Term: "missile", Weight: 5},
				{Term: "airstrike", Weight: 6},
				{Term: "airstrikes", Weight: 6},
				{Term: "shelling", Weight: 5},
				{Term: "artillery", Weight: 5},
				{Term: "invasion", Weight: 6},
				{Term: "offensive", Weight: 4},
				{Term: "troops", Weight: 4},
				{Term: "drone", Weight: 4},
				{Term: "drones", Weight: 4},
				{Term: "militia", Weight: 4},
				{Term: "insurgents", Weight: 5},
				{Term: "frontline", Weight: 4},
				{Term: "combat", Weight: 5},
				{Term: "ceasefire", Weight: 5},
				{Term: "coup", Weight: 5},
				{Term: "gunfire", Weight: 5},
				{Term: "attack", Weight: 4},
				{Term: "attacks", Weight: 4},
				{Term: "clashes", Weight: 4},
				{Term: "war", Weight: 3},
			},
			Excludes: []Weighted{
				{Pattern: "heart attack", Weight: 5},
				{Pattern: "attack ad(?:s)?", Weight: 4},
				{Pattern: "price war", Weight: 3},
			},
		},
		{
			Category: domain.CategoryEnergy,
			Cap:      30,
			Phrases: []Weighted{
				{Pattern: "power grid", Weight: 6},
				{Pattern: "(?:oil|gas) pipeline", Weight: 6},
				{Pattern: "nuclear (?:plant|reactor)", Weight: 6},
				{Pattern: "energy crisis", Weight: 5},
				{Pattern: "rolling blackouts?", Weight: 5},
			},
			Keywords: []Keyword{
				{Term: "pipeline", Weight: 5},
				{Term: "refinery", Weight: 5},
				{Term: "opec", Weight: 6},
				{Term: "lng", Weight: 5},
				{Term: "blackout", Weight: 5},
				{Term: "blackouts", Weight: 5},
				{Term: "crude", Weight: 4},
				{Term: "oilfield", Weight: 5},
				{Term: "gazprom", Weight: 5},
				{Term: "hydropower", Weight: 4},
				{Term: "substation", Weight: 5},
				{Term: "outage", Weight: 3},
				{Term: "diesel", Weight: 3},
				{Term: "grid", Weight: 3},
			},
			Excludes: []Weighted{
				{Pattern: "talent pipeline", Weight: 6},
				{Pattern: "sales pipeline", Weight: 6},
			},
		},
		{
			Category: domain.CategorySupplyChain,
			Cap:      30,
			Phrases: []Weighted{
				{Pattern: "supply chain(?:s)?", Weight: 6},
				{Pattern: "red sea", Weight: 6},
				{Pattern: "suez canal", Weight: 6},
				{Pattern: "panama canal", Weight: 6},
				{Pattern: "strait of hormuz", Weight: 6},
				{Pattern: "grain corridor", Weight: 5},
			},
			Keywords: []Keyword{
				{Term: "port", Weight: 4},
				{Term: "ports", Weight: 4},
				{Term: "shipping", Weight: 4},
				{Term: "blockade", Weight: 5},
				{Term: "freight", Weight: 4},
				{Term: "container", Weight: 4},
				{Term: "tanker", Weight: 4},
				{Term: "tankers", Weight: 4},
				{Term: "chokepoint", Weight: 6},
				{Term: "strait", Weight: 4},
				{Term: "cargo", Weight: 4},
				{Term: "logistics", Weight: 4},
				{Term: "reroute", Weight: 3},
			},
		},
		{
			Category: domain.CategorySanctions,
			Cap:      30,
			Phrases: []Weighted{
				{Pattern: "export controls?", Weight: 6},
				{Pattern: "price cap", Weight: 5},
				{Pattern: "asset freeze", Weight: 6},
				{Pattern: "trade restrictions?", Weight: 5},
			},
			Keywords: []Keyword{
				{Term: "sanction", Weight: 5},
				{Term: "sanctions", Weight: 5},
				{Term: "sanctioned", Weight: 5},
				{Term: "embargo", Weight: 5},
				{Term: "blacklist", Weight: 4},
				{Term: "blacklisted", Weight: 4},
				{Term: "tariff", Weight: 4},
				{Term: "tariffs", Weight: 4},
				{Term: "ofac", Weight: 6},
				{Term: "seizure", Weight: 3},
				{Term: "designation", Weight: 3},
			},
		},
		{
			Category: domain.CategoryMacroFinance,
			Cap:      30,
			Phrases: []Weighted{
				{Pattern: "interest rates?", Weight: 5},
				{Pattern: "rate hike", Weight: 5},
				{Pattern: "bond yields", Weight: 5},
				{Pattern: "capital controls", Weight: 5},
				{Pattern: "debt default", Weight: 6},
				{Pattern: "central bank", Weight: 4},
			},
			Keywords: []Keyword{
				{Term: "inflation", Weight: 4},
				{Term: "recession", Weight: 5},
				{Term: "devaluation", Weight: 5},
				{Term: "imf", Weight: 5},
				{Term: "default", Weight: 4},
				{Term: "bailout", Weight: 5},
				{Term: "austerity", Weight: 4},
				{Term: "gdp", Weight: 4},
				{Term: "markets", Weight: 3},
				{Term: "currency", Weight: 3},
			},
		},
		{
			Category: domain.CategoryCyber,
			Base:     1,
			Cap:      30,
			Phrases: []Weighted{
				{Pattern: "data breach", Weight: 6},
				{Pattern: "denial of service", Weight: 6},
				{Pattern: "zero[ -]day", Weight: 6},
			},
			Keywords: []Keyword{
				{Term: "ransomware", Weight: 6},
				{Term: "cyberattack", Weight: 6},
				{Term: "cyberattacks", Weight: 6},
				{Term: "malware", Weight: 5},
				{Term: "hackers", Weight: 4},
				{Term: "hacked", Weight: 4},
				{Term: "phishing", Weight: 4},
				{Term: "botnet", Weight: 5},
				{Term: "cyber", Weight: 4},
			},
		},
		{
			Category: domain.CategoryProtestUnrest,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "general strike", Weight: 6},
				{Pattern: "tear gas", Weight: 5},
				{Pattern: "mass demonstrations?", Weight: 5},
			},
			Keywords: []Keyword{
				{Term: "protest", Weight: 4},
				{Term: "protests", Weight: 4},
				{Term: "protesters", Weight: 4},
				{Term: "unrest", Weight: 4},
				{Term: "riot", Weight: 5},
				{Term: "riots", Weight: 5},
				{Term: "demonstration", Weight: 4},
				{Term: "demonstrations", Weight: 4},
				{Term: "crackdown", Weight: 4},
				{Term: "curfew", Weight: 4},
				{Term: "strike", Weight: 3},
			},
			Excludes: []Weighted{
				{Pattern: "(?:air|missile|drone) strikes?", Weight: 5},
			},
		},
		{
			Category: domain.CategoryDiplomacy,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "peace talks", Weight: 6},
				{Pattern: "state visit", Weight: 5},
				{Pattern: "joint statement", Weight: 4},
				{Pattern: "bilateral (?:talks|meeting)", Weight: 5},
			},
			Keywords: []Keyword{
				{Term: "summit", Weight: 4},
				{Term: "treaty", Weight: 5},
				{Term: "ambassador", Weight: 4},
				{Term: "negotiations", Weight: 4},
				{Term: "diplomatic", Weight: 4},
				{Term: "envoy", Weight: 4},
				{Term: "accord", Weight: 4},
				{Term: "mediation", Weight: 4},
			},
		},
		{
			Category: domain.CategoryElections,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "presidential election", Weight: 6},
				{Pattern: "exit polls?", Weight: 5},
				{Pattern: "snap elections?", Weight: 6},
			},
			Keywords: []Keyword{
				{Term: "election", Weight: 5},
				{Term: "elections", Weight: 5},
				{Term: "ballot", Weight: 4},
				{Term: "referendum", Weight: 5},
				{Term: "parliament", Weight: 4},
				{Term: "impeachment", Weight: 5},
				{Term: "runoff", Weight: 4},
				{Term: "voters", Weight: 3},
			},
		},
		{
			Category: domain.CategoryHumanitarian,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "aid convoys?", Weight: 6},
				{Pattern: "food insecurity", Weight: 6},
				{Pattern: "humanitarian (?:corridor|crisis|aid)", Weight: 6},
			},
			Keywords: []Keyword{
				{Term: "famine", Weight: 6},
				{Term: "malnutrition", Weight: 5},
				{Term: "displacement", Weight: 4},
				{Term: "displaced", Weight: 4},
				{Term: "unicef", Weight: 4},
				{Term: "evacuation", Weight: 4},
				{Term: "aid", Weight: 3},
			},
		},
		{
			Category: domain.CategoryDisasterClimate,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "state of emergency", Weight: 5},
				{Pattern: "flash floods?", Weight: 6},
			},
			Keywords: []Keyword{
				{Term: "earthquake", Weight: 6},
				{Term: "flood", Weight: 5},
				{Term: "floods", Weight: 5},
				{Term: "flooding", Weight: 5},
				{Term: "wildfire", Weight: 6},
				{Term: "wildfires", Weight: 6},
				{Term: "hurricane", Weight: 6},
				{Term: "cyclone", Weight: 6},
				{Term: "typhoon", Weight: 6},
				{Term: "drought", Weight: 5},
				{Term: "landslide", Weight: 5},
				{Term: "eruption", Weight: 5},
				{Term: "heatwave", Weight: 5},
			},
		},
		{
			Category: domain.CategoryHealth,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "disease outbreak", Weight: 6},
				{Pattern: "public health emergency", Weight: 6},
			},
			Keywords: []Keyword{
				{Term: "epidemic", Weight: 6},
				{Term: "pandemic", Weight: 6},
				{Term: "cholera", Weight: 6},
				{Term: "ebola", Weight: 6},
				{Term: "outbreak", Weight: 4},
				{Term: "quarantine", Weight: 5},
				{Term: "vaccine", Weight: 4},
				{Term: "virus", Weight: 4},
			},
		},
		{
			Category: domain.CategoryMigration,
			Cap:      28,
			Phrases: []Weighted{
				{Pattern: "asylum seekers?", Weight: 6},
				{Pattern: "border crossings?", Weight: 5},
			},
			Keywords: []Keyword{
				{Term: "migrants", Weight: 5},
				{Term: "migration", Weight: 4},
				{Term: "asylum", Weight: 5},
				{Term: "deportation", Weight: 5},
				{Term: "deportations", Weight: 5},
				{Term: "refugees", Weight: 4},
				{Term: "smugglers", Weight: 4},
				{Term: "resettlement", Weight: 4},
			},
		},
	}
}

// defaultOverrides resolves cross-cutting events that legitimately score
// in several categories (a pipeline attack is both Energy and conflict).
// Checked in priority order; first applicable override wins.
func defaultOverrides() []Override {
	return []Override{
		{
			Category: domain.CategorySecurityConflict,
			re:       regexp.MustCompile(`\b(?:missile|airstrikes?|air\s+strikes?|shelling|artillery|invasion|troops|combat|gunfire|ambush|offensive)\b`),
		},
		{
			Category: domain.CategoryEnergy,
			re:       regexp.MustCompile(`\b(?:pipeline|refinery|substation|power\s+grid|lng|opec|oilfield)\b`),
		},
		{
			Category: domain.CategorySupplyChain,
			re:       regexp.MustCompile(`\b(?:red\s+sea|suez|hormuz|bosphorus|malacca|panama\s+canal|blockade|ports?)\b`),
		},
		{
			Category: domain.CategorySanctions,
			re:       regexp.MustCompile(`\b(?:sanction(?:s|ed)?|embargo|export\s+controls?|ofac|blacklist(?:ed)?)\b`),
		},
	}
}
