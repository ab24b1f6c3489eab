package model

// Method identifies how a video's classification was produced. It is a
// closed set; the orchestrator switches over it exhaustively.
type Method string

const (
	// MethodUnclassified marks a video that has never been classified.
	MethodUnclassified Method = ""
	// MethodRule means the rule engine's answer was trusted outright.
	MethodRule Method = "rule"
	// MethodGPT means the AI classifier produced the final answer.
	MethodGPT Method = "gpt"
	// MethodRuleFallback means the AI call failed after retries and the
	// low-confidence positive fallback was applied.
	MethodRuleFallback Method = "rule_fallback"
	// MethodRuleLowConf means the AI classifier was not configured and
	// the low-confidence rule result was kept.
	MethodRuleLowConf Method = "rule_low_conf"
)

// Valid reports whether m is one of the known method tags.
func (m Method) Valid() bool {
	switch m {
	case MethodUnclassified, MethodRule, MethodGPT, MethodRuleFallback, MethodRuleLowConf:
		return true
	}
	return false
}

// Collaboration categories.
const (
	CategoryIP     = "IP"
	CategoryBrand  = "Brand"
	CategoryArtist = "Artist"
	CategoryGame   = "Game"
	CategoryAnime  = "Anime"
	CategoryMovie  = "Movie"
	CategoryOther  = "Other"
)

// Collaboration regions.
const (
	RegionGlobal  = "Global"
	RegionKR      = "KR"
	RegionJP      = "JP"
	RegionNA      = "NA"
	RegionEU      = "EU"
	RegionSEA     = "SEA"
	RegionLATAM   = "LATAM"
	RegionMENA    = "MENA"
	RegionOther   = "Other"
	RegionUnknown = "Unknown"
)

// Categories lists the closed category enumeration.
var Categories = []string{
	CategoryIP, CategoryBrand, CategoryArtist, CategoryGame,
	CategoryAnime, CategoryMovie, CategoryOther,
}

// Regions lists the closed region enumeration.
var Regions = []string{
	RegionGlobal, RegionKR, RegionJP, RegionNA, RegionEU,
	RegionSEA, RegionLATAM, RegionMENA, RegionOther, RegionUnknown,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidRegion reports whether r is a known region.
func ValidRegion(r string) bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

// Classification is the transient output of the rule engine or the AI
// classifier. It is produced fresh per input and never persisted
// directly; the orchestrator copies it onto a Video.
type Classification struct {
	IsCollab    bool
	PartnerName *string
	Category    string
	Region      string
	Summary     string
	Confidence  float64
}

// StrPtr is a convenience for building nullable string fields.
func StrPtr(s string) *string {
	return &s
}
