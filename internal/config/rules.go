package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules holds the static classification tables: collaboration trigger
// keywords, partner aliases, category and region keyword groups, and
// the escalation threshold. Loaded once at startup and treated as
// immutable; every component receives it by injection so tests can
// substitute alternate tables.
type Rules struct {
	// ProductName is the channel's own product ("pubg mobile"). It is
	// both a partner-extraction stopword and the optional prefix of the
	// "X × Partner" title pattern.
	ProductName string `yaml:"product_name"`

	// CollabKeywords gate classification: if none is a substring of the
	// case-folded title+description, the rule engine defers entirely.
	CollabKeywords []string `yaml:"collab_keywords"`

	// Stopwords are candidate partner names that are never partners.
	Stopwords []string `yaml:"stopwords"`

	// PartnerAliases map surface forms to canonical partner names.
	// Order matters: the first alias that matches wins.
	PartnerAliases []Alias `yaml:"partner_aliases"`

	// CategoryPartners are ordered partner-name keyword groups tried
	// top to bottom when guessing a category.
	CategoryPartners []KeywordGroup `yaml:"category_partners"`

	// CategoryHints are ordered text-content keyword groups used when
	// no partner group matched.
	CategoryHints []KeywordGroup `yaml:"category_hints"`

	// RegionKeywords are ordered region keyword groups; no match means
	// Global.
	RegionKeywords []KeywordGroup `yaml:"region_keywords"`

	// GPTThreshold is the rule-engine confidence below which a
	// collaboration-positive result escalates to the AI classifier.
	GPTThreshold float64 `yaml:"gpt_threshold"`
}

// Alias is one surface-form → canonical-name mapping.
type Alias struct {
	Alias     string `yaml:"alias"`
	Canonical string `yaml:"canonical"`
}

// KeywordGroup labels an ordered keyword list with the category or
// region it resolves to.
type KeywordGroup struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// CanonicalPartner resolves a free-text partner name against the alias
// table using a case-insensitive bidirectional containment check
// (alias-in-candidate or candidate-in-alias). The first matching alias
// in table order wins. Returns the canonical name and whether any
// alias matched.
func (r *Rules) CanonicalPartner(name string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", false
	}
	for _, a := range r.PartnerAliases {
		if strings.Contains(normalized, a.Alias) || strings.Contains(a.Alias, normalized) {
			return a.Canonical, true
		}
	}
	return "", false
}

// IsStopword reports whether a candidate partner name is filtered out.
func (r *Rules) IsStopword(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, sw := range r.Stopwords {
		if lower == sw {
			return true
		}
	}
	return false
}

// ProductNamePattern returns a regexp fragment matching the product
// name with flexible whitespace ("pubg mobile" → `pubg\s*mobile`).
func (r *Rules) ProductNamePattern() string {
	fields := strings.Fields(strings.ToLower(r.ProductName))
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `\s*`)
}

// DefaultRules returns the built-in tables for the PUBG MOBILE channel.
func DefaultRules() *Rules {
	return &Rules{
		ProductName: "pubg mobile",
		CollabKeywords: []string{
			"collab", "collaboration", "x ", " x ", "×", "콜라보", "コラボ",
			"with ", "featuring", "feat.", "ft.", "crossover", "partnership",
			"limited", "exclusive", "special",
		},
		Stopwords: []string{"pubg", "mobile", "pubg mobile", "the", "a", "an"},
		PartnerAliases: []Alias{
			{"black pink", "BLACKPINK"},
			{"blackpink", "BLACKPINK"},
			{"블랙핑크", "BLACKPINK"},
			{"newjeans", "NewJeans"},
			{"new jeans", "NewJeans"},
			{"뉴진스", "NewJeans"},
			{"lamborghini", "Lamborghini"},
			{"mclaren", "McLaren"},
			{"bugatti", "Bugatti"},
			{"koenigsegg", "Koenigsegg"},
			{"jujutsu kaisen", "Jujutsu Kaisen"},
			{"주술회전", "Jujutsu Kaisen"},
			{"dragon ball", "Dragon Ball"},
			{"dragonball", "Dragon Ball"},
			{"드래곤볼", "Dragon Ball"},
			{"neon genesis evangelion", "Evangelion"},
			{"evangelion", "Evangelion"},
			{"에반게리온", "Evangelion"},
			{"attack on titan", "Attack on Titan"},
			{"진격의 거인", "Attack on Titan"},
			{"arcane", "Arcane"},
			{"아케인", "Arcane"},
			{"the boys", "The Boys"},
			{"godzilla", "Godzilla"},
			{"고질라", "Godzilla"},
			{"kong", "Kong"},
			{"walking dead", "The Walking Dead"},
			{"워킹데드", "The Walking Dead"},
			{"resident evil", "Resident Evil"},
			{"레지던트 이블", "Resident Evil"},
			{"metro", "Metro Exodus"},
			{"alan walker", "Alan Walker"},
			{"앨런 워커", "Alan Walker"},
		},
		CategoryPartners: []KeywordGroup{
			{"Anime", []string{
				"dragon ball", "jujutsu kaisen", "evangelion", "attack on titan",
				"naruto", "one piece", "demon slayer", "spy x family",
			}},
			{"Game", []string{
				"resident evil", "metro", "assassin", "tomb raider", "league of legends",
				"valorant", "fortnite", "call of duty", "apex",
			}},
			{"Movie", []string{
				"godzilla", "kong", "arcane", "the boys", "walking dead",
				"dune", "matrix", "john wick", "transformers",
			}},
			{"Artist", []string{
				"blackpink", "newjeans", "bts", "alan walker", "marshmello",
				"dj", "band", "singer",
			}},
			{"Brand", []string{
				"lamborghini", "mclaren", "bugatti", "koenigsegg", "aston martin",
				"ferrari", "porsche", "bmw", "mercedes", "audi",
				"nike", "adidas", "puma", "supreme",
			}},
		},
		CategoryHints: []KeywordGroup{
			{"Anime", []string{"anime", "manga", "アニメ", "漫画"}},
			{"Movie", []string{"movie", "film", "series", "tv show", "영화", "드라마"}},
			{"Artist", []string{"artist", "singer", "band", "music", "concert"}},
		},
		RegionKeywords: []KeywordGroup{
			{"KR", []string{"korea", "korean", "한국", "한글", "kr server"}},
			{"JP", []string{"japan", "japanese", "日本", "日本語", "jp server"}},
			{"NA", []string{"north america", "usa", "us server", "na server"}},
			{"EU", []string{"europe", "european", "eu server"}},
			{"SEA", []string{"southeast asia", "sea server", "indonesia", "thailand", "vietnam", "philippines"}},
			{"LATAM", []string{"latin america", "latam", "brazil", "mexico", "spanish"}},
			{"MENA", []string{"middle east", "mena", "arabic", "arab"}},
		},
		GPTThreshold: 0.5,
	}
}

// LoadRules returns the default tables, overridden section-by-section
// from a YAML file when path is non-empty. A section present in the
// file replaces the default wholesale; absent sections keep defaults.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if override.ProductName != "" {
		rules.ProductName = override.ProductName
	}
	if len(override.CollabKeywords) > 0 {
		rules.CollabKeywords = override.CollabKeywords
	}
	if len(override.Stopwords) > 0 {
		rules.Stopwords = override.Stopwords
	}
	if len(override.PartnerAliases) > 0 {
		rules.PartnerAliases = override.PartnerAliases
	}
	if len(override.CategoryPartners) > 0 {
		rules.CategoryPartners = override.CategoryPartners
	}
	if len(override.CategoryHints) > 0 {
		rules.CategoryHints = override.CategoryHints
	}
	if len(override.RegionKeywords) > 0 {
		rules.RegionKeywords = override.RegionKeywords
	}
	if override.GPTThreshold > 0 {
		rules.GPTThreshold = override.GPTThreshold
	}

	// Alias surface forms are matched lowercase.
	for i := range rules.PartnerAliases {
		rules.PartnerAliases[i].Alias = strings.ToLower(rules.PartnerAliases[i].Alias)
	}

	return rules, nil
}
