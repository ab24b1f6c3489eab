package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalPartner(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		input     string
		want      string
		wantMatch bool
	}{
		// Alias contained in the candidate.
		{"alias in candidate", "BLACKPINK Concert", "BLACKPINK", true},
		// Candidate contained in an alias.
		{"candidate in alias", "jujutsu", "Jujutsu Kaisen", true},
		{"exact korean alias", "블랙핑크", "BLACKPINK", true},
		{"case folded", "DRAGON BALL Super", "Dragon Ball", true},
		{"no match", "Mystery Corp", "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rules.CanonicalPartner(tt.input)
			if ok != tt.wantMatch {
				t.Fatalf("matched = %v, want %v", ok, tt.wantMatch)
			}
			if got != tt.want {
				t.Errorf("canonical = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalPartnerFirstAliasWins(t *testing.T) {
	rules := &Rules{
		PartnerAliases: []Alias{
			{"kong", "Kong"},
			{"king kong", "King Kong"},
		},
	}
	// "king kong" contains both aliases; table order decides.
	got, ok := rules.CanonicalPartner("King Kong")
	if !ok || got != "Kong" {
		t.Errorf("canonical = %q (%v), want Kong by table order", got, ok)
	}
}

func TestIsStopword(t *testing.T) {
	rules := DefaultRules()
	if !rules.IsStopword("PUBG") {
		t.Error("PUBG should be a stopword")
	}
	if !rules.IsStopword("pubg mobile") {
		t.Error("pubg mobile should be a stopword")
	}
	if rules.IsStopword("BLACKPINK") {
		t.Error("BLACKPINK should not be a stopword")
	}
}

func TestProductNamePattern(t *testing.T) {
	rules := &Rules{ProductName: "PUBG Mobile"}
	// Expected: case folded, flexible whitespace.
	if got := rules.ProductNamePattern(); got != `pubg\s*mobile` {
		t.Errorf("pattern = %q, want pubg\\s*mobile", got)
	}
}

func TestLoadRulesOverridesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
product_name: free fire
collab_keywords: ["collab", "crossover"]
partner_aliases:
  - alias: "SON Heung-min"
    canonical: "Son Heung-min"
gpt_threshold: 0.6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	if rules.ProductName != "free fire" {
		t.Errorf("ProductName = %q, want free fire", rules.ProductName)
	}
	if len(rules.CollabKeywords) != 2 {
		t.Errorf("CollabKeywords = %v, want the 2 overridden entries", rules.CollabKeywords)
	}
	if rules.GPTThreshold != 0.6 {
		t.Errorf("GPTThreshold = %v, want 0.6", rules.GPTThreshold)
	}

	// Alias surface forms are folded to lowercase on load.
	got, ok := rules.CanonicalPartner("son heung-min interview")
	if !ok || got != "Son Heung-min" {
		t.Errorf("canonical = %q (%v), want Son Heung-min", got, ok)
	}

	// Sections absent from the file keep their defaults.
	if len(rules.Stopwords) == 0 || len(rules.RegionKeywords) == 0 {
		t.Error("absent sections should keep defaults")
	}
}

func TestLoadRulesEmptyPathKeepsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.ProductName != "pubg mobile" || rules.GPTThreshold != 0.5 {
		t.Errorf("defaults not preserved: %q / %v", rules.ProductName, rules.GPTThreshold)
	}
}
