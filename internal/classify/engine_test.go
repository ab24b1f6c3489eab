package classify

import (
	"testing"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
)

func TestClassifyResolvesPartner(t *testing.T) {
	engine := NewEngine(config.DefaultRules())

	tests := []struct {
		name         string
		title        string
		description  string
		wantPartner  string
		wantCategory string
		wantRegion   string
	}{
		{
			name:         "x pattern with alias",
			title:        "PUBG MOBILE x BLACKPINK Concert Event",
			wantPartner:  "BLACKPINK",
			wantCategory: "Artist",
			wantRegion:   "Global",
		},
		{
			name:         "multiplication sign and region hint",
			title:        "PUBG MOBILE × Jujutsu Kaisen",
			description:  "New outfits available on the Korea server this week.",
			wantPartner:  "Jujutsu Kaisen",
			wantCategory: "Anime",
			wantRegion:   "KR",
		},
		{
			name:         "with pattern",
			title:        "Squad up with Alan Walker!",
			wantPartner:  "Alan Walker",
			wantCategory: "Artist",
			wantRegion:   "Global",
		},
		{
			name:         "bracket pattern",
			title:        "[Lamborghini] Collab Trailer",
			description:  "Limited time vehicle skins.",
			wantPartner:  "Lamborghini",
			wantCategory: "Brand",
			wantRegion:   "Global",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Classify(tt.title, tt.description)
			if got == nil {
				t.Fatal("Classify returned nil, want resolved classification")
			}
			if !got.IsCollab {
				t.Error("IsCollab = false, want true")
			}
			if got.PartnerName == nil {
				t.Fatal("PartnerName = nil, want partner")
			}
			if *got.PartnerName != tt.wantPartner {
				t.Errorf("PartnerName = %q, want %q", *got.PartnerName, tt.wantPartner)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Region != tt.wantRegion {
				t.Errorf("Region = %q, want %q", got.Region, tt.wantRegion)
			}
			if got.Confidence != ConfidenceResolved {
				t.Errorf("Confidence = %v, want %v", got.Confidence, ConfidenceResolved)
			}
		})
	}
}

func TestClassifyDefersWithoutTrigger(t *testing.T) {
	engine := NewEngine(config.DefaultRules())

	titles := []string{
		"Version 3.9 Patch Notes",
		"New Royale Pass Season Overview",
		"Pro League Grand Finals Day 2",
	}

	for _, title := range titles {
		if got := engine.Classify(title, ""); got != nil {
			t.Errorf("Classify(%q) = %+v, want nil", title, got)
		}
	}
}

func TestClassifyAmbiguousPositive(t *testing.T) {
	engine := NewEngine(config.DefaultRules())

	// Trigger keyword present but no pattern extracts a partner.
	got := engine.Classify("Something Special Coming Soon!!", "")
	if got == nil {
		t.Fatal("Classify returned nil, want ambiguous positive")
	}
	if !got.IsCollab {
		t.Error("IsCollab = false, want true")
	}
	if got.PartnerName != nil {
		t.Errorf("PartnerName = %q, want nil", *got.PartnerName)
	}
	if got.Confidence != ConfidenceAmbiguous {
		t.Errorf("Confidence = %v, want %v", got.Confidence, ConfidenceAmbiguous)
	}
	if got.Category != "Other" {
		t.Errorf("Category = %q, want Other", got.Category)
	}
	if got.Region != "Unknown" {
		t.Errorf("Region = %q, want Unknown", got.Region)
	}
}

func TestClassifyStopwordCandidateRejected(t *testing.T) {
	engine := NewEngine(config.DefaultRules())

	// The x pattern captures "PUBG", a stopword, so no partner survives
	// and the result drops to the ambiguous confidence tier.
	got := engine.Classify("Ranked Mode x PUBG Collab", "")
	if got == nil {
		t.Fatal("Classify returned nil, want ambiguous positive")
	}
	if got.PartnerName != nil {
		t.Errorf("PartnerName = %q, want nil", *got.PartnerName)
	}
	if got.Confidence != ConfidenceAmbiguous {
		t.Errorf("Confidence = %v, want %v", got.Confidence, ConfidenceAmbiguous)
	}
}

func TestExtractPartnerPatternPriority(t *testing.T) {
	engine := NewEngine(config.DefaultRules())

	// Both the x pattern and the with pattern could match; the x
	// pattern is tried first.
	got := engine.extractPartner("PUBG MOBILE x Godzilla - Team Up with friends")
	if got != "Godzilla" {
		t.Errorf("extractPartner = %q, want %q", got, "Godzilla")
	}
}

func TestGuessCategoryDefaultsToIP(t *testing.T) {
	engine := NewEngine(config.DefaultRules())

	if got := engine.guessCategory("Mystery Partner", "collab event trailer"); got != "IP" {
		t.Errorf("guessCategory = %q, want IP", got)
	}
}
