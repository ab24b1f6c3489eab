// Package classify contains the collaboration classification core: the
// deterministic rule engine, the orchestrator that decides when to
// escalate to the AI classifier, and the batch-wide partner normalizer.
package classify

import (
	"regexp"
	"strings"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

// Confidence levels produced by the rule path. The values are part of
// the classification contract: reports and reclassification runs
// depend on them being stable.
const (
	// ConfidenceResolved is assigned when a trigger keyword matched and
	// a partner name was extracted.
	ConfidenceResolved = 0.85
	// ConfidenceAmbiguous signals a trigger keyword without an
	// extractable partner; always below the escalation threshold.
	ConfidenceAmbiguous = 0.4
	// ConfidenceNegative is assigned when no trigger keyword is
	// present at all. Absence of any collaboration signal is itself a
	// confident negative.
	ConfidenceNegative = 0.9
	// ConfidenceFallback marks collaboration-positive videos the AI
	// classifier could not confirm (call failed or unavailable).
	ConfidenceFallback = 0.3
)

// Engine is the deterministic rule-based classifier. It is a pure
// function of the input text and the injected rule tables; it makes no
// external calls and keeps no mutable state.
type Engine struct {
	rules    *config.Rules
	patterns []*regexp.Regexp
}

// NewEngine compiles the partner-extraction patterns. The pattern list
// is an extraction-priority contract: patterns are tried top to bottom
// and the first match wins, so the order must not be reshuffled.
func NewEngine(rules *config.Rules) *Engine {
	product := rules.ProductNamePattern()
	return &Engine{
		rules: rules,
		patterns: []*regexp.Regexp{
			// "PRODUCT x Partner", "x Partner - ...", "× Partner event"
			regexp.MustCompile(`(?i)(?:` + product + `\s*)?[x×]\s*([A-Za-z0-9\s\-']+?)(?:\s*[-–|:]|\s*collab|\s*event|\s*update|$)`),
			// "with Partner", "featuring Partner", "feat. Partner"
			regexp.MustCompile(`(?i)(?:with|featuring|feat\.?|ft\.?)\s+([A-Za-z0-9\s\-']+?)(?:\s*[-–|:]|\s*!|$)`),
			// "[Partner] collab/event/crossover"
			regexp.MustCompile(`(?i)\[([A-Za-z0-9\s\-']+?)\]\s*(?:collab|event|crossover)`),
			// Partner adjacent to a Korean/Japanese collaboration marker
			regexp.MustCompile(`(?i)([A-Za-z0-9\s\-']+?)\s*(?:콜라보|コラボ)`),
		},
	}
}

// Classify attempts a rule-based collaboration classification from
// title and description alone.
//
// Returns nil when no trigger keyword is present: the engine defers
// entirely rather than asserting a negative. When a trigger keyword is
// present the result is always collaboration-positive, at confidence
// ConfidenceResolved if a partner was extracted and ConfidenceAmbiguous
// otherwise.
func (e *Engine) Classify(title, description string) *model.Classification {
	text := strings.ToLower(title + " " + description)

	if !e.hasTrigger(text) {
		return nil
	}

	partner := e.extractPartner(title)

	if partner != "" {
		if canonical, ok := e.rules.CanonicalPartner(partner); ok {
			partner = canonical
		}
		return &model.Classification{
			IsCollab:    true,
			PartnerName: &partner,
			Category:    e.guessCategory(partner, text),
			Region:      e.guessRegion(text),
			Summary:     "Collaboration with " + partner,
			Confidence:  ConfidenceResolved,
		}
	}

	// Trigger keyword present but no partner extracted.
	return &model.Classification{
		IsCollab:   true,
		Category:   model.CategoryOther,
		Region:     model.RegionUnknown,
		Summary:    "Potential collaboration (partner unidentified)",
		Confidence: ConfidenceAmbiguous,
	}
}

func (e *Engine) hasTrigger(text string) bool {
	for _, kw := range e.rules.CollabKeywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// extractPartner tries the patterns against the title in priority
// order. A pattern whose captured candidate is a stopword does not
// short-circuit the search; the next pattern still gets a chance.
func (e *Engine) extractPartner(title string) string {
	for _, p := range e.patterns {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if candidate == "" || e.rules.IsStopword(candidate) {
			continue
		}
		return candidate
	}
	return ""
}
