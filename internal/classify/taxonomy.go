package classify

import (
	"strings"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

// guessCategory resolves a category for an extracted partner. Partner
// keyword groups are tried first in table order, then text-content
// hints; IP is the default for recognized partners without a more
// specific group.
func (e *Engine) guessCategory(partner, text string) string {
	partnerLower := strings.ToLower(partner)

	for _, group := range e.rules.CategoryPartners {
		for _, kw := range group.Keywords {
			if strings.Contains(partnerLower, kw) {
				return group.Label
			}
		}
	}

	for _, group := range e.rules.CategoryHints {
		for _, kw := range group.Keywords {
			if strings.Contains(text, kw) {
				return group.Label
			}
		}
	}

	return model.CategoryIP
}

// guessRegion resolves a region from text content; region groups are
// tried in table order and Global is the default.
func (e *Engine) guessRegion(text string) string {
	for _, group := range e.rules.RegionKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(text, kw) {
				return group.Label
			}
		}
	}
	return model.RegionGlobal
}
