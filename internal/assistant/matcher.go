package assistant

import (
	"math/rand"
	"strings"
)

const defaultMatchThreshold = 0.3

// ResponseTemplate is one canned reply with the keywords that trigger it.
type ResponseTemplate struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	Keywords  []string `json:"keywords"`
	Responses []string `json:"responses"`
}

// TemplateMatch is the winning template with its normalized overlap score.
type TemplateMatch struct {
	Template ResponseTemplate
	Score    float64
}

// Matcher scores keyword overlap between an utterance and a template catalog.
type Matcher struct {
	catalog   []ResponseTemplate
	threshold float64
}

// NewMatcher builds a matcher over the given catalog. A non-positive
// threshold falls back to the default of 0.3.
func NewMatcher(catalog []ResponseTemplate, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = defaultMatchThreshold
	}
	return &Matcher{catalog: catalog, threshold: threshold}
}

// Match returns the highest-scoring template for the utterance, or false when
// no template scores above the threshold. Ties resolve to catalog order.
func (m *Matcher) Match(input string) (TemplateMatch, bool) {
	normalized := Normalize(input)
	if normalized == "" || len(m.catalog) == 0 {
		return TemplateMatch{}, false
	}
	inputWords := strings.Fields(normalized)

	bestIdx := -1
	bestScore := 0.0
	for i, tpl := range m.catalog {
		score := scoreTemplate(normalized, inputWords, tpl)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestScore <= m.threshold {
		return TemplateMatch{}, false
	}
	return TemplateMatch{Template: m.catalog[bestIdx], Score: bestScore}, true
}

// scoreTemplate implements the overlap heuristic: a whole-keyword substring
// match is worth twice the keyword's word count; otherwise each keyword word
// that is a substring of, or contains, an input word is worth 1. The raw score
// is divided by the template's total keyword word count so templates with many
// keywords do not dominate.
func scoreTemplate(normalized string, inputWords []string, tpl ResponseTemplate) float64 {
	raw := 0.0
	totalWords := 0
	for _, keyword := range tpl.Keywords {
		kw := Normalize(keyword)
		kwWords := strings.Fields(kw)
		totalWords += len(kwWords)
		if kw == "" {
			continue
		}
		if strings.Contains(normalized, kw) {
			raw += float64(2 * len(kwWords))
			continue
		}
		for _, kwWord := range kwWords {
			for _, inWord := range inputWords {
				if strings.Contains(inWord, kwWord) || strings.Contains(kwWord, inWord) {
					raw++
					break
				}
			}
		}
	}
	if totalWords == 0 {
		return 0
	}
	return raw / float64(totalWords)
}

// PickResponse chooses one of the template's responses uniformly at random.
func (tm TemplateMatch) PickResponse() string {
	if len(tm.Template.Responses) == 0 {
		return DefaultResponse()
	}
	return tm.Template.Responses[rand.Intn(len(tm.Template.Responses))]
}

// DefaultResponse returns one of the fixed fallback replies uniformly at random.
func DefaultResponse() string {
	return defaultResponses[rand.Intn(len(defaultResponses))]
}
