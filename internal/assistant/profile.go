package assistant

import (
	"time"
)

const (
	maxInterests           = 10
	maxPreferredCategories = 5
	defaultLevelGate       = 0.8
)

// Apply folds one turn's analysis into the profile. The detected level only
// changes when the analysis confidence exceeds the gate, so a single noisy
// reading does not thrash it.
func (p *UserProfile) Apply(analysis AnalysisResult, levelGate float64, now time.Time) {
	if levelGate <= 0 {
		levelGate = defaultLevelGate
	}

	if analysis.UserLevel != "" && analysis.Confidence > levelGate {
		p.DetectedLevel = analysis.UserLevel
	}
	if analysis.Sentiment != "" {
		p.Sentiment = analysis.Sentiment
	}

	for _, keyword := range analysis.Keywords {
		interest := Normalize(keyword)
		if interest == "" {
			continue
		}
		p.Interests = appendBounded(p.Interests, interest, maxInterests)
	}
	if analysis.Category != "" {
		p.PreferredCategories = appendBounded(p.PreferredCategories, analysis.Category, maxPreferredCategories)
	}

	p.InteractionCount++
	p.LastInteraction = now
}

// appendBounded appends a value keeping the slice de-duplicated and bounded
// to the most recent max entries. A repeated value moves to the end.
func appendBounded(values []string, value string, max int) []string {
	for i, existing := range values {
		if existing == value {
			values = append(values[:i], values[i+1:]...)
			break
		}
	}
	values = append(values, value)
	if len(values) > max {
		values = values[len(values)-max:]
	}
	return values
}
