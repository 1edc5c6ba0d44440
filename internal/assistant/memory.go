package assistant

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxRecentTopics    = 5
	maxUnresolvedItems = 10
	conceptSnippetLen  = 80
)

// Record applies one turn's analysis to the session's working memory.
// Repeated concepts increment their mention count instead of duplicating;
// repeated preferences are reinforced rather than re-added.
func (m *ShortTermMemory) Record(analysis AnalysisResult, messageText string, now time.Time) {
	if m.MentionedConcepts == nil {
		m.MentionedConcepts = make(map[string]*ConceptMention)
	}
	if m.TemporaryPreferences == nil {
		m.TemporaryPreferences = make(map[string]*TemporaryPreference)
	}

	if analysis.Category != "" {
		m.pushTopic(analysis.Category)
	}

	snippet := snippetOf(messageText)
	for _, keyword := range analysis.Keywords {
		concept := Normalize(keyword)
		if concept == "" {
			continue
		}
		if existing, ok := m.MentionedConcepts[concept]; ok {
			existing.MentionCount++
			existing.LastContext = snippet
			if analysis.UserLevel != "" {
				existing.Understanding = analysis.UserLevel
			}
			continue
		}
		m.MentionedConcepts[concept] = &ConceptMention{
			Category:      analysis.Category,
			FirstSeen:     now,
			MentionCount:  1,
			LastContext:   snippet,
			Understanding: analysis.UserLevel,
		}
	}

	if analysis.Category != "" {
		m.reinforcePreference("preferred_category", analysis.Category, analysis.Confidence, now)
	}
	if analysis.UserLevel != "" {
		m.reinforcePreference("explanation_level", analysis.UserLevel, analysis.Confidence, now)
	}

	// Low-confidence questions are parked as unresolved for a human follow-up.
	if analysis.Urgency == UrgencyHigh || (analysis.Confidence < 0.5 && strings.HasSuffix(strings.TrimSpace(messageText), "?")) {
		if len(m.UnresolvedItems) < maxUnresolvedItems {
			m.UnresolvedItems = append(m.UnresolvedItems, snippet)
		}
	}
}

// pushTopic appends a topic with FIFO eviction past the cap. A duplicate of
// the most recent topic is not re-appended.
func (m *ShortTermMemory) pushTopic(topic string) {
	if n := len(m.RecentTopics); n > 0 && m.RecentTopics[n-1] == topic {
		return
	}
	m.RecentTopics = append(m.RecentTopics, topic)
	if len(m.RecentTopics) > maxRecentTopics {
		m.RecentTopics = m.RecentTopics[len(m.RecentTopics)-maxRecentTopics:]
	}
}

// reinforcePreference nudges an existing preference's confidence up by 0.1
// (capped at 1.0) when the same type recurs, instead of duplicating it.
func (m *ShortTermMemory) reinforcePreference(prefType, value string, confidence float64, now time.Time) {
	if existing, ok := m.TemporaryPreferences[prefType]; ok {
		existing.Value = value
		existing.Confidence = min(existing.Confidence+0.1, 1.0)
		return
	}
	if confidence <= 0 {
		confidence = 0.5
	}
	m.TemporaryPreferences[prefType] = &TemporaryPreference{
		Value:      value,
		Confidence: min(confidence, 1.0),
		DetectedAt: now,
	}
}

// snippetOf truncates on a rune boundary so accented text never leaves a
// split multi-byte sequence in the snippet.
func snippetOf(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= conceptSnippetLen {
		return text
	}
	cut := conceptSnippetLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
