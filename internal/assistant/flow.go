package assistant

import (
	"time"
)

// Engagement score thresholds, exposed so tests can exercise the boundaries.
const (
	EngagementHighThreshold   = 3
	EngagementMediumThreshold = 1
)

// nextTopicTable predicts likely follow-up topics from the current one.
var nextTopicTable = map[string][]string{
	CategorySocial:        {CategoryProgramming, CategoryInstitutional},
	CategoryProgramming:   {CategoryCourses, CategoryProjects},
	CategoryInstitutional: {CategoryEnrollment, CategorySchedules},
	CategoryCourses:       {CategoryEnrollment, CategoryProgramming},
	CategoryEnrollment:    {CategorySchedules, CategoryCourses},
	CategorySchedules:     {CategoryEnrollment, CategoryInstitutional},
	CategoryProjects:      {CategoryCourses, CategoryProgramming},
}

var defaultNextTopics = []string{CategoryProgramming, CategoryInstitutional}

// StageFor derives the conversation stage from raw counters. It is a
// memoryless classification recomputed each turn, so the stage can move in
// either direction as the counters change.
func StageFor(messageCount, topicCount int) string {
	switch {
	case messageCount <= 2:
		return StageGreeting
	case messageCount > 10:
		return StageConclusion
	case topicCount <= 2:
		return StageExploration
	default:
		return StageDeepDive
	}
}

// EngagementScore builds the additive heuristic score approximating how
// interested the visitor is.
func EngagementScore(sentiment string, confidence float64, messageCount, activeTopics int) int {
	score := 0
	switch sentiment {
	case SentimentPositive:
		score += 2
	case SentimentNegative:
		score--
	}
	if confidence > 0.8 {
		score++
	}
	if confidence < 0.5 {
		score--
	}
	if messageCount > 5 {
		score++
	}
	if activeTopics > 2 {
		score++
	}
	return score
}

// EngagementLevel maps a score to the coarse low/medium/high label.
func EngagementLevel(score int) string {
	switch {
	case score >= EngagementHighThreshold:
		return EngagementHigh
	case score >= EngagementMediumThreshold:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

// PredictNextTopics looks up likely next topics for the current one, with a
// generic default pair for unrecognized topics.
func PredictNextTopics(topic string) []string {
	if next, ok := nextTopicTable[topic]; ok {
		return next
	}
	return defaultNextTopics
}

// Advance applies one turn's analysis to the flow. A transition is appended
// only when the inferred topic differs from the current one.
func (f *ConversationFlow) Advance(analysis AnalysisResult, messageCount, topicCount, activeTopics int, now time.Time) {
	if analysis.Category != "" && analysis.Category != f.CurrentTopic {
		if f.CurrentTopic != "" {
			f.Transitions = append(f.Transitions, TopicTransition{
				From:       f.CurrentTopic,
				To:         analysis.Category,
				Timestamp:  now,
				Reason:     analysis.Intent,
				Confidence: analysis.Confidence,
			})
		}
		f.CurrentTopic = analysis.Category
	}

	f.Stage = StageFor(messageCount, topicCount)
	f.Engagement = EngagementLevel(EngagementScore(analysis.Sentiment, analysis.Confidence, messageCount, activeTopics))
	f.PredictedTopics = PredictNextTopics(f.CurrentTopic)
}
