package assistant

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

const (
	StageGreeting    = "greeting"
	StageExploration = "exploration"
	StageDeepDive    = "deep_dive"
	StageConclusion  = "conclusion"
)

const (
	EngagementLow    = "low"
	EngagementMedium = "medium"
	EngagementHigh   = "high"
)

// Message is one turn fragment inside a session. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AudioRef  string    `json:"audio_ref,omitempty"`
}

// UserProfile accumulates what the assistant has inferred about the visitor.
type UserProfile struct {
	DetectedLevel       string    `json:"detected_level"`
	Sentiment           string    `json:"sentiment"`
	Interests           []string  `json:"interests"`
	PreferredCategories []string  `json:"preferred_categories"`
	InteractionCount    int       `json:"interaction_count"`
	LastInteraction     time.Time `json:"last_interaction"`
}

// AnalysisResult is the structured interpretation of a single utterance.
// Produced fresh per turn; consumed to update the session, never stored alone.
type AnalysisResult struct {
	Intent     string   `json:"intent"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Context    []string `json:"context,omitempty"`
	UserLevel  string   `json:"user_level,omitempty"`
	Urgency    string   `json:"urgency"`
	Keywords   []string `json:"keywords,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// TopicTransition records one topic change inside a conversation.
type TopicTransition struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Timestamp  time.Time `json:"timestamp"`
	Reason     string    `json:"reason"`
	Confidence float64   `json:"confidence"`
}

// ConversationFlow tracks where the conversation is and where it is likely going.
type ConversationFlow struct {
	CurrentTopic    string            `json:"current_topic"`
	Transitions     []TopicTransition `json:"transitions"`
	PredictedTopics []string          `json:"predicted_topics"`
	Stage           string            `json:"stage"`
	Engagement      string            `json:"engagement"`
}

// ConceptMention records one concept the visitor has brought up.
type ConceptMention struct {
	Category      string    `json:"category"`
	FirstSeen     time.Time `json:"first_seen"`
	MentionCount  int       `json:"mention_count"`
	LastContext   string    `json:"last_context"`
	Understanding string    `json:"understanding"`
}

// TemporaryPreference is a session-scoped preference, reinforced on repeats.
type TemporaryPreference struct {
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	DetectedAt time.Time `json:"detected_at"`
}

// ShortTermMemory is the bounded working memory of one session.
type ShortTermMemory struct {
	RecentTopics         []string                        `json:"recent_topics"`
	MentionedConcepts    map[string]*ConceptMention      `json:"mentioned_concepts"`
	TemporaryPreferences map[string]*TemporaryPreference `json:"temporary_preferences"`
	UnresolvedItems      []string                        `json:"unresolved_items"`
}

// ContextMetadata is the per-session counters block.
type ContextMetadata struct {
	StartTime         time.Time     `json:"start_time"`
	Duration          time.Duration `json:"duration"`
	MessageCount      int           `json:"message_count"`
	TopicCount        int           `json:"topic_count"`
	AvgResponseTime   time.Duration `json:"avg_response_time"`
	PositiveTurns     int           `json:"positive_turns"`
	NegativeTurns     int           `json:"negative_turns"`
	LastUserMessageAt time.Time     `json:"last_user_message_at,omitempty"`
}

// SessionContext is the per-conversation aggregate owned by the ContextStore.
type SessionContext struct {
	SessionID       string           `json:"session_id"`
	Messages        []Message        `json:"messages"`
	Profile         UserProfile      `json:"profile"`
	LastInteraction time.Time        `json:"last_interaction"`
	ActiveTopics    []string         `json:"active_topics"`
	Flow            ConversationFlow `json:"flow"`
	Memory          ShortTermMemory  `json:"memory"`
	Summaries       []string         `json:"summaries,omitempty"`
	Metadata        ContextMetadata  `json:"metadata"`

	// lastTurnSeq is the analyzer token of the newest applied turn. It is
	// in-memory ordering state, not persisted.
	lastTurnSeq uint64
}

// SentimentScore is the minimal label+confidence pair from the heuristic classifier.
type SentimentScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SentimentRecord is the richer per-utterance sentiment reading.
type SentimentRecord struct {
	Sentiment  string    `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Emotions   []string  `json:"emotions,omitempty"`
	Intensity  float64   `json:"intensity"`
	Context    string    `json:"context,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	MessageID  string    `json:"message_id,omitempty"`
}

func newShortTermMemory() ShortTermMemory {
	return ShortTermMemory{
		MentionedConcepts:    make(map[string]*ConceptMention),
		TemporaryPreferences: make(map[string]*TemporaryPreference),
	}
}
