package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/observability/metrics"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

// ErrSessionNotFound reports an operation on a session that was never
// created (or has already expired).
var ErrSessionNotFound = errors.New("assistant: session not found")

// Persistence is the best-effort durable copy of session state. In-memory
// state stays authoritative; persistence errors are logged and swallowed.
type Persistence interface {
	Save(ctx context.Context, session *SessionContext) error
	Delete(ctx context.Context, sessionID string) error
	LoadAll(ctx context.Context) ([]*SessionContext, error)
	Clear(ctx context.Context) error
}

// Archiver receives compacted conversation summaries for long-term recall.
type Archiver interface {
	SaveSummary(ctx context.Context, sessionID, summary string, messageCount int, createdAt time.Time) error
}

// StoreConfig carries the tuning knobs the store consumes at construction.
type StoreConfig struct {
	MaxShortTermMessages int
	RetentionDays        int
	CleanupInterval      time.Duration
	CompressionThreshold int
	LevelConfidenceGate  float64
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.MaxShortTermMessages <= 0 {
		c.MaxShortTermMessages = 50
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 1
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 30 * time.Minute
	}
	if c.CompressionThreshold <= 0 {
		c.CompressionThreshold = 10
	}
	if c.LevelConfidenceGate <= 0 {
		c.LevelConfidenceGate = defaultLevelGate
	}
	return c
}

// ContextStore owns every SessionContext, keyed by session id. All updates to
// the same session are serialized under the store lock.
type ContextStore struct {
	cfg     StoreConfig
	persist Persistence
	archive Archiver
	logger  *logging.Logger
	metrics *metrics.AssistantMetrics
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*SessionContext
}

// NewContextStore creates the store. persist and archive may be nil, which
// disables durability but keeps the conversation fully functional.
func NewContextStore(cfg StoreConfig, persist Persistence, archive Archiver, logger *logging.Logger, m *metrics.AssistantMetrics) *ContextStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContextStore{
		cfg:      cfg.withDefaults(),
		persist:  persist,
		archive:  archive,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*SessionContext),
	}
}

// Hydrate loads persisted sessions into memory. Called once at startup;
// sessions already in memory are not overwritten.
func (s *ContextStore) Hydrate(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	loaded, err := s.persist.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("assistant: failed to hydrate sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range loaded {
		if session == nil || session.SessionID == "" {
			continue
		}
		if _, exists := s.sessions[session.SessionID]; exists {
			continue
		}
		if session.Memory.MentionedConcepts == nil {
			session.Memory.MentionedConcepts = make(map[string]*ConceptMention)
		}
		if session.Memory.TemporaryPreferences == nil {
			session.Memory.TemporaryPreferences = make(map[string]*TemporaryPreference)
		}
		s.sessions[session.SessionID] = session
	}
	s.metrics.SetActiveSessions(len(s.sessions))
	s.logger.Info("hydrated sessions from persistence", "count", len(loaded))
	return nil
}

// Create registers a new session aggregate. Creating an id that already
// exists overwrites it; callers that need duplicate detection check Get first.
func (s *ContextStore) Create(ctx context.Context, sessionID string, seed *UserProfile) (*SessionContext, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("assistant: session id is required")
	}
	now := s.now()

	session := &SessionContext{
		SessionID:       sessionID,
		Messages:        []Message{},
		LastInteraction: now,
		Memory:          newShortTermMemory(),
		Flow: ConversationFlow{
			Stage:           StageGreeting,
			Engagement:      EngagementLow,
			PredictedTopics: defaultNextTopics,
		},
		Metadata: ContextMetadata{StartTime: now},
	}
	if seed != nil {
		session.Profile = *seed
	}

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.metrics.SetActiveSessions(len(s.sessions))
	s.mu.Unlock()

	s.persistBestEffort(ctx, session)
	return s.snapshot(session), nil
}

// Get returns a snapshot of the session aggregate, or ErrSessionNotFound.
func (s *ContextStore) Get(ctx context.Context, sessionID string) (*SessionContext, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.snapshot(session), nil
}

// Exists reports whether a session is currently in memory.
func (s *ContextStore) Exists(sessionID string) bool {
	s.mu.RLock()
	_, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	return ok
}

// Update appends a message and advances the metadata counters. When an
// analysis is supplied the update cascades into the flow tracker, the
// short-term memory and the user profile. Messages past the short-term cap
// are compacted into a lossy summary.
func (s *ContextStore) Update(ctx context.Context, sessionID string, msg Message, analysis *AnalysisResult) error {
	return s.ApplyTurn(ctx, sessionID, msg, analysis, 0)
}

// ApplyTurn is Update gated by an analyzer turn token. A nonzero turnSeq that
// is not newer than the last applied one returns ErrSuperseded without
// mutating the session. The comparison happens under the store lock, so a
// stale analysis can never land after a newer turn has committed.
func (s *ContextStore) ApplyTurn(ctx context.Context, sessionID string, msg Message, analysis *AnalysisResult, turnSeq uint64) error {
	now := s.now()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if turnSeq != 0 {
		if turnSeq <= session.lastTurnSeq {
			s.mu.Unlock()
			return ErrSuperseded
		}
		session.lastTurnSeq = turnSeq
	}

	session.Messages = append(session.Messages, msg)
	session.LastInteraction = now

	meta := &session.Metadata
	meta.MessageCount++
	meta.Duration = now.Sub(meta.StartTime)
	switch msg.Role {
	case RoleUser:
		meta.LastUserMessageAt = msg.Timestamp
	case RoleAssistant:
		if !meta.LastUserMessageAt.IsZero() {
			sample := msg.Timestamp.Sub(meta.LastUserMessageAt)
			if meta.AvgResponseTime == 0 {
				meta.AvgResponseTime = sample
			} else {
				meta.AvgResponseTime = (meta.AvgResponseTime + sample) / 2
			}
		}
	}

	if analysis != nil {
		if analysis.Category != "" && !contains(session.ActiveTopics, analysis.Category) {
			session.ActiveTopics = append(session.ActiveTopics, analysis.Category)
		}
		meta.TopicCount = len(session.ActiveTopics)
		switch analysis.Sentiment {
		case SentimentPositive:
			meta.PositiveTurns++
		case SentimentNegative:
			meta.NegativeTurns++
		}

		session.Flow.Advance(*analysis, meta.MessageCount, meta.TopicCount, len(session.ActiveTopics), now)
		session.Memory.Record(*analysis, msg.Content, now)
		session.Profile.Apply(*analysis, s.cfg.LevelConfidenceGate, now)
	}

	summary, popped := s.compactLocked(session)
	s.mu.Unlock()

	s.archiveBestEffort(ctx, sessionID, summary, popped)
	s.persistBestEffort(ctx, session)
	return nil
}

// compactLocked pops the oldest excess messages and folds them into a short,
// lossy textual summary. The archive write happens after the store lock is
// released, so it only returns what was compacted.
func (s *ContextStore) compactLocked(session *SessionContext) (string, int) {
	if len(session.Messages) <= s.cfg.MaxShortTermMessages {
		return "", 0
	}
	excess := len(session.Messages) - s.cfg.MaxShortTermMessages
	if excess < s.cfg.CompressionThreshold {
		excess = min(s.cfg.CompressionThreshold, len(session.Messages)-1)
	}
	popped := session.Messages[:excess]
	session.Messages = append([]Message{}, session.Messages[excess:]...)

	summary := compactMessages(popped)
	if summary == "" {
		return "", 0
	}
	session.Summaries = append(session.Summaries, summary)
	return summary, len(popped)
}

func (s *ContextStore) archiveBestEffort(ctx context.Context, sessionID, summary string, messageCount int) {
	if s.archive == nil || summary == "" {
		return
	}
	if err := s.archive.SaveSummary(ctx, sessionID, summary, messageCount, s.now()); err != nil {
		s.logger.Warn("failed to archive summary",
			"session_id", sessionID,
			"error", err.Error(),
		)
	}
}

// ClearAll wipes all in-memory and persisted session state. Used for resets,
// not normal operation.
func (s *ContextStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.sessions = make(map[string]*SessionContext)
	s.metrics.SetActiveSessions(0)
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Clear(ctx); err != nil {
			return fmt.Errorf("assistant: failed to clear persisted sessions: %w", err)
		}
	}
	return nil
}

// StartCleanup launches the retention pass on the configured interval. It
// stops when the context is cancelled.
func (s *ContextStore) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RemoveExpired(ctx)
			}
		}
	}()
}

// RemoveExpired deletes sessions whose last interaction is older than the
// retention window, from memory and from persistence.
func (s *ContextStore) RemoveExpired(ctx context.Context) int {
	cutoff := s.now().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)

	s.mu.Lock()
	var expired []string
	for id, session := range s.sessions {
		if session.LastInteraction.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.metrics.SetActiveSessions(len(s.sessions))
	s.mu.Unlock()

	for _, id := range expired {
		if s.persist != nil {
			if err := s.persist.Delete(ctx, id); err != nil {
				s.logger.Warn("failed to delete expired session from persistence",
					"session_id", id,
					"error", err.Error(),
				)
			}
		}
	}
	if len(expired) > 0 {
		s.metrics.ObserveExpiredSessions(len(expired))
		s.logger.Info("removed expired sessions", "count", len(expired))
	}
	return len(expired)
}

// Count returns the number of sessions currently in memory.
func (s *ContextStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ContextStore) persistBestEffort(ctx context.Context, session *SessionContext) {
	if s.persist == nil {
		return
	}
	snap := s.snapshot(session)
	if err := s.persist.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to persist session, memory remains authoritative",
			"session_id", snap.SessionID,
			"error", err.Error(),
		)
	}
}

// snapshot deep-copies a session so callers never share mutable state with
// the store.
func (s *ContextStore) snapshot(session *SessionContext) *SessionContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSession(session)
}

func cloneSession(session *SessionContext) *SessionContext {
	out := *session
	out.Messages = append([]Message{}, session.Messages...)
	out.ActiveTopics = append([]string{}, session.ActiveTopics...)
	out.Summaries = append([]string{}, session.Summaries...)
	out.Profile.Interests = append([]string{}, session.Profile.Interests...)
	out.Profile.PreferredCategories = append([]string{}, session.Profile.PreferredCategories...)
	out.Flow.Transitions = append([]TopicTransition{}, session.Flow.Transitions...)
	out.Flow.PredictedTopics = append([]string{}, session.Flow.PredictedTopics...)
	out.Memory.RecentTopics = append([]string{}, session.Memory.RecentTopics...)
	out.Memory.UnresolvedItems = append([]string{}, session.Memory.UnresolvedItems...)
	out.Memory.MentionedConcepts = make(map[string]*ConceptMention, len(session.Memory.MentionedConcepts))
	for k, v := range session.Memory.MentionedConcepts {
		c := *v
		out.Memory.MentionedConcepts[k] = &c
	}
	out.Memory.TemporaryPreferences = make(map[string]*TemporaryPreference, len(session.Memory.TemporaryPreferences))
	for k, v := range session.Memory.TemporaryPreferences {
		p := *v
		out.Memory.TemporaryPreferences[k] = &p
	}
	return &out
}

// compactMessages reduces dropped messages to their most frequent long words.
func compactMessages(msgs []Message) string {
	freq := make(map[string]int)
	for _, msg := range msgs {
		for _, word := range strings.Fields(Normalize(msg.Content)) {
			if len(word) > 4 {
				freq[word]++
			}
		}
	}
	if len(freq) == 0 {
		return ""
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
