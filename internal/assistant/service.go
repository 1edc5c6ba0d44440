package assistant

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/observability/metrics"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

// Reply sources, used for logging and metrics.
const (
	ReplySourceTemplate   = "template"
	ReplySourceGenerative = "generative"
	ReplySourceDefault    = "default"
)

// Reply is what one turn hands back to the kiosk frontend. Text is plain;
// stripping symbols for speech synthesis is the frontend's job.
type Reply struct {
	SessionID  string         `json:"session_id"`
	MessageID  string         `json:"message_id"`
	Text       string         `json:"text"`
	Source     string         `json:"source"`
	Analysis   AnalysisResult `json:"analysis"`
	Stage      string         `json:"stage"`
	Engagement string         `json:"engagement"`
}

// Service ties the analysis adapter, the context store and the reply
// selection together. One instance serves every kiosk session.
type Service struct {
	store     *ContextStore
	analyzer  *Analyzer
	sentiment *SentimentAnalyzer
	matcher   *Matcher
	replyLLM  LLMClient
	logger    *logging.Logger
	metrics   *metrics.AssistantMetrics
}

// NewService wires the conversation pipeline. replyLLM may be nil; the
// assistant then answers only from the template catalog and defaults.
func NewService(store *ContextStore, analyzer *Analyzer, sentiment *SentimentAnalyzer, matcher *Matcher, replyLLM LLMClient, logger *logging.Logger, m *metrics.AssistantMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		analyzer:  analyzer,
		sentiment: sentiment,
		matcher:   matcher,
		replyLLM:  replyLLM,
		logger:    logger,
		metrics:   m,
	}
}

// Store exposes the underlying context store for read-only surfaces.
func (s *Service) Store() *ContextStore {
	return s.store
}

// HandleUtterance runs one full turn: ensure the session exists, analyze the
// utterance, update the session aggregate, choose a reply and record it.
// Every path produces a reply; only a superseded analysis or a store
// contract violation returns an error.
func (s *Service) HandleUtterance(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{
			SessionID: sessionID,
			Text:      DefaultResponse(),
			Source:    ReplySourceDefault,
		}, nil
	}

	if !s.store.Exists(sessionID) {
		if _, err := s.store.Create(ctx, sessionID, nil); err != nil {
			return Reply{}, err
		}
	}
	sctx, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	analysis, turnSeq, err := s.analyzer.AnalyzeQuery(ctx, sessionID, text, sctx)
	if err != nil {
		// Superseded by a newer utterance; this turn is abandoned.
		return Reply{}, err
	}

	// The cached sentiment reading sharpens the fallback analysis, which is
	// always neutral on its own.
	record := s.sentiment.Analyze(ctx, text, sessionID)
	if analysis.Intent == fallbackIntent && analysis.Sentiment == SentimentNeutral {
		analysis.Sentiment = record.Sentiment
	}

	// The turn token lets the store reject an analysis that completed after a
	// newer turn for the same session already committed.
	userMsg := Message{ID: uuid.NewString(), Role: RoleUser, Content: text}
	if err := s.store.ApplyTurn(ctx, sessionID, userMsg, &analysis, turnSeq); err != nil {
		return Reply{}, err
	}

	replyText, source := s.chooseReply(ctx, sessionID, text)

	assistantMsg := Message{ID: uuid.NewString(), Role: RoleAssistant, Content: replyText}
	if err := s.store.Update(ctx, sessionID, assistantMsg, nil); err != nil {
		return Reply{}, err
	}

	updated, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	s.metrics.ObserveTurn(source)
	s.logger.Info("turn completed",
		"session_id", sessionID,
		"source", source,
		"intent", analysis.Intent,
		"sentiment", analysis.Sentiment,
		"stage", updated.Flow.Stage,
	)

	return Reply{
		SessionID:  sessionID,
		MessageID:  assistantMsg.ID,
		Text:       replyText,
		Source:     source,
		Analysis:   analysis,
		Stage:      updated.Flow.Stage,
		Engagement: updated.Flow.Engagement,
	}, nil
}

// chooseReply prefers a canned template match, then the generative model,
// then a random default. The generative path reads the already-updated
// session so the reply reflects this turn's analysis.
func (s *Service) chooseReply(ctx context.Context, sessionID, text string) (string, string) {
	if match, ok := s.matcher.Match(text); ok {
		return match.PickResponse(), ReplySourceTemplate
	}
	if s.replyLLM == nil {
		return DefaultResponse(), ReplySourceDefault
	}

	sctx, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return DefaultResponse(), ReplySourceDefault
	}

	// The session already holds this turn's user message at the tail.
	messages := recentChatMessages(sctx, 8)
	resp, err := s.replyLLM.Complete(ctx, LLMRequest{
		System:      []string{replySystemPrompt, replyContextPrompt(sctx)},
		Messages:    messages,
		MaxTokens:   250,
		Temperature: 0.7,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			s.logger.Warn("generative reply failed, using default",
				"session_id", sessionID,
				"error", err.Error(),
			)
		}
		return DefaultResponse(), ReplySourceDefault
	}
	return strings.TrimSpace(resp.Text), ReplySourceGenerative
}

// recentChatMessages converts the tail of the session transcript for the
// reply call.
func recentChatMessages(sctx *SessionContext, limit int) []ChatMessage {
	msgs := sctx.Messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := ChatRoleUser
		if m.Role == RoleAssistant {
			role = ChatRoleAssistant
		}
		out = append(out, ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
