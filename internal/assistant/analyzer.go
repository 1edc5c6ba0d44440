package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/observability/metrics"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

// ErrSuperseded reports that a newer analysis for the same session started
// while this one was in flight. The stale result must not be applied.
var ErrSuperseded = errors.New("assistant: analysis superseded by a newer request")

const fallbackIntent = "general_inquiry"

var jsonBlockRE = regexp.MustCompile(`(?s)\{.*\}`)

// Analyzer wraps the generative model call that interprets an utterance.
// Failures never propagate: they degrade to a fallback analysis so the
// conversation keeps flowing.
type Analyzer struct {
	client  LLMClient
	logger  *logging.Logger
	metrics *metrics.AssistantMetrics

	mu       sync.Mutex
	inflight map[string]*inflightAnalysis
	latest   map[string]uint64
	seq      uint64
}

type inflightAnalysis struct {
	cancel context.CancelFunc
	seq    uint64
}

// NewAnalyzer creates the analysis adapter. A nil client means every turn
// takes the fallback path, which is a legal degraded mode.
func NewAnalyzer(client LLMClient, logger *logging.Logger, m *metrics.AssistantMetrics) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Analyzer{
		client:   client,
		logger:   logger,
		metrics:  m,
		inflight: make(map[string]*inflightAnalysis),
		latest:   make(map[string]uint64),
	}
}

// AnalyzeQuery interprets an utterance in the context of its session. A new
// call for the same session cancels any in-flight one; the superseded call
// returns ErrSuperseded and its result must be discarded. All other failures
// produce the fallback analysis with a nil error.
//
// The returned turn token orders commits: pass it to the store's ApplyTurn so
// a result that raced with a newer call is rejected at apply time too, not
// just while the model call was in flight.
func (a *Analyzer) AnalyzeQuery(ctx context.Context, sessionID, text string, sctx *SessionContext) (AnalysisResult, uint64, error) {
	callCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.seq++
	mySeq := a.seq
	a.latest[sessionID] = mySeq
	if prev, ok := a.inflight[sessionID]; ok {
		prev.cancel()
	}
	a.inflight[sessionID] = &inflightAnalysis{cancel: cancel, seq: mySeq}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		if cur, ok := a.inflight[sessionID]; ok && cur.seq == mySeq {
			delete(a.inflight, sessionID)
		}
		a.mu.Unlock()
		cancel()
	}()

	if a.client == nil {
		return fallbackAnalysis(text), mySeq, nil
	}

	start := time.Now()
	resp, err := a.client.Complete(callCtx, LLMRequest{
		System:      nil,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: renderAnalysisPrompt(text, sctx)}},
		MaxTokens:   300,
		Temperature: 0.2,
	})
	a.metrics.ObserveAnalysisLatency(time.Since(start).Seconds())

	if a.superseded(sessionID, mySeq) {
		return AnalysisResult{}, 0, ErrSuperseded
	}
	if err != nil {
		a.logger.Warn("analysis call failed, using fallback",
			"session_id", sessionID,
			"error", err.Error(),
		)
		a.metrics.ObserveAnalysisFallback()
		return fallbackAnalysis(text), mySeq, nil
	}

	result, ok := parseAnalysis(resp.Text)
	if !ok {
		a.logger.Warn("analysis response had no parseable JSON, using fallback",
			"session_id", sessionID,
		)
		a.metrics.ObserveAnalysisFallback()
		return fallbackAnalysis(text), mySeq, nil
	}
	return result, mySeq, nil
}

// superseded reports whether a newer analysis for the session has started
// since seq was issued.
func (a *Analyzer) superseded(sessionID string, seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest[sessionID] != seq
}

// parseAnalysis extracts the first {...} block from the model reply and
// parses it leniently, defaulting every missing field. Model output shape is
// never trusted.
func parseAnalysis(raw string) (AnalysisResult, bool) {
	block := jsonBlockRE.FindString(raw)
	if block == "" {
		return AnalysisResult{}, false
	}

	var parsed struct {
		Intent     string   `json:"intent"`
		Sentiment  string   `json:"sentiment"`
		Confidence *float64 `json:"confidence"`
		Context    []string `json:"context"`
		UserLevel  string   `json:"user_level"`
		Urgency    string   `json:"urgency"`
		Keywords   []string `json:"keywords"`
		Category   string   `json:"category"`
	}
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return AnalysisResult{}, false
	}

	result := AnalysisResult{
		Intent:    strings.TrimSpace(parsed.Intent),
		Sentiment: normalizeSentiment(parsed.Sentiment),
		Context:   parsed.Context,
		UserLevel: normalizeLevel(parsed.UserLevel),
		Urgency:   normalizeUrgency(parsed.Urgency),
		Keywords:  parsed.Keywords,
		Category:  strings.TrimSpace(parsed.Category),
	}
	if result.Intent == "" {
		result.Intent = fallbackIntent
	}
	if parsed.Confidence != nil && *parsed.Confidence >= 0 && *parsed.Confidence <= 1 {
		result.Confidence = *parsed.Confidence
	} else {
		result.Confidence = 0.5
	}
	return result, true
}

// fallbackAnalysis is the context-free analysis used when the external call
// or its parsing fails. Callers treat it as legitimate.
func fallbackAnalysis(text string) AnalysisResult {
	words := strings.Fields(Normalize(text))
	if len(words) > 3 {
		words = words[:3]
	}
	return AnalysisResult{
		Intent:     fallbackIntent,
		Sentiment:  SentimentNeutral,
		Confidence: 0.5,
		Urgency:    UrgencyLow,
		Keywords:   words,
	}
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func normalizeLevel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return ""
	}
}

func normalizeUrgency(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case UrgencyMedium:
		return UrgencyMedium
	case UrgencyHigh:
		return UrgencyHigh
	default:
		return UrgencyLow
	}
}
