package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/observability/metrics"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

const heuristicConfidence = 0.6

var positiveWords = []string{
	"gracias", "excelente", "genial", "me gusta", "me encanta", "interesante",
	"bueno", "perfecto", "increible", "divertido", "quiero aprender",
}

var negativeWords = []string{
	"aburrido", "dificil", "no entiendo", "malo", "confuso", "no me gusta",
	"complicado", "caro", "feo", "no sirve", "frustrado",
}

// ClassifySentiment is the heuristic fallback classifier. It counts matches
// against small positive/negative word lists and never fails.
func ClassifySentiment(text string) SentimentScore {
	normalized := Normalize(text)
	positives := 0
	negatives := 0
	for _, w := range positiveWords {
		if strings.Contains(normalized, w) {
			positives++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(normalized, w) {
			negatives++
		}
	}

	label := SentimentNeutral
	switch {
	case positives > negatives:
		label = SentimentPositive
	case negatives > positives:
		label = SentimentNegative
	}
	return SentimentScore{Label: label, Confidence: heuristicConfidence}
}

type sentimentCacheEntry struct {
	record   SentimentRecord
	cachedAt time.Time
}

// SentimentAnalyzer produces per-utterance sentiment readings through the
// generative model, with the heuristic classifier as degraded mode. Readings
// are cached by normalized message (+ optional user id) to avoid redundant
// external calls for repeated phrasing.
type SentimentAnalyzer struct {
	client  LLMClient
	logger  *logging.Logger
	metrics *metrics.AssistantMetrics
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]sentimentCacheEntry
}

// NewSentimentAnalyzer builds the analyzer. A non-positive ttl defaults to
// five minutes. A nil client means every reading is heuristic.
func NewSentimentAnalyzer(client LLMClient, ttl time.Duration, logger *logging.Logger, m *metrics.AssistantMetrics) *SentimentAnalyzer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SentimentAnalyzer{
		client:  client,
		logger:  logger,
		metrics: m,
		ttl:     ttl,
		now:     time.Now,
		cache:   make(map[string]sentimentCacheEntry),
	}
}

// Analyze returns the sentiment reading for a message, serving from cache
// when an identical normalized message (for the same user) was analyzed
// within the TTL. It never returns an error.
func (s *SentimentAnalyzer) Analyze(ctx context.Context, message, userID string) SentimentRecord {
	key := Normalize(message)
	if userID != "" {
		key += "|" + userID
	}
	now := s.now()

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && now.Sub(entry.cachedAt) < s.ttl {
		s.mu.Unlock()
		s.metrics.ObserveSentimentCache(true)
		return entry.record
	}
	s.mu.Unlock()
	s.metrics.ObserveSentimentCache(false)

	record := s.analyze(ctx, message)
	record.Timestamp = now

	s.mu.Lock()
	s.cache[key] = sentimentCacheEntry{record: record, cachedAt: now}
	// Opportunistic sweep keeps the map from growing over a long exhibit day.
	for k, e := range s.cache {
		if now.Sub(e.cachedAt) >= s.ttl {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()
	return record
}

func (s *SentimentAnalyzer) analyze(ctx context.Context, message string) SentimentRecord {
	if s.client == nil {
		return heuristicRecord(message)
	}

	resp, err := s.client.Complete(ctx, LLMRequest{
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: renderSentimentPrompt(message)}},
		MaxTokens:   120,
		Temperature: 0,
	})
	if err != nil {
		s.logger.Warn("sentiment call failed, using heuristic", "error", err.Error())
		return heuristicRecord(message)
	}

	block := jsonBlockRE.FindString(resp.Text)
	if block == "" {
		return heuristicRecord(message)
	}
	var parsed struct {
		Sentiment  string   `json:"sentiment"`
		Confidence *float64 `json:"confidence"`
		Emotions   []string `json:"emotions"`
		Intensity  *float64 `json:"intensity"`
	}
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return heuristicRecord(message)
	}

	record := SentimentRecord{
		Sentiment: normalizeSentiment(parsed.Sentiment),
		Emotions:  parsed.Emotions,
		Context:   message,
	}
	if parsed.Confidence != nil && *parsed.Confidence >= 0 && *parsed.Confidence <= 1 {
		record.Confidence = *parsed.Confidence
	} else {
		record.Confidence = heuristicConfidence
	}
	if parsed.Intensity != nil && *parsed.Intensity >= 0 && *parsed.Intensity <= 1 {
		record.Intensity = *parsed.Intensity
	}
	return record
}

func heuristicRecord(message string) SentimentRecord {
	score := ClassifySentiment(message)
	intensity := 0.0
	if score.Label != SentimentNeutral {
		intensity = 0.5
	}
	return SentimentRecord{
		Sentiment:  score.Label,
		Confidence: score.Confidence,
		Intensity:  intensity,
		Context:    message,
	}
}
