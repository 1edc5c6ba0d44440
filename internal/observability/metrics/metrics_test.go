package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilReceiverIsSafe(t *testing.T) {
	var m *AssistantMetrics
	m.ObserveTurn("template")
	m.ObserveAnalysisFallback()
	m.ObserveSentimentCache(true)
	m.SetActiveSessions(3)
	m.ObserveExpiredSessions(2)
	m.ObserveAnalysisLatency(0.2)
}

func TestObserveTurnCountsBySource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)

	m.ObserveTurn("template")
	m.ObserveTurn("template")
	m.ObserveTurn("generative")

	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("template")); got != 2 {
		t.Errorf("template turns = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("generative")); got != 1 {
		t.Errorf("generative turns = %v, want 1", got)
	}
}

func TestSentimentCacheOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)

	m.ObserveSentimentCache(true)
	m.ObserveSentimentCache(false)
	m.ObserveSentimentCache(false)

	if got := testutil.ToFloat64(m.sentimentCacheHits.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sentimentCacheHits.WithLabelValues("miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
}

func TestGaugeAndCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)

	m.SetActiveSessions(4)
	if got := testutil.ToFloat64(m.activeSessions); got != 4 {
		t.Errorf("active sessions = %v, want 4", got)
	}
	m.SetActiveSessions(1)
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}

	m.ObserveExpiredSessions(3)
	m.ObserveExpiredSessions(0)
	m.ObserveExpiredSessions(-1)
	if got := testutil.ToFloat64(m.expiredSessions); got != 3 {
		t.Errorf("expired sessions = %v, want 3", got)
	}
}

func TestMetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)
	m.ObserveTurn("default")
	m.ObserveAnalysisFallback()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"kiosk_assistant_turns_total", "kiosk_assistant_analysis_fallbacks_total"} {
		if !strings.Contains(joined, want) {
			t.Errorf("metric %q not registered, got %v", want, names)
		}
	}
}
