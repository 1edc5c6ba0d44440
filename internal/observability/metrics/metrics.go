package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the conversation core.
type AssistantMetrics struct {
	turnsTotal         *prometheus.CounterVec
	analysisFallbacks  prometheus.Counter
	sentimentCacheHits *prometheus.CounterVec
	activeSessions     prometheus.Gauge
	expiredSessions    prometheus.Counter
	analysisLatency    prometheus.Histogram
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Total conversation turns by reply source",
		}, []string{"source"}),
		analysisFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "assistant",
			Name:      "analysis_fallbacks_total",
			Help:      "Analyses that degraded to the heuristic fallback",
		}),
		sentimentCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "assistant",
			Name:      "sentiment_cache_total",
			Help:      "Sentiment cache lookups by outcome",
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kiosk",
			Subsystem: "assistant",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		}),
		expiredSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "assistant",
			Name:      "expired_sessions_total",
			Help:      "Sessions removed by the retention cleanup pass",
		}),
		analysisLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kiosk",
			Subsystem: "assistant",
			Name:      "analysis_latency_seconds",
			Help:      "Latency of generative analysis calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.turnsTotal,
		m.analysisFallbacks,
		m.sentimentCacheHits,
		m.activeSessions,
		m.expiredSessions,
		m.analysisLatency,
	)
	return m
}

func (m *AssistantMetrics) ObserveTurn(source string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(source).Inc()
}

func (m *AssistantMetrics) ObserveAnalysisFallback() {
	if m == nil {
		return
	}
	m.analysisFallbacks.Inc()
}

func (m *AssistantMetrics) ObserveSentimentCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.sentimentCacheHits.WithLabelValues(outcome).Inc()
}

func (m *AssistantMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *AssistantMetrics) ObserveExpiredSessions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expiredSessions.Add(float64(n))
}

func (m *AssistantMetrics) ObserveAnalysisLatency(seconds float64) {
	if m == nil {
		return
	}
	m.analysisLatency.Observe(seconds)
}
