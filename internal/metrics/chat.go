package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reply sources for ChatRepliesTotal.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
	SourceCanned   = "canned"
)

// LLM and chat Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "llm_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helpdesk",
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "llm_tokens_total",
			Help:      "Total chat completion tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "llm_errors_total",
			Help:      "Total chat completion errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	LLMCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "llm_cache_total",
			Help:      "Chat completion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	LLMBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "helpdesk",
			Name:      "llm_budget_tokens_remaining",
			Help:      "Tokens left in the LLM budget (-1 = unlimited)",
		},
		[]string{"provider", "period"}, // "daily" / "monthly"
	)

	ChatRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "chat_replies_total",
			Help:      "Chat replies by the source that produced them",
		},
		[]string{"source"},
	)

	KnowledgeHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "knowledge_hits_total",
			Help:      "Knowledge base searches that returned at least one snippet (hit) or none (miss)",
		},
		[]string{"result"},
	)

	KnowledgeTopics = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "helpdesk",
			Name:      "knowledge_topics",
			Help:      "Number of topics in the loaded knowledge base",
		},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
		[]string{"scope"},
	)
)

var chatMetricsRegistered bool

// RegisterChatMetrics registers Prometheus chat and LLM metrics. Must be called once from main.
func RegisterChatMetrics() {
	if chatMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(LLMCacheTotal)
	prometheus.MustRegister(LLMBudgetTokensRemaining)
	prometheus.MustRegister(ChatRepliesTotal)
	prometheus.MustRegister(KnowledgeHitsTotal)
	prometheus.MustRegister(KnowledgeTopics)
	prometheus.MustRegister(RateLimitedTotal)
	chatMetricsRegistered = true
}
