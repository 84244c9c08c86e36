package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	EventCount      prometheus.Counter
	HandshakeCount  prometheus.Counter
	DuplicateCount  prometheus.Counter
	RejectedCount   prometheus.Counter
	ReplySuccesses  prometheus.Counter
	ReplyFailures   prometheus.Counter
	LLMRequests     prometheus.Counter
	LLMFailures     prometheus.Counter
	ProcessingTime  prometheus.Histogram
	LedgerSize      prometheus.Gauge
	LedgerSaveFails prometheus.Counter
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		EventCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_event_count",
			Help: "Total number of inbound webhook events",
		}),
		HandshakeCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_handshake_count",
			Help: "Total number of verification handshakes answered",
		}),
		DuplicateCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_duplicate_count",
			Help: "Total number of duplicate deliveries skipped",
		}),
		RejectedCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_rejected_count",
			Help: "Total number of malformed events rejected",
		}),
		ReplySuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_reply_successes",
			Help: "Total number of replies delivered to Lark",
		}),
		ReplyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_reply_failures",
			Help: "Total number of replies that failed to send",
		}),
		LLMRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_llm_requests",
			Help: "Total number of completion requests sent to OpenAI",
		}),
		LLMFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_llm_failures",
			Help: "Total number of failed OpenAI completion requests",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lark_gateway_processing_duration_seconds",
			Help:    "Time spent handling webhook events",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lark_gateway_ledger_size",
			Help: "Number of message ids tracked by the processed-message ledger",
		}),
		LedgerSaveFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lark_gateway_ledger_save_failures",
			Help: "Total number of failed ledger save operations",
		}),
	}
}
