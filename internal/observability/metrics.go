package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsTotal counts completed settlements by task kind.
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_settlements_total",
		Help: "Total number of settled tasks",
	}, []string{"kind"})

	// CreditsTransferredTotal sums settled credit minutes.
	CreditsTransferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timebank_credits_transferred_total",
		Help: "Total credit minutes moved by settlements",
	})

	// TaskTransitionsTotal counts lifecycle transitions by operation and result.
	TaskTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_task_transitions_total",
		Help: "Task lifecycle operations by outcome",
	}, []string{"operation", "result"})

	// InsufficientCreditsTotal counts soft failures on accept paths.
	InsufficientCreditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_insufficient_credits_total",
		Help: "Accept attempts rejected for insufficient credits",
	}, []string{"path"})

	// MessagesSentTotal counts direct and community messages.
	MessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_messages_sent_total",
		Help: "Total number of chat messages sent",
	}, []string{"channel"})

	// ValidationLatency observes validation collaborator calls.
	ValidationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timebank_validation_latency_seconds",
		Help:    "Latency of evidence validation calls",
		Buckets: prometheus.DefBuckets,
	})

	// MediaUploadsTotal counts media host uploads by backend and result.
	MediaUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_media_uploads_total",
		Help: "Media uploads by backend and result",
	}, []string{"backend", "result"})

	// MailDeliveriesTotal counts outbox deliveries by result.
	MailDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_mail_deliveries_total",
		Help: "Outbox mail deliveries by result",
	}, []string{"result"})

	// OutboxDepth is the number of undelivered mails.
	OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timebank_outbox_depth",
		Help: "Pending mails in the outbox",
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnections is the number of open websocket clients.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timebank_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// EventsPublishedTotal counts broker events by collection.
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebank_events_published_total",
		Help: "Events delivered to the in-process broker",
	}, []string{"collection"})
)

// Result labels a metric outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
