package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actorkit/core/actor"
	"github.com/codewandler/actorkit/core/metrics"
)

// actorMetrics implements actor.ActorMetrics using Prometheus.
type actorMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	mailboxDepth    *prometheus.GaugeVec
	handlesAlive    *prometheus.GaugeVec
	terminations    *prometheus.CounterVec
	abandonedTotal  *prometheus.CounterVec
}

// NewActorMetrics creates a Prometheus implementation of ActorMetrics and
// registers its collectors with reg.
func NewActorMetrics(reg prometheus.Registerer) actor.ActorMetrics {
	return NewActorMetricsWithOpts(reg, Opts{})
}

// NewActorMetricsWithOpts is NewActorMetrics with custom naming.
func NewActorMetricsWithOpts(reg prometheus.Registerer, opts Opts) actor.ActorMetrics {
	if opts.Namespace == "" {
		opts.Namespace = "actorkit"
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = defaultBuckets
	}
	ns := opts.Namespace

	m := &actorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "actor_message_duration_seconds",
			Help:      "Message handling time in seconds",
			Buckets:   opts.Buckets,
		}, []string{"message_type"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "actor_messages_total",
			Help:      "Total number of messages handled",
		}, []string{"message_type", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "actor_panics_total",
			Help:      "Total number of contained handler panics",
		}, []string{"message_type"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "actor_mailbox_depth",
			Help:      "Current number of buffered messages",
		}, []string{"actor_id"}),

		handlesAlive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "actor_handles_alive",
			Help:      "Live handles per actor and kind",
		}, []string{"actor_id", "kind"}),

		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "actor_terminations_total",
			Help:      "Total number of terminated actors by reason",
		}, []string{"reason"}),

		abandonedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "actor_abandoned_messages_total",
			Help:      "Buffered messages dropped unhandled at termination",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.mailboxDepth,
		m.handlesAlive,
		m.terminations,
		m.abandonedTotal,
	)

	return m
}

func (m *actorMetrics) MessageDuration(msgType string) metrics.Timer {
	return metrics.NewTimer(m.messageDuration.WithLabelValues(msgType))
}

func (m *actorMetrics) MessageProcessed(msgType string, success bool) {
	m.messagesTotal.WithLabelValues(msgType, boolToStr(success)).Inc()
}

func (m *actorMetrics) MessagePanic(msgType string) {
	m.panicTotal.WithLabelValues(msgType).Inc()
}

func (m *actorMetrics) MailboxDepth(actorID string, depth int) {
	m.mailboxDepth.WithLabelValues(actorID).Set(float64(depth))
}

func (m *actorMetrics) HandlesAlive(actorID string, strong, weak int) {
	m.handlesAlive.WithLabelValues(actorID, "strong").Set(float64(strong))
	m.handlesAlive.WithLabelValues(actorID, "weak").Set(float64(weak))
}

// Terminated drops the per-actor series so short-lived actors do not leak
// label cardinality.
func (m *actorMetrics) Terminated(actorID string, reason string, abandoned int) {
	m.terminations.WithLabelValues(reason).Inc()
	m.abandonedTotal.WithLabelValues(reason).Add(float64(abandoned))
	m.mailboxDepth.DeleteLabelValues(actorID)
	m.handlesAlive.DeleteLabelValues(actorID, "strong")
	m.handlesAlive.DeleteLabelValues(actorID, "weak")
}

var _ actor.ActorMetrics = (*actorMetrics)(nil)
