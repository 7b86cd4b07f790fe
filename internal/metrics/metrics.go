// Package metrics provides Prometheus instrumentation for the moderation
// bot: counters for inspected and flagged messages, warnings and bans, and
// failure counters for classification and intent delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesInspected counts every text message run through the engine.
	MessagesInspected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbot_messages_inspected_total",
		Help: "Total number of messages run through the moderation engine",
	})

	// MessagesFlagged counts flagged messages, labeled by classifier label.
	MessagesFlagged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbot_messages_flagged_total",
		Help: "Total number of messages flagged for deletion",
	}, []string{"label"})

	// WarningsIssued counts warning increments recorded in the store.
	WarningsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbot_warnings_issued_total",
		Help: "Total number of warnings recorded",
	})

	// Bans counts ban intents produced by the engine.
	Bans = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbot_bans_total",
		Help: "Total number of users banned after reaching the warning ceiling",
	})

	// IntentFailures counts failed intent deliveries, labeled by intent kind.
	IntentFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbot_intent_failures_total",
		Help: "Total number of intent executions that failed",
	}, []string{"kind"})

	// ClassifyFailures counts classification calls that errored (fail-open).
	ClassifyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbot_classify_failures_total",
		Help: "Total number of failed classification calls",
	})

	// ClassifyDuration records classification call latency in seconds.
	ClassifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "modbot_classify_duration_seconds",
		Help:    "Classification call latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
)

func init() {
	prometheus.MustRegister(
		MessagesInspected,
		MessagesFlagged,
		WarningsIssued,
		Bans,
		IntentFailures,
		ClassifyFailures,
		ClassifyDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
