package topic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome is the result of ensuring a topic.
type Outcome string

// Outcomes of Ensure. They are also the values of the "outcome" label of
// the topicproducer_topic_ensure_total counter, which counts calls.
// A call that waited for a concurrent call to the cluster is counted as
// cached, so that every other outcome counts one cluster conversation.
const (
	// OutcomeCached means the topic was already registered and the
	// cluster was not asked.
	OutcomeCached Outcome = "cached"
	// OutcomeExists means the cluster already had the topic.
	OutcomeExists Outcome = "exists"
	// OutcomeCreated means the topic has been created.
	OutcomeCreated Outcome = "created"
	// OutcomeCreateFailed means creation failed.
	OutcomeCreateFailed Outcome = "create_failed"
	// OutcomeQueryFailed means the cluster could not be queried.
	OutcomeQueryFailed Outcome = "query_failed"
)

var ensureTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "topicproducer",
		Subsystem: "topic",
		Name:      "ensure_total",
		Help:      "Topic ensure calls, by outcome.",
	},
	[]string{"outcome"},
)

var createAttemptsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "topicproducer",
		Subsystem: "topic",
		Name:      "create_attempts_total",
		Help:      "Create topic commands sent to the cluster.",
	},
)

func observe(o Outcome) {
	ensureTotal.WithLabelValues(string(o)).Inc()
}
