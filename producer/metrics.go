package producer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "topicproducer",
		Subsystem: "producer",
		Name:      "messages_total",
		Help:      "Messages sent, by topic and status.",
	},
	[]string{"topic", "status"},
)
