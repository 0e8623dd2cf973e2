package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graminhealth_chat_sends_total",
		Help: "Chat message sends by outcome (ok, error, rejected).",
	}, []string{"outcome"})

	locatorQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graminhealth_locator_queries_total",
		Help: "Grounded location queries by resulting display state.",
	}, []string{"state"})
)
