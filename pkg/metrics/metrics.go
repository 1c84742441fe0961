// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nexora"

var (
	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_turns_total",
		Help:      "Chat turns by intent and outcome.",
	}, []string{"intent", "success"})

	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_invocations_total",
		Help:      "Campus tool invocations by tool and outcome.",
	}, []string{"tool", "outcome"})

	ToolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_latency_seconds",
		Help:      "Campus tool latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	ModerationChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_checks_total",
		Help:      "Moderation gate outcomes: allowed, flagged or degraded.",
	}, []string{"outcome"})

	KnowledgeReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "knowledge_reloads_total",
		Help:      "Knowledge base rebuilds by outcome.",
	}, []string{"outcome"})

	KnowledgeSearchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "knowledge_search_seconds",
		Help:      "Knowledge base search latency by outcome: hit, empty or degraded.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"outcome"})

	KnowledgeChunks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "knowledge_chunks",
		Help:      "Chunks in the live knowledge index.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
)

// Outcome maps a boolean to the label values used across collectors.
func Outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func Handler() http.Handler {
	return promhttp.Handler()
}
