package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchgate_purchases_total",
		Help: "The total number of purchase settlement steps",
	}, []string{"status"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "launchgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	GateRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchgate_gate_rejects_total",
		Help: "Transfer authorizer rejections by first failing gate",
	}, []string{"reason"})

	TransfersAuthorized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchgate_transfers_authorized_total",
		Help: "Transfer hook decisions",
	}, []string{"decision"})

	TokensSold = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchgate_tokens_sold_total",
		Help: "Base units sold across all sales",
	}, []string{"asset"})
)
