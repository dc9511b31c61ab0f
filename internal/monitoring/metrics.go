package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BonusComputationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bonus_computations_total",
			Help: "Total number of completed referral bonus computations",
		},
	)

	DepositVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deposit_verifications_total",
			Help: "Deposit verification attempts by outcome",
		},
		[]string{"outcome"},
	)
)
