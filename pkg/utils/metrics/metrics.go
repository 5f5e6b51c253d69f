package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herald_deliveries_total",
			Help: "Total number of deliveries by outcome.",
		},
		[]string{"outcome"}, // delivered, transient, permanent
	)

	AttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herald_delivery_attempts_total",
			Help: "Total number of webhook POST attempts by result.",
		},
		[]string{"result"}, // ok, http_4xx, http_5xx, rate_limited, network
	)

	DeliveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "herald_delivery_duration_seconds",
			Help:    "Wall-clock duration of a whole delivery, retries included.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(DeliveriesTotal, AttemptsTotal, DeliveryDuration)
}
