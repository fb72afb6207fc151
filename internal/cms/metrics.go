package cms

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptvault",
		Subsystem: "cms",
		Name:      "requests_total",
		Help:      "Outbound CMS requests by operation and outcome.",
	}, []string{"operation", "outcome"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "promptvault",
		Subsystem: "cms",
		Name:      "request_duration_seconds",
		Help:      "Outbound CMS request duration by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

// observe records one finished CMS operation.
func observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(operation, outcome).Inc()
	requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
