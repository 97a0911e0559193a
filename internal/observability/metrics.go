package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PositionsSent      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "positions_sent_total", Help: "Position updates delivered to the API"})
	PositionsDropped   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "positions_dropped_total", Help: "Position updates lost to network errors (never retried)"})
	PositionsThrottled = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "positions_throttled_total", Help: "Raw samples filtered out by the distance/time throttle"})
	GeocodeFailures    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "geocode_failures_total", Help: "Best-effort reverse geocoding failures"})

	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "transport_tracking", Name: "transitions_total", Help: "Mission status transitions acknowledged by the server"},
		[]string{"statut"},
	)
	TransitionFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "transition_failures_total", Help: "Mission status transitions that failed and were surfaced to the user"})

	PollCycles = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "poll_cycles_total", Help: "Mission detail poll cycles"})

	MirrorUpdates = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "mirror_updates_total", Help: "Positions mirrored into fleet sinks"})
	MirrorErrors  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transport_tracking", Name: "mirror_errors_total", Help: "Fleet sink write failures after retries"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "transport_tracking", Name: "http_requests_total", Help: "Local HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transport_tracking",
			Name:      "http_request_duration_seconds",
			Help:      "Local HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
