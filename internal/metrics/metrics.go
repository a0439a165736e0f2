package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "skillswap_http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "skillswap_http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	ProfileSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "skillswap_profile_syncs_total", Help: "Profile synchronizations by outcome"},
		[]string{"result"},
	)
	SwapTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "skillswap_swap_transitions_total", Help: "Swap request state changes by target status"},
		[]string{"status"},
	)
	SwapsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "skillswap_swaps_expired_total", Help: "Pending swap requests rejected by the expiry sweeper"},
	)
	FeedbackSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "skillswap_feedback_submitted_total", Help: "Feedback entries created"},
	)
	AdminActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "skillswap_admin_actions_total", Help: "Audited admin actions by type"},
		[]string{"action"},
	)
	RealtimeClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "skillswap_realtime_clients", Help: "Open realtime websocket connections"},
	)
)

var once sync.Once

func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			ProfileSyncs,
			SwapTransitions,
			SwapsExpired,
			FeedbackSubmitted,
			AdminActions,
			RealtimeClients,
		)
	})
}
