package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	RefreshAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "refresh_attempts_total", Help: "Session refresh calls issued by the refresh gate, by result."},
		[]string{"result"},
	)
	RefreshWaiters = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "refresh_waiters_total", Help: "Requests that queued behind an in-flight refresh."},
	)
	Verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "session_verifications_total", Help: "Session verifications by outcome."},
		[]string{"outcome"},
	)
	GuardDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "route_guard_decisions_total", Help: "Route guard decisions on protected navigation."},
		[]string{"decision"},
	)
	RejectedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "spaconsole", Name: "catalog_rejected_records_total", Help: "Backend records dropped at the boundary because they failed validation."},
		[]string{"kind"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RefreshAttempts)
	reg.MustRegister(RefreshWaiters)
	reg.MustRegister(Verifications)
	reg.MustRegister(GuardDecisions)
	reg.MustRegister(RejectedRecords)
}
