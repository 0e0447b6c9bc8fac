package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medvault_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// OtpChallenges counts OTP lifecycle events (issued|verified|rejected).
	OtpChallenges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medvault_otp_challenges_total",
			Help: "Total number of OTP challenge events",
		},
		[]string{"event"},
	)

	// VerificationDecisions counts admin verification outcomes by subject kind
	// (admin|user) and decision (approved|denied).
	VerificationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medvault_verification_decisions_total",
			Help: "Total number of verification decisions",
		},
		[]string{"subject", "decision"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medvault_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
