// Package metrics defines and registers all custom Prometheus metrics for the
// service-center identity API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics use promauto and register with the default registry at package
// initialisation; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "service_center"

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: "success", "email_exists", "invalid_role", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// OTPVerificationsTotal counts OTP verification attempts.
// Label:
//   - outcome: "success", "invalid", "expired", "error"
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of OTP verification attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success", "invalid_credentials", "not_verified", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenRefreshesTotal counts refresh-token rotations.
// Label:
//   - outcome: "success", "invalid", "error"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of refresh-token rotation attempts, by outcome.",
	},
	[]string{"outcome"},
)

// PasswordResetsTotal counts forgot/reset password operations.
// Labels:
//   - step: "request" (forgot-password) or "confirm" (reset-password)
//   - outcome: "success", "rejected", "error"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset operations, by step and outcome.",
	},
	[]string{"step", "outcome"},
)
