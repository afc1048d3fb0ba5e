// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_refreshes_total",
			Help: "Session refresh attempts by outcome.",
		},
		[]string{"result"},
	)

	SessionsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_sessions_swept_total",
		Help: "Sessions deactivated by the expiry sweep.",
	})

	VerificationCodesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_verification_codes_issued_total",
		Help: "Verification codes issued.",
	})

	VerificationCodesConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verification_codes_consumed_total",
			Help: "Verification code consumption attempts by outcome.",
		},
		[]string{"result"},
	)
)

// Outcome labels shared by the counters above.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Init registers the collectors with the default registry.
func Init() {
	prometheus.MustRegister(
		LoginsTotal,
		RefreshesTotal,
		SessionsSweptTotal,
		VerificationCodesIssuedTotal,
		VerificationCodesConsumedTotal,
	)
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
