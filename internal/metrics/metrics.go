package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	OutcomeRedirected   = "redirected"
	OutcomeLoggedIn     = "logged_in"
	OutcomeRegistration = "registration"
	OutcomeFailed       = "failed"
)

// Metrics provides observability for the login flow.
type Metrics struct {
	LoginOutcomes    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth2client_login_outcomes_total",
			Help: "Total number of login requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oauth2client_provider_call_duration_seconds",
			Help:    "Duration of token exchange and user info calls to the authorization providers",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "op"}),
	}
}

// IncrementOutcome records the terminal outcome of a login request.
func (m *Metrics) IncrementOutcome(provider, outcome string) {
	m.LoginOutcomes.WithLabelValues(provider, outcome).Inc()
}

// ObserveProviderCall records the duration of a call to a provider.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveProviderCall(provider, op string, start time.Time) {
	m.ProviderDuration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
}
