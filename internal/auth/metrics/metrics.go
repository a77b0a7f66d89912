package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the auth module.
type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
}

// New creates a new Metrics instance with all auth metrics registered.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vims_users_registered_total",
			Help: "Total number of user accounts created",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vims_login_attempts_total",
			Help: "Total login attempts by result",
		}, []string{"result"}), // result: "success", "failure"
	}
}

// IncUsersRegistered records a successful registration.
func (m *Metrics) IncUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// IncLoginAttempt records a login attempt outcome.
func (m *Metrics) IncLoginAttempt(result string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(result).Inc()
	}
}
