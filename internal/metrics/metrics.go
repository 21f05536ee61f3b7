// Package metrics exposes Prometheus counters for the session and code
// allocation subsystems.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the application metrics. Services and middleware record
// through it; a nil *Collector is safe and records nothing, which keeps
// tests free of registry bookkeeping.
type Collector struct {
	registry *prometheus.Registry

	logins          prometheus.Counter
	signups         prometheus.Counter
	sessionTouches  prometheus.Counter
	sessionsExpired prometheus.Counter
	sessionsPurged  prometheus.Counter
	codeRetries     prometheus.Counter
	codeExhausted   prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_logins_total",
			Help: "Successful tenant logins.",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_signups_total",
			Help: "Completed signup transactions.",
		}),
		sessionTouches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_session_touches_total",
			Help: "Sliding-expiry renewals performed by the principal resolver.",
		}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_sessions_expired_total",
			Help: "Sessions revoked lazily at lookup time.",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_sessions_purged_total",
			Help: "Sessions deleted by the background purge sweep.",
		}),
		codeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_code_allocation_retries_total",
			Help: "Code allocation candidates redrawn after a collision.",
		}),
		codeExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "punctoo_code_allocation_exhausted_total",
			Help: "Code allocations that spent the full retry budget.",
		}),
	}

	c.registry.MustRegister(
		c.logins,
		c.signups,
		c.sessionTouches,
		c.sessionsExpired,
		c.sessionsPurged,
		c.codeRetries,
		c.codeExhausted,
	)

	return c
}

// Handler returns the /metrics HTTP handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordLogin() {
	if c != nil {
		c.logins.Inc()
	}
}

func (c *Collector) RecordSignup() {
	if c != nil {
		c.signups.Inc()
	}
}

func (c *Collector) RecordSessionTouch() {
	if c != nil {
		c.sessionTouches.Inc()
	}
}

func (c *Collector) RecordSessionExpired() {
	if c != nil {
		c.sessionsExpired.Inc()
	}
}

func (c *Collector) RecordSessionsPurged(n int64) {
	if c != nil && n > 0 {
		c.sessionsPurged.Add(float64(n))
	}
}

func (c *Collector) RecordCodeRetry() {
	if c != nil {
		c.codeRetries.Inc()
	}
}

func (c *Collector) RecordCodeExhausted() {
	if c != nil {
		c.codeExhausted.Inc()
	}
}
