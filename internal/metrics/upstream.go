package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream (identity provider) Prometheus metrics. These are defined in a
// standalone package to avoid import cycles between the idp client and the
// HTTP packages.

var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_requests_total",
		Help: "Total de requests al identity provider por operación y status",
	}, []string{"op", "status"})

	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idp_request_duration_seconds",
		Help:    "Latencia de requests al identity provider",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	AdminSessionRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_session_refreshes_total",
		Help: "Veces que la sesión admin fue (re)creada contra el provider",
	})
)

// RegisterUpstream registers the upstream metrics on the given registry (or default if nil).
func RegisterUpstream(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(UpstreamRequestsTotal); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	if err := reg.Register(UpstreamRequestDuration); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	if err := reg.Register(AdminSessionRefreshesTotal); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	return nil
}

// RecordUpstreamRequest registra una llamada al provider con su resultado.
func RecordUpstreamRequest(op, status string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(op, status).Inc()
	UpstreamRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordAdminSessionRefresh registra una (re)creación de la sesión admin.
func RecordAdminSessionRefresh() {
	AdminSessionRefreshesTotal.Inc()
}
