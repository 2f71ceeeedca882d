// Package metrics provides Prometheus metrics for the settings reconciler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the reconciler's Prometheus collectors.
type Metrics struct {
	Mutations        prometheus.Counter
	RemoteApplied    prometheus.Counter
	EchoesSuppressed *prometheus.CounterVec
	WritesFailed     prometheus.Counter
	LegacyMigrations prometheus.Counter
	Malformed        prometheus.Counter
}

// New creates settings metrics registered with the default registry.
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_settings_mutations_total",
			Help: "Total number of local settings mutations.",
		}),
		RemoteApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_settings_remote_applied_total",
			Help: "Total number of remote notifications merged into the document.",
		}),
		EchoesSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "okkstats_settings_echoes_suppressed_total",
			Help: "Total number of remote notifications suppressed as echoes.",
		}, []string{"guard"}),
		WritesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_settings_writes_failed_total",
			Help: "Total number of failed remote document writes.",
		}),
		LegacyMigrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_settings_legacy_migrations_total",
			Help: "Total number of legacy payload migrations performed.",
		}),
		Malformed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_settings_malformed_payloads_total",
			Help: "Total number of remote payloads that failed to decode.",
		}),
	}
}
