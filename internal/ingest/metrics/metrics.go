package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the ingestion layer.
type Metrics struct {
	RowsConverted prometheus.Counter
	RowsDropped   prometheus.Counter
}

// New creates and registers ingestion metrics.
func New() *Metrics {
	return &Metrics{
		RowsConverted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_rows_converted_total",
			Help: "Total raw rows successfully normalized into records",
		}),
		RowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "okkstats_rows_dropped_total",
			Help: "Total raw rows excluded because their date could not be parsed",
		}),
	}
}
