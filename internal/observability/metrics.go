// Package observability holds the Prometheus collectors of the dashboard.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// RendersTotal counts page renders.
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depdash_renders_total",
			Help: "Total number of dashboard page renders",
		},
		[]string{"page", "status"}, // status: success, failed
	)

	// RenderDuration measures how long a page render takes.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "depdash_render_duration_seconds",
			Help:    "Dashboard page render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"page"},
	)

	// WorkingSetRecords is the size of the last rendered working set.
	WorkingSetRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "depdash_working_set_records",
			Help: "Number of records in the last rendered working set",
		},
		[]string{"page"},
	)

	// DatasetRecords is the number of records loaded at startup.
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "depdash_dataset_records",
			Help: "Number of records in the loaded dataset",
		},
	)

	// DatasetUnmapped is the number of records whose depression value was outside {0,1}.
	DatasetUnmapped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "depdash_dataset_unmapped_records",
			Help: "Number of records labelled unknown because depression was outside {0,1}",
		},
	)
)

// RecordRender updates the render collectors for one page render.
func RecordRender(page string, start time.Time, records int, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	RendersTotal.WithLabelValues(page, status).Inc()
	if err != nil {
		return
	}
	RenderDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
	WorkingSetRecords.WithLabelValues(page).Set(float64(records))
}

// RecordDataset publishes the size of the loaded dataset.
func RecordDataset(records, unmapped int) {
	DatasetRecords.Set(float64(records))
	DatasetUnmapped.Set(float64(unmapped))
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }
