package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values for FilesProcessed.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Metrics struct {
	FilesProcessed    *prometheus.CounterVec
	PlacemarksWritten *prometheus.CounterVec
	BatchSeconds      *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FilesProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kmlforge_files_processed_total",
			Help: "Total number of source files processed, by operation and status.",
		}, []string{"operation", "status"}),
		PlacemarksWritten: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kmlforge_placemarks_written_total",
			Help: "Total number of placemarks or rows written to output files.",
		}, []string{"operation"}),
		BatchSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kmlforge_batch_duration_seconds",
			Help:    "Duration of a whole batch operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
