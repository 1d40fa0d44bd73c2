package metrics

import (
	"sync"

	"storemonitor/services"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsStartedTotal counts reports accepted by POST /trigger_report.
	ReportsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storemonitor",
		Subsystem: "reports",
		Name:      "started_total",
		Help:      "Total number of report generations started.",
	})

	// ReportsFinishedTotal counts finished reports by terminal status.
	ReportsFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storemonitor",
		Subsystem: "reports",
		Name:      "finished_total",
		Help:      "Total number of report generations finished, labeled by status.",
	}, []string{"status"})

	// ReportDurationSeconds is the time from the start of generation to the stored terminal status.
	ReportDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storemonitor",
		Subsystem: "reports",
		Name:      "duration_seconds",
		Help:      "Time to generate and store a report.",
		Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"status"})

	// ReportStores is the number of store rows of the last complete report.
	ReportStores = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storemonitor",
		Subsystem: "reports",
		Name:      "last_complete_stores",
		Help:      "Number of stores in the most recent complete report.",
	})

	// IngestedRowsTotal counts rows written by the CSV loader, labeled by table.
	IngestedRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storemonitor",
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Total number of rows loaded from CSV files, labeled by table.",
	}, []string{"table"})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsStartedTotal,
			ReportsFinishedTotal,
			ReportDurationSeconds,
			ReportStores,
			IngestedRowsTotal,
		)
	})
}

// ReportObserver records finished reports
type ReportObserver struct{}

func (ReportObserver) ReportFinished(o services.Outcome) {
	status := string(o.Status)
	ReportsFinishedTotal.WithLabelValues(status).Inc()
	ReportDurationSeconds.WithLabelValues(status).Observe(o.Duration.Seconds())
	if o.Err == nil {
		ReportStores.Set(float64(len(o.Rows)))
	}
}
