// pkg/telemetry/metrics.go
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ObservationsAccepted counts observations that passed the scope gate
	ObservationsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "observations_accepted_total",
			Help:      "Total number of observations accepted for registration",
		},
	)

	// ObservationsRejected counts observations dropped by the scope gate
	ObservationsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "observations_rejected_total",
			Help:      "Total number of observations rejected as out of scope",
		},
	)

	// ObservationsSuppressed counts registrations suppressed as duplicates
	ObservationsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "observations_suppressed_total",
			Help:      "Total number of registrations suppressed as already-known software",
		},
	)

	// FirstSightings counts first sightings of a (host, name) pair
	FirstSightings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "first_sightings_total",
			Help:      "Total number of first sightings recorded, by software category",
		},
		[]string{"category"},
	)

	// VersionChanges counts interesting version changes that raised a notice
	VersionChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "version_changes_total",
			Help:      "Total number of version-change notices raised, by software name",
		},
		[]string{"software"},
	)

	// SinkWriteErrors counts failed observation sink writes
	SinkWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "sink_write_errors_total",
			Help:      "Total number of failed observation sink writes",
		},
	)

	// HostEvictions counts host tables evicted after the retention window
	HostEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "host_evictions_total",
			Help:      "Total number of host tables evicted after the idle retention window",
		},
	)

	// HostsTracked reports the number of hosts currently in the registry
	HostsTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "softwatch",
			Name:      "hosts_tracked",
			Help:      "Number of hosts currently held in the software registry",
		},
	)

	// IntakeReports counts banner reports received on the intake subject
	IntakeReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "softwatch",
			Name:      "intake_reports_total",
			Help:      "Total number of banner reports received, by handling result",
		},
		[]string{"result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ObservationsAccepted)
		prometheus.DefaultRegisterer.Register(ObservationsRejected)
		prometheus.DefaultRegisterer.Register(ObservationsSuppressed)
		prometheus.DefaultRegisterer.Register(FirstSightings)
		prometheus.DefaultRegisterer.Register(VersionChanges)
		prometheus.DefaultRegisterer.Register(SinkWriteErrors)
		prometheus.DefaultRegisterer.Register(HostEvictions)
		prometheus.DefaultRegisterer.Register(HostsTracked)
		prometheus.DefaultRegisterer.Register(IntakeReports)
	})
}
