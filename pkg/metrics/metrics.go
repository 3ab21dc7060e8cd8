// Package metrics records what a roost run did as Prometheus metrics.
//
// A run is one-shot, so nothing is served. The registry is written in text
// exposition format for node_exporter's textfile collector:
//
//	m := metrics.New()
//	m.ObservePackages(result)
//	err := m.WriteTextfile("/var/lib/node_exporter/roost.prom")
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
)

const namespace = "roost"

// Recorder holds the metrics of one run
type Recorder struct {
	registry *prometheus.Registry

	projects      prometheus.Gauge
	properties    prometheus.Gauge
	packages      prometheus.Gauge
	conflicts     prometheus.Gauge
	warnings      *prometheus.GaugeVec
	filesWritten  *prometheus.CounterVec
	duration      prometheus.Gauge
	lastRun       prometheus.Gauge
	verifyFailure prometheus.Gauge
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "projects_scanned",
			Help: "Project files read in the last run.",
		}),
		properties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "common_properties",
			Help: "Properties hoisted into Directory.Build.props.",
		}),
		packages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "packages_resolved",
			Help: "Packages with a resolved central version.",
		}),
		conflicts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "package_conflicts",
			Help: "Packages observed with more than one version.",
		}),
		warnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "warnings",
			Help: "Analysis warnings by level.",
		}, []string{"level"}),
		filesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "files_written_total",
			Help: "Files created or updated, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		verifyFailure: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "verify_failed",
			Help: "1 if post-write verification failed in the last run.",
		}),
	}

	r.registry.MustRegister(
		r.projects, r.properties, r.packages, r.conflicts, r.warnings,
		r.filesWritten, r.duration, r.lastRun, r.verifyFailure,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveProjects records how many project files were scanned
func (r *Recorder) ObserveProjects(n int) {
	r.projects.Set(float64(n))
}

// ObserveProperties records a property analysis
func (r *Recorder) ObserveProperties(res *analyzer.PropertyResult) {
	r.properties.Set(float64(len(res.Properties)))
	r.addWarnings(res.Warnings)
}

// ObservePackages records a package analysis
func (r *Recorder) ObservePackages(res *analyzer.PackageAnalysisResult) {
	r.packages.Set(float64(len(res.ResolvedVersions)))
	r.conflicts.Set(float64(len(res.Conflicts)))
	r.addWarnings(res.Warnings)
}

func (r *Recorder) addWarnings(warnings []analyzer.Warning) {
	for _, w := range warnings {
		r.warnings.WithLabelValues(w.Level.String()).Inc()
	}
}

// FileWritten counts a created ("create") or rewritten ("update") file
func (r *Recorder) FileWritten(kind string) {
	r.filesWritten.WithLabelValues(kind).Inc()
}

// VerifyFailed marks the run's verification as failed
func (r *Recorder) VerifyFailed() {
	r.verifyFailure.Set(1)
}

// Finish records run duration and completion time
func (r *Recorder) Finish(started time.Time) {
	now := time.Now()
	r.duration.Set(now.Sub(started).Seconds())
	r.lastRun.Set(float64(now.Unix()))
}

// WriteTextfile writes all metrics to path atomically
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
