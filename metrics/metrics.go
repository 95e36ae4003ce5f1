// Package metrics exports Prometheus collectors for upload, transform and
// delete activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yochan"

// Recorder holds the service collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	uploads           *prometheus.CounterVec
	deletes           *prometheus.CounterVec
	transformDuration *prometheus.HistogramVec
	storedBytes       prometheus.Counter
}

// New registers the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploaded files by outcome.",
		}, []string{"outcome"}),
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletes_total",
			Help:      "Delete requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		transformDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Time spent decoding, transforming and encoding one image.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		storedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stored_bytes_total",
			Help:      "Cumulative size of artifacts written to storage.",
		}),
	}
	reg.MustRegister(
		r.uploads,
		r.deletes,
		r.transformDuration,
		r.storedBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Upload counts one processed file.
func (r *Recorder) Upload(outcome string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(outcome).Inc()
}

// Stored adds n bytes written to the backend.
func (r *Recorder) Stored(n int64) {
	if r == nil {
		return
	}
	r.storedBytes.Add(float64(n))
}

// Transform observes one pipeline run producing format.
func (r *Recorder) Transform(format string, d time.Duration) {
	if r == nil {
		return
	}
	r.transformDuration.WithLabelValues(format).Observe(d.Seconds())
}

// Delete counts one delete request. kind is "file" or "namespace".
func (r *Recorder) Delete(kind, outcome string) {
	if r == nil {
		return
	}
	r.deletes.WithLabelValues(kind, outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
