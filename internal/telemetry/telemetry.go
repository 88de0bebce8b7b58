// Package telemetry counts batch outcomes and writes them as a Prometheus text file.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/huangsam/repoquality/schema"
)

// Recorder holds the batch metrics on its own registry so independent runs never collide.
// A nil Recorder ignores every observation.
type Recorder struct {
	registry     *prometheus.Registry
	repositories *prometheus.CounterVec
	attempts     *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		repositories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repoquality_repositories_total",
			Help: "Repositories processed, by outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repoquality_extractor_attempts_total",
			Help: "Extractor strategy attempts, by strategy and result.",
		}, []string{"strategy", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "repoquality_repository_duration_seconds",
			Help:    "Wall-clock time spent on one repository.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	r.registry.MustRegister(r.repositories, r.attempts, r.duration)
	return r
}

// ObserveRepository counts one finished repository.
func (r *Recorder) ObserveRepository(outcome schema.Outcome, d time.Duration) {
	if r == nil {
		return
	}
	r.repositories.WithLabelValues(string(outcome)).Inc()
	if outcome != schema.ResumedOutcome {
		r.duration.Observe(d.Seconds())
	}
}

// ObserveAttempt counts one extractor attempt.
func (r *Recorder) ObserveAttempt(strategy string, located bool) {
	if r == nil {
		return
	}
	result := "missed"
	if located {
		result = "located"
	}
	r.attempts.WithLabelValues(strategy, result).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes every metric to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
