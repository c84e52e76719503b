// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package access

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for grant evaluation.
var (
	// evaluateDuration tracks the latency of Evaluate calls as observed by
	// the engine facade.
	evaluateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lorekeep_access_evaluate_duration_seconds",
		Help:    "Histogram of access grant evaluation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// evaluations counts evaluations by operation and effect.
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lorekeep_access_evaluations_total",
		Help: "Total number of access grant evaluations",
	}, []string{"operation", "effect"})
)

// RecordEvaluation records the duration and outcome of one evaluation.
func RecordEvaluation(d time.Duration, op Operation, effect Effect) {
	evaluateDuration.Observe(d.Seconds())
	evaluations.WithLabelValues(op.String(), effect.String()).Inc()
}
