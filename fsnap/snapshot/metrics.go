package snapshot

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels a finished resolution
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded" // a symlink follow-up step failed
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Metrics tracks resolutions both in-process and as Prometheus collectors.
// A degraded resolution still counts as resolved.
type Metrics struct {
	mu             sync.RWMutex
	resolved       int64
	degraded       int64
	failed         int64
	canceled       int64
	lastResolution time.Time
	averageTime    time.Duration

	resolutions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates resolver metrics. Collectors are registered on reg; a
// nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsnap_resolutions_total",
				Help: "Total number of entry resolutions by outcome",
			},
			[]string{"outcome"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fsnap_resolve_duration_seconds",
				Help:    "Time to resolve one entry into a snapshot",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 10),
			},
		),
	}
}

// Observe records one finished resolution that started at start
func (m *Metrics) Observe(start time.Time, outcome Outcome) {
	elapsed := time.Since(start)

	m.mu.Lock()
	switch outcome {
	case OutcomeOK:
		m.resolved++
	case OutcomeDegraded:
		m.resolved++
		m.degraded++
	case OutcomeCanceled:
		m.canceled++
	default:
		m.failed++
	}
	total := m.resolved + m.failed + m.canceled
	m.averageTime += (elapsed - m.averageTime) / time.Duration(total)
	m.lastResolution = time.Now()
	m.mu.Unlock()

	m.resolutions.WithLabelValues(string(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// GetMetrics returns a point-in-time copy of the in-process counters.
// Canceled resolutions count as failed operations.
func (m *Metrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_operations": m.resolved + m.failed + m.canceled,
		"successful_ops":   m.resolved,
		"failed_ops":       m.failed + m.canceled,
		"degraded_ops":     m.degraded,
		"canceled_ops":     m.canceled,
		"average_time":     m.averageTime,
		"last_operation":   m.lastResolution,
	}
}
