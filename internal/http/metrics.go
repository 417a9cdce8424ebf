package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"foxypack/pkg/foxypack"
)

const (
	outcomeResolved  = "resolved"
	outcomeExhausted = "exhausted"
)

// Metrics records chain routing decisions and request timings. It implements
// foxypack.Observer.
type Metrics struct {
	ResolutionsTotal   *prometheus.CounterVec
	BypassTotal        *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foxypack_resolutions_total",
				Help: "Total number of chain resolutions by outcome",
			},
			[]string{"role", "outcome"},
		),
		BypassTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foxypack_bypass_total",
				Help: "Total number of handler errors swallowed by the chain",
			},
			[]string{"role", "handler"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foxypack_errors_total",
				Help: "Total number of resolutions aborted by an error",
			},
			[]string{"role", "kind"},
		),
		ResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foxypack_resolution_duration_seconds",
				Help:    "Time spent resolving a URL",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"role"},
		),
	}

	for _, c := range []prometheus.Collector{
		metrics.ResolutionsTotal,
		metrics.BypassTotal,
		metrics.ErrorsTotal,
		metrics.ResolutionDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return metrics, nil
}

func (m *Metrics) HandlerBypassed(role foxypack.Role, handler string, _ error) {
	m.BypassTotal.WithLabelValues(string(role), handler).Inc()
}

func (m *Metrics) ChainResolved(role foxypack.Role, _ string) {
	m.ResolutionsTotal.WithLabelValues(string(role), outcomeResolved).Inc()
}

func (m *Metrics) ChainExhausted(role foxypack.Role) {
	m.ResolutionsTotal.WithLabelValues(string(role), outcomeExhausted).Inc()
}

// RecordError counts a resolution that ended with err.
func (m *Metrics) RecordError(role foxypack.Role, err error) {
	m.ErrorsTotal.WithLabelValues(string(role), errorKind(err)).Inc()
}

// RecordDuration observes the time spent on a resolution.
func (m *Metrics) RecordDuration(role foxypack.Role, duration time.Duration) {
	m.ResolutionDuration.WithLabelValues(string(role)).Observe(duration.Seconds())
}

func errorKind(err error) string {
	if sysErr, ok := asSystemError(err); ok {
		return sysErr.Kind.String()
	}
	return "other"
}
