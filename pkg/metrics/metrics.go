// Package metrics exposes prometheus collectors for the delivery pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mobpush"

// ResultOK labels a successful item or batch. Failures are labelled with the
// kind of error.
const ResultOK = "ok"

// Metrics records what the pusher did. A nil *Metrics records nothing.
type Metrics struct {
	items         *prometheus.CounterVec
	batches       *prometheus.CounterVec
	recipients    prometheus.Counter
	batchDuration prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Push items processed, by result.",
		}, []string{"result"}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batch requests sent to the gateway, by result.",
		}, []string{"result"}),
		recipients: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipients_total",
			Help:      "Devices targeted by accepted batches.",
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of one gateway round trip.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveItem(result string) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBatch(result string, size int, took time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(result).Inc()
	m.batchDuration.Observe(took.Seconds())
	if result == ResultOK {
		m.recipients.Add(float64(size))
	}
}
