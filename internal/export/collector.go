// Package export reports computed curve metrics to Prometheus.
package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/born-ml/curvemetrics/internal/metric"
	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Collector is a prometheus.Collector over a metric collection.
// Every scrape calls Compute, so values reflect the state at scrape time.
// Both series are gauges: they drop back to zero when the collection is reset.
// Scrapes must not overlap with Update on the same collection.
type Collector[T tensor.Float] struct {
	collection *metric.Collection[T]
	value      *prometheus.Desc
	count      *prometheus.Desc
	logger     *zap.Logger
}

// NewCollector creates a collector exporting
// <namespace>_curve_metric_value{metric} and <namespace>_curve_metric_count{metric}.
func NewCollector[T tensor.Float](namespace string, c *metric.Collection[T], logger *zap.Logger) *Collector[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector[T]{
		collection: c,
		value: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "curve_metric", "value"),
			"Current value of a streaming curve metric.",
			[]string{"metric"}, nil,
		),
		count: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "curve_metric", "count"),
			"Number of valid curve points accumulated since the last reset.",
			[]string{"metric"}, nil,
		),
		logger: logger,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.value
	ch <- c.count
}

// Collect implements prometheus.Collector.
func (c *Collector[T]) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collection.Metrics() {
		v, err := m.Compute()
		if err != nil {
			c.logger.Warn("skipping metric", zap.String("metric", m.Name()), zap.Error(err))
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.value, prometheus.GaugeValue, v, m.Name())

		n, err := m.Store().Get(metric.FieldTotalCount)
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, n, m.Name())
	}
}
