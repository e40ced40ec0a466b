package metric

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Collection updates and computes a group of metrics over the same batches.
type Collection[T tensor.Float] struct {
	metrics []Metric[T]
	byName  map[string]Metric[T]
	logger  *zap.Logger
}

// NewCollection groups metrics. Names must be unique.
func NewCollection[T tensor.Float](metrics ...Metric[T]) (*Collection[T], error) {
	c := &Collection[T]{
		byName: make(map[string]Metric[T], len(metrics)),
		logger: zap.NewNop(),
	}
	for _, m := range metrics {
		if err := c.Add(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetLogger replaces the collection logger.
func (c *Collection[T]) SetLogger(l *zap.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Add appends a metric to the collection.
func (c *Collection[T]) Add(m Metric[T]) error {
	if _, ok := c.byName[m.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMetric, m.Name())
	}
	c.metrics = append(c.metrics, m)
	c.byName[m.Name()] = m
	return nil
}

// Get returns the metric with the given name.
func (c *Collection[T]) Get(name string) (Metric[T], error) {
	m, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return m, nil
}

// Metrics returns the metrics in insertion order.
func (c *Collection[T]) Metrics() []Metric[T] {
	out := make([]Metric[T], len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Len returns the number of metrics.
func (c *Collection[T]) Len() int {
	return len(c.metrics)
}

// Update feeds the batch to every metric.
// A shape mismatch is reported once per metric; all errors are combined.
func (c *Collection[T]) Update(pred, target *tensor.Dense[T], mask *tensor.Mask) error {
	var err error
	for _, m := range c.metrics {
		err = multierr.Append(err, m.Update(pred, target, mask))
	}
	if err != nil {
		c.logger.Debug("batch update failed", zap.Error(err))
	}
	return err
}

// Compute returns every metric's current value keyed by name.
func (c *Collection[T]) Compute() (map[string]float64, error) {
	out := make(map[string]float64, len(c.metrics))
	var err error
	for _, m := range c.metrics {
		v, mErr := m.Compute()
		if mErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", m.Name(), mErr))
			continue
		}
		out[m.Name()] = v
	}
	return out, err
}

// Reset resets every metric.
func (c *Collection[T]) Reset() error {
	var err error
	for _, m := range c.metrics {
		err = multierr.Append(err, m.Reset())
	}
	return err
}
