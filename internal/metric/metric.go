// Package metric implements streaming, mask-aware evaluation metrics for
// curve-valued predictions.
//
// Each metric is split in two layers:
//   - an explicit state struct with pure Update*/Compute* functions, and
//   - a stateful Metric that keeps that state in named FieldStore fields so a
//     host framework can reset it and sum it across replicas.
//
// The ratio a metric reports is never reduced directly: replicas sum their
// fields first and Compute runs on the reduced fields.
package metric

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Metric is a streaming metric over batches of curves.
type Metric[T tensor.Float] interface {
	// Name returns the metric's unique name within a collection.
	Name() string

	// Update accumulates one batch. mask may be nil.
	Update(pred, target *tensor.Dense[T], mask *tensor.Mask) error

	// Compute returns the metric over everything accumulated since the last Reset.
	// It does not modify state.
	Compute() (float64, error)

	// Reset returns every state field to its identity.
	Reset() error

	// FieldNames lists the state fields, in declaration order.
	FieldNames() []string

	// Store returns the backing field store.
	Store() FieldStore
}

// Option configures a metric.
type Option func(*config)

type config struct {
	name   string
	store  FieldStore
	logger *zap.Logger
}

// WithName overrides the metric's default name.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithStore backs the metric with a host-provided field store (default: a new *Fields).
func WithStore(s FieldStore) Option {
	return func(c *config) {
		if s != nil {
			c.store = s
		}
	}
}

// WithLogger sets the logger (default: zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// base holds the field bookkeeping shared by the concrete metrics.
type base struct {
	name   string
	fields []string
	store  FieldStore
	logger *zap.Logger
}

func newBase(defaultName string, fields []string, opts []Option) (base, error) {
	cfg := config{name: defaultName, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = NewFields()
	}

	for _, f := range fields {
		if err := cfg.store.Declare(f, ReduceSum); err != nil {
			return base{}, err
		}
	}

	return base{
		name:   cfg.name,
		fields: fields,
		store:  cfg.store,
		logger: cfg.logger.With(zap.String("metric", cfg.name)),
	}, nil
}

// Name returns the metric name.
func (b *base) Name() string { return b.name }

// FieldNames returns the declared state field names.
func (b *base) FieldNames() []string {
	out := make([]string, len(b.fields))
	copy(out, b.fields)
	return out
}

// Store returns the backing field store.
func (b *base) Store() FieldStore { return b.store }

// Reset sets every field to zero.
func (b *base) Reset() error {
	var err error
	for _, f := range b.fields {
		err = multierr.Append(err, b.store.Set(f, ReduceSum.Identity()))
	}
	return err
}

func (b *base) load() ([]float64, error) {
	values := make([]float64, len(b.fields))
	for i, f := range b.fields {
		v, err := b.store.Get(f)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// save writes next field by field. If a Set fails, fields already written are
// restored to prev so the store never holds a partially applied batch.
func (b *base) save(prev, next []float64) error {
	for i, f := range b.fields {
		if err := b.store.Set(f, next[i]); err != nil {
			var rollbackErr error
			for j := 0; j < i; j++ {
				rollbackErr = multierr.Append(rollbackErr, b.store.Set(b.fields[j], prev[j]))
			}
			return multierr.Append(err, rollbackErr)
		}
	}
	return nil
}
