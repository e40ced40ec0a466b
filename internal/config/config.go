// Package config builds metric collections from a YAML description.
//
//	metrics:
//	  - name: curve_acc
//	    kind: tolerance_accuracy
//	    tolerance: 0.2
//	  - name: curve_r2
//	    kind: r2_score
package config

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/curvemetrics/internal/metric"
	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Metric kinds.
const (
	KindToleranceAccuracy = "tolerance_accuracy"
	KindR2Score           = "r2_score"
)

// Common errors.
var (
	ErrNoMetrics   = errors.New("config: no metrics configured")
	ErrUnknownKind = errors.New("config: unknown metric kind")
	ErrMissingName = errors.New("config: metric name is required")
)

// Config describes a metric collection.
type Config struct {
	Metrics []MetricConfig `yaml:"metrics"`
}

// MetricConfig describes one metric.
type MetricConfig struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	Tolerance *float64 `yaml:"tolerance,omitempty"`
}

// Parse decodes and validates a YAML config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every metric entry and reports all problems at once.
func (c *Config) Validate() error {
	if len(c.Metrics) == 0 {
		return ErrNoMetrics
	}
	var errs error
	seen := make(map[string]bool, len(c.Metrics))
	for i, m := range c.Metrics {
		if m.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("metrics[%d]: %w", i, ErrMissingName))
		} else if seen[m.Name] {
			errs = multierr.Append(errs, fmt.Errorf("metrics[%d]: %w: %q", i, metric.ErrDuplicateMetric, m.Name))
		}
		seen[m.Name] = true

		switch m.Kind {
		case KindToleranceAccuracy:
			if m.Tolerance == nil {
				errs = multierr.Append(errs, fmt.Errorf("metrics[%d] %s: tolerance is required", i, m.Name))
			} else if *m.Tolerance < 0 || math.IsNaN(*m.Tolerance) {
				errs = multierr.Append(errs, fmt.Errorf("metrics[%d] %s: %w", i, m.Name, metric.ErrInvalidTolerance))
			}
		case KindR2Score:
			if m.Tolerance != nil {
				errs = multierr.Append(errs, fmt.Errorf("metrics[%d] %s: tolerance does not apply to %s", i, m.Name, KindR2Score))
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("metrics[%d] %s: %w: %q", i, m.Name, ErrUnknownKind, m.Kind))
		}
	}
	return errs
}

// Build constructs the configured collection for element type T.
// Each metric gets its own field store.
func Build[T tensor.Float](cfg *Config, logger *zap.Logger) (*metric.Collection[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := metric.NewCollection[T]()
	if err != nil {
		return nil, err
	}
	c.SetLogger(logger)

	for _, mc := range cfg.Metrics {
		opts := []metric.Option{metric.WithName(mc.Name), metric.WithLogger(logger)}

		var m metric.Metric[T]
		switch mc.Kind {
		case KindToleranceAccuracy:
			m, err = metric.NewToleranceAccuracy(T(*mc.Tolerance), opts...)
		case KindR2Score:
			m, err = metric.NewR2Score[T](opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", mc.Name, err)
		}
		if err := c.Add(m); err != nil {
			return nil, err
		}
		logger.Debug("metric configured", zap.String("metric", mc.Name), zap.String("kind", mc.Kind))
	}
	return c, nil
}
