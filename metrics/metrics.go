// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package metrics provides streaming evaluation metrics for curve-valued
// predictions: a tolerance accuracy and an R² score, both mask-aware and
// reducible across data-parallel replicas.
//
// # Basic Usage
//
//	acc, _ := metrics.NewToleranceAccuracy[float32](0.2)
//	r2, _ := metrics.NewR2Score[float32]()
//	all, _ := metrics.NewCollection[float32](acc, r2)
//
//	for _, batch := range batches {
//	    if err := all.Update(batch.Pred, batch.Target, batch.Mask); err != nil {
//	        return err
//	    }
//	}
//	values, _ := all.Compute() // map[name]value
//
// # Distributed Evaluation
//
// Each replica accumulates its own shard. State fields are summed with
// AllReduce (in process) or shipped with EncodeSnapshot/ReduceSnapshots
// (across processes) before Compute is called. The reported ratio itself is
// never averaged across replicas.
//
// # Empty State
//
// Compute on a metric that has seen no valid point returns NaN.
package metrics

import (
	"go.uber.org/zap"

	"github.com/born-ml/curvemetrics/internal/config"
	"github.com/born-ml/curvemetrics/internal/distributed"
	"github.com/born-ml/curvemetrics/internal/export"
	"github.com/born-ml/curvemetrics/internal/metric"
	"github.com/born-ml/curvemetrics/internal/parallel"
	"github.com/born-ml/curvemetrics/internal/snapshot"
	"github.com/born-ml/curvemetrics/tensor"
)

// Metric is a streaming metric over batches of curves.
type Metric[T tensor.Float] = metric.Metric[T]

// FieldStore is the host capability for named, sum-reduced state fields.
type FieldStore = metric.FieldStore

// Fields is the in-memory FieldStore.
type Fields = metric.Fields

// ReduceOp combines a field across replicas.
type ReduceOp = metric.ReduceOp

// ReduceSum is the only reduce op used by curve metrics.
const ReduceSum = metric.ReduceSum

// Option configures a metric.
type Option = metric.Option

// ShapeMismatchError reports pred/target/mask shapes that disagree.
type ShapeMismatchError = metric.ShapeMismatchError

// Errors.
var (
	ErrShapeMismatch     = metric.ErrShapeMismatch
	ErrInvalidTolerance  = metric.ErrInvalidTolerance
	ErrIncompatibleState = metric.ErrIncompatibleState
)

// NewFields creates an empty in-memory field store.
func NewFields() *Fields { return metric.NewFields() }

// WithName overrides a metric's default name.
func WithName(name string) Option { return metric.WithName(name) }

// WithStore backs a metric with a host-provided field store.
func WithStore(s FieldStore) Option { return metric.WithStore(s) }

// WithLogger sets a metric's logger.
func WithLogger(l *zap.Logger) Option { return metric.WithLogger(l) }

// Tolerance accuracy

// AccuracyState is the tolerance accuracy accumulator.
type AccuracyState = metric.AccuracyState

// ToleranceAccuracy is the fraction of valid points within a tolerance of the target.
type ToleranceAccuracy[T tensor.Float] = metric.ToleranceAccuracy[T]

// NewToleranceAccuracy creates a tolerance accuracy metric.
func NewToleranceAccuracy[T tensor.Float](tolerance T, opts ...Option) (*ToleranceAccuracy[T], error) {
	return metric.NewToleranceAccuracy(tolerance, opts...)
}

// UpdateAccuracy folds one batch into an accuracy state.
func UpdateAccuracy[T tensor.Float](s AccuracyState, tolerance T, pred, target *tensor.Dense[T], mask *tensor.Mask) (AccuracyState, error) {
	return metric.UpdateAccuracy(s, tolerance, pred, target, mask)
}

// ComputeAccuracy returns close/total; NaN for an empty state.
func ComputeAccuracy(s AccuracyState) float64 { return metric.ComputeAccuracy(s) }

// R² score

// R2State is the R² accumulator.
type R2State = metric.R2State

// R2Score is the coefficient of determination over valid points.
type R2Score[T tensor.Float] = metric.R2Score[T]

// NewR2Score creates an R² metric.
func NewR2Score[T tensor.Float](opts ...Option) (*R2Score[T], error) {
	return metric.NewR2Score[T](opts...)
}

// UpdateR2 folds one batch into an R² state.
func UpdateR2[T tensor.Float](s R2State, pred, target *tensor.Dense[T], mask *tensor.Mask) (R2State, error) {
	return metric.UpdateR2(s, pred, target, mask)
}

// ComputeR2 returns 1 - SS_res/SS_tot; NaN for an empty state.
func ComputeR2(s R2State) float64 { return metric.ComputeR2(s) }

// Collections

// Collection updates a group of metrics together.
type Collection[T tensor.Float] = metric.Collection[T]

// NewCollection groups metrics with unique names.
func NewCollection[T tensor.Float](ms ...Metric[T]) (*Collection[T], error) {
	return metric.NewCollection(ms...)
}

// Config describes a collection in YAML.
type Config = config.Config

// ParseConfig decodes and validates a YAML collection config.
func ParseConfig(data []byte) (*Config, error) { return config.Parse(data) }

// BuildCollection constructs a configured collection.
func BuildCollection[T tensor.Float](cfg *Config, logger *zap.Logger) (*Collection[T], error) {
	return config.Build[T](cfg, logger)
}

// Distributed reduction

// ParallelConfig controls how RunReplicas schedules replicas.
type ParallelConfig = parallel.Config

// DefaultParallelConfig uses one worker per CPU.
func DefaultParallelConfig() ParallelConfig { return parallel.DefaultConfig() }

// RunReplicas calls fn once per replica, concurrently.
func RunReplicas[T tensor.Float](replicas []Metric[T], fn func(rank int, m Metric[T]) error, cfg ParallelConfig) error {
	return distributed.Run(replicas, fn, cfg)
}

// AllReduce sets dst's fields to the sum of the replicas' fields.
func AllReduce[T tensor.Float](dst Metric[T], replicas ...Metric[T]) error {
	return distributed.AllReduce(dst, replicas...)
}

// AllReduceCollections reduces collections metric by metric.
func AllReduceCollections[T tensor.Float](dst *Collection[T], replicas ...*Collection[T]) error {
	return distributed.AllReduceCollections(dst, replicas...)
}

// SplitBatch splits a tensor along its first dimension into n shards.
func SplitBatch[E tensor.Float | bool](t *tensor.Dense[E], n int) ([]*tensor.Dense[E], error) {
	return distributed.SplitBatch(t, n)
}

// EncodeSnapshot serializes a metric's state fields.
func EncodeSnapshot[T tensor.Float](m Metric[T]) ([]byte, error) {
	return snapshot.EncodeMetric(m)
}

// ReduceSnapshots sums encoded snapshots into m.
func ReduceSnapshots[T tensor.Float](m Metric[T], snapshots ...[]byte) error {
	return snapshot.Reduce(m, snapshots...)
}

// Export

// Collector exports a collection's values to Prometheus.
type Collector[T tensor.Float] = export.Collector[T]

// NewCollector creates a Prometheus collector for c.
func NewCollector[T tensor.Float](namespace string, c *Collection[T], logger *zap.Logger) *Collector[T] {
	return export.NewCollector(namespace, c, logger)
}
