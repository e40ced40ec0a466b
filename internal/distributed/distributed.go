// Package distributed combines per-replica metric state in a data-parallel
// evaluation: each replica accumulates its own shard, then the replicas'
// fields are summed before the final ratio is computed.
package distributed

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/born-ml/curvemetrics/internal/metric"
	"github.com/born-ml/curvemetrics/internal/parallel"
	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Run calls fn once per replica. Replicas run concurrently according to cfg,
// but every replica is only ever touched by its own call, so metrics need no locking.
func Run[T tensor.Float](replicas []metric.Metric[T], fn func(rank int, m metric.Metric[T]) error, cfg parallel.Config) error {
	errs := make([]error, len(replicas))
	parallel.For(len(replicas), func(rank int) {
		if err := fn(rank, replicas[rank]); err != nil {
			errs[rank] = fmt.Errorf("rank %d: %w", rank, err)
		}
	}, cfg)
	return multierr.Combine(errs...)
}

// AllReduce overwrites every field of dst with the sum of that field over replicas.
// dst may be one of the replicas.
func AllReduce[T tensor.Float](dst metric.Metric[T], replicas ...metric.Metric[T]) error {
	names := dst.FieldNames()
	for _, r := range replicas {
		if !slices.Equal(names, r.FieldNames()) {
			return fmt.Errorf("%w: %s has %v, %s has %v",
				metric.ErrIncompatibleState, dst.Name(), names, r.Name(), r.FieldNames())
		}
	}

	sums := make([]float64, len(names))
	for _, r := range replicas {
		for i, name := range names {
			v, err := r.Store().Get(name)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name(), err)
			}
			if sums[i], err = metric.ReduceSum.Combine(sums[i], v); err != nil {
				return err
			}
		}
	}

	var err error
	for i, name := range names {
		err = multierr.Append(err, dst.Store().Set(name, sums[i]))
	}
	return err
}

// AllReduceCollections reduces collections metric by metric, matching by name.
func AllReduceCollections[T tensor.Float](dst *metric.Collection[T], replicas ...*metric.Collection[T]) error {
	var err error
	for _, m := range dst.Metrics() {
		parts := make([]metric.Metric[T], 0, len(replicas))
		for _, c := range replicas {
			p, getErr := c.Get(m.Name())
			if getErr != nil {
				err = multierr.Append(err, getErr)
				continue
			}
			parts = append(parts, p)
		}
		if len(parts) != len(replicas) {
			continue
		}
		err = multierr.Append(err, AllReduce(m, parts...))
	}
	return err
}

// SplitBatch splits t along its first dimension into n contiguous shards,
// the way a data-parallel sampler hands rows to ranks. Leading shards get the
// extra rows; trailing shards may be empty.
func SplitBatch[E tensor.Float | bool](t *tensor.Dense[E], n int) ([]*tensor.Dense[E], error) {
	shape := t.Shape()
	if len(shape) == 0 {
		return nil, fmt.Errorf("split batch: scalar tensor has no batch dimension")
	}
	if n <= 0 {
		return nil, fmt.Errorf("split batch: invalid shard count %d", n)
	}

	rows := shape[0]
	rowSize := 1
	for _, d := range shape[1:] {
		rowSize *= d
	}

	data := t.Data()
	shards := make([]*tensor.Dense[E], 0, n)
	start := 0
	for rank := 0; rank < n; rank++ {
		count := rows / n
		if rank < rows%n {
			count++
		}
		shardShape := shape.Clone()
		shardShape[0] = count
		shard, err := tensor.FromSlice(data[start*rowSize:(start+count)*rowSize], shardShape)
		if err != nil {
			return nil, err
		}
		shards = append(shards, shard)
		start += count
	}
	return shards, nil
}
