package metric

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/born-ml/curvemetrics/internal/tensor"
)

// State field names of ToleranceAccuracy.
const (
	FieldCloseCount = "close_count"
	FieldTotalCount = "total_count"
)

// AccuracyState is the accumulator of the tolerance accuracy.
type AccuracyState struct {
	CloseCount int64
	TotalCount int64
}

// Merge returns the field-wise sum of two states.
func (s AccuracyState) Merge(other AccuracyState) AccuracyState {
	return AccuracyState{
		CloseCount: s.CloseCount + other.CloseCount,
		TotalCount: s.TotalCount + other.TotalCount,
	}
}

// UpdateAccuracy folds one batch into s.
//
// A position is close when |pred - target| <= tolerance. With a mask, only
// positions where the mask is true are counted, both as close and in the total.
// A negative or NaN tolerance fails with ErrInvalidTolerance.
func UpdateAccuracy[T tensor.Float](s AccuracyState, tolerance T, pred, target *tensor.Dense[T], mask *tensor.Mask) (AccuracyState, error) {
	if err := validateTolerance(tolerance); err != nil {
		return s, err
	}
	return updateAccuracy("tolerance_accuracy", s, tolerance, pred, target, mask)
}

func updateAccuracy[T tensor.Float](name string, s AccuracyState, tolerance T, pred, target *tensor.Dense[T], mask *tensor.Mask) (AccuracyState, error) {
	if err := checkShapes(name, pred, target, mask); err != nil {
		return s, err
	}

	s.CloseCount += tensor.CountClose(pred, target, tolerance, mask)
	if mask == nil {
		s.TotalCount += int64(pred.NumElements())
	} else {
		s.TotalCount += tensor.CountTrue(mask)
	}
	return s, nil
}

func validateTolerance[T tensor.Float](tolerance T) error {
	if math.IsNaN(float64(tolerance)) || tolerance < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}
	return nil
}

// ComputeAccuracy returns CloseCount / TotalCount.
// An empty state yields NaN.
func ComputeAccuracy(s AccuracyState) float64 {
	return float64(s.CloseCount) / float64(s.TotalCount)
}

// ToleranceAccuracy is the fraction of valid curve points within a fixed
// tolerance of the target.
type ToleranceAccuracy[T tensor.Float] struct {
	base
	tolerance T
}

// NewToleranceAccuracy creates the metric and declares its fields on the store.
//
// Example:
//
//	acc, err := metric.NewToleranceAccuracy[float32](0.2)
//	if err != nil {
//	    return err
//	}
//	_ = acc.Update(pred, target, mask)
//	value, _ := acc.Compute()
func NewToleranceAccuracy[T tensor.Float](tolerance T, opts ...Option) (*ToleranceAccuracy[T], error) {
	if err := validateTolerance(tolerance); err != nil {
		return nil, err
	}
	b, err := newBase("tolerance_accuracy", []string{FieldCloseCount, FieldTotalCount}, opts)
	if err != nil {
		return nil, err
	}
	return &ToleranceAccuracy[T]{base: b, tolerance: tolerance}, nil
}

// Tolerance returns the tolerance fixed at construction.
func (m *ToleranceAccuracy[T]) Tolerance() T {
	return m.tolerance
}

// State reads the accumulator out of the field store.
func (m *ToleranceAccuracy[T]) State() (AccuracyState, error) {
	v, err := m.load()
	if err != nil {
		return AccuracyState{}, err
	}
	return accuracyFromFields(v), nil
}

func accuracyFromFields(v []float64) AccuracyState {
	return AccuracyState{CloseCount: int64(v[0]), TotalCount: int64(v[1])}
}

// Update accumulates one batch. On error the stored state is unchanged.
func (m *ToleranceAccuracy[T]) Update(pred, target *tensor.Dense[T], mask *tensor.Mask) error {
	prev, err := m.load()
	if err != nil {
		return err
	}
	s, err := updateAccuracy(m.name, accuracyFromFields(prev), m.tolerance, pred, target, mask)
	if err != nil {
		return err
	}
	m.logger.Debug("accumulated batch",
		zap.Int64("close_count", s.CloseCount),
		zap.Int64("total_count", s.TotalCount),
		zap.Bool("masked", mask != nil))
	return m.save(prev, []float64{float64(s.CloseCount), float64(s.TotalCount)})
}

// Compute returns the fraction of close points. NaN when nothing was counted.
func (m *ToleranceAccuracy[T]) Compute() (float64, error) {
	s, err := m.State()
	if err != nil {
		return 0, err
	}
	if s.TotalCount == 0 {
		m.logger.Warn("compute on empty state, result is NaN")
	}
	return ComputeAccuracy(s), nil
}
