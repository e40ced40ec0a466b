package metric

import (
	"go.uber.org/zap"

	"github.com/born-ml/curvemetrics/internal/tensor"
)

// State field names of R2Score. total_count is shared with ToleranceAccuracy.
const (
	FieldSumSquaredTarget   = "sum_squared_target"
	FieldSumTarget          = "sum_target"
	FieldResidualSumSquares = "residual_sum_squares"
)

// R2State is the accumulator of the streaming R² score.
type R2State struct {
	SumSquaredTarget   float64
	SumTarget          float64
	ResidualSumSquares float64
	TotalCount         int64
}

// Merge returns the field-wise sum of two states.
func (s R2State) Merge(other R2State) R2State {
	return R2State{
		SumSquaredTarget:   s.SumSquaredTarget + other.SumSquaredTarget,
		SumTarget:          s.SumTarget + other.SumTarget,
		ResidualSumSquares: s.ResidualSumSquares + other.ResidualSumSquares,
		TotalCount:         s.TotalCount + other.TotalCount,
	}
}

// UpdateR2 folds one batch into s.
//
// With a mask, pred and target are first reduced to their valid positions.
// Both are then treated as flat sequences of paired values.
func UpdateR2[T tensor.Float](s R2State, pred, target *tensor.Dense[T], mask *tensor.Mask) (R2State, error) {
	return updateR2("r2_score", s, pred, target, mask)
}

func updateR2[T tensor.Float](name string, s R2State, pred, target *tensor.Dense[T], mask *tensor.Mask) (R2State, error) {
	if err := checkShapes(name, pred, target, mask); err != nil {
		return s, err
	}

	total := int64(pred.NumElements())
	if mask != nil {
		pred = tensor.MaskedSelect(pred, mask)
		target = tensor.MaskedSelect(target, mask)
		total = tensor.CountTrue(mask)
	}
	pred = pred.Flatten()
	target = target.Flatten()

	s.SumTarget += tensor.Sum(target)
	s.SumSquaredTarget += tensor.SumSquares(target)
	s.ResidualSumSquares += tensor.SumSquaredDiff(target, pred)
	s.TotalCount += total
	return s, nil
}

// ComputeR2 returns 1 - SS_res / SS_tot, with SS_tot = Σy² - (Σy)²/n.
//
// The single-pass form keeps every field independently summable across
// replicas. It loses precision when Σy² and (Σy)²/n are close, i.e. for
// targets with tiny variance relative to their magnitude.
// An empty state yields NaN.
func ComputeR2(s R2State) float64 {
	n := float64(s.TotalCount)
	return 1 - s.ResidualSumSquares/(s.SumSquaredTarget-s.SumTarget*s.SumTarget/n)
}

// R2Score is the coefficient of determination over all valid curve points.
type R2Score[T tensor.Float] struct {
	base
}

// NewR2Score creates the metric and declares its fields on the store.
func NewR2Score[T tensor.Float](opts ...Option) (*R2Score[T], error) {
	b, err := newBase("r2_score", []string{
		FieldSumSquaredTarget,
		FieldSumTarget,
		FieldResidualSumSquares,
		FieldTotalCount,
	}, opts)
	if err != nil {
		return nil, err
	}
	return &R2Score[T]{base: b}, nil
}

// State reads the accumulator out of the field store.
func (m *R2Score[T]) State() (R2State, error) {
	v, err := m.load()
	if err != nil {
		return R2State{}, err
	}
	return r2FromFields(v), nil
}

func r2FromFields(v []float64) R2State {
	return R2State{
		SumSquaredTarget:   v[0],
		SumTarget:          v[1],
		ResidualSumSquares: v[2],
		TotalCount:         int64(v[3]),
	}
}

// Update accumulates one batch. On error the stored state is unchanged.
func (m *R2Score[T]) Update(pred, target *tensor.Dense[T], mask *tensor.Mask) error {
	prev, err := m.load()
	if err != nil {
		return err
	}
	s, err := updateR2(m.name, r2FromFields(prev), pred, target, mask)
	if err != nil {
		return err
	}
	m.logger.Debug("accumulated batch",
		zap.Int64("total_count", s.TotalCount),
		zap.Float64("residual_sum_squares", s.ResidualSumSquares),
		zap.Bool("masked", mask != nil))
	return m.save(prev, []float64{s.SumSquaredTarget, s.SumTarget, s.ResidualSumSquares, float64(s.TotalCount)})
}

// Compute returns the R² score. NaN when nothing was counted.
func (m *R2Score[T]) Compute() (float64, error) {
	s, err := m.State()
	if err != nil {
		return 0, err
	}
	if s.TotalCount == 0 {
		m.logger.Warn("compute on empty state, result is NaN")
	}
	return ComputeR2(s), nil
}
