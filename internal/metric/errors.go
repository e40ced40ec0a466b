package metric

import (
	"errors"
	"fmt"

	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Common errors.
var (
	ErrShapeMismatch      = errors.New("metric: shape mismatch")
	ErrInvalidTolerance   = errors.New("metric: tolerance must be a non-negative number")
	ErrUnknownField       = errors.New("metric: unknown state field")
	ErrDuplicateField     = errors.New("metric: state field already declared")
	ErrIncompatibleState  = errors.New("metric: incompatible state fields")
	ErrDuplicateMetric    = errors.New("metric: duplicate metric name")
	ErrUnknownMetric      = errors.New("metric: unknown metric")
	ErrNilInput           = errors.New("metric: nil pred or target")
	ErrUnsupportedReducer = errors.New("metric: unsupported reduce op")
)

// ShapeMismatchError reports pred/target/mask tensors whose shapes disagree.
// It matches ErrShapeMismatch under errors.Is.
type ShapeMismatchError struct {
	Metric string
	Pred   tensor.Shape
	Target tensor.Shape
	Mask   tensor.Shape // nil when no mask was given
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	if e.Mask == nil {
		return fmt.Sprintf("%s: shapes of pred and target mismatch: %v, %v", e.Metric, e.Pred, e.Target)
	}
	return fmt.Sprintf("%s: shapes of pred, target and mask mismatch: %v, %v, %v", e.Metric, e.Pred, e.Target, e.Mask)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// checkShapes validates the update precondition shared by every metric.
func checkShapes[T tensor.Float](name string, pred, target *tensor.Dense[T], mask *tensor.Mask) error {
	if pred == nil || target == nil {
		return fmt.Errorf("%s: %w", name, ErrNilInput)
	}
	if mask == nil {
		if !pred.Shape().Equal(target.Shape()) {
			return &ShapeMismatchError{Metric: name, Pred: pred.Shape(), Target: target.Shape()}
		}
		return nil
	}
	if !pred.Shape().Equal(target.Shape()) || !pred.Shape().Equal(mask.Shape()) {
		return &ShapeMismatchError{Metric: name, Pred: pred.Shape(), Target: target.Shape(), Mask: mask.Shape()}
	}
	return nil
}
