package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ToFloat64 converts the tensor's elements to a fresh float64 slice.
// float64 tensors are copied as well, so callers may mutate the result.
func ToFloat64[T Float](t *Dense[T]) []float64 {
	out := make([]float64, len(t.data))
	for i, v := range t.data {
		out[i] = float64(v)
	}
	return out
}

// Sum returns the sum of all elements, accumulated in float64.
func Sum[T Float](t *Dense[T]) float64 {
	return floats.Sum(ToFloat64(t))
}

// SumSquares returns the sum of squared elements, accumulated in float64.
func SumSquares[T Float](t *Dense[T]) float64 {
	v := ToFloat64(t)
	return floats.Dot(v, v)
}

// SumSquaredDiff returns Σ(a_i - b_i)² accumulated in float64.
// The caller must ensure shapes match.
func SumSquaredDiff[T Float](a, b *Dense[T]) float64 {
	diff := ToFloat64(a)
	floats.Sub(diff, ToFloat64(b))
	return floats.Dot(diff, diff)
}

// CountClose returns the number of positions where |a_i - b_i| <= tol and,
// when mask is non-nil, mask_i is true. The comparison happens in T.
// NaN differences are never close. The caller must ensure shapes match.
func CountClose[T Float](a, b *Dense[T], tol T, mask *Mask) int64 {
	var valid []bool
	if mask != nil {
		valid = mask.Data()
	}
	bd := b.Data()
	var n int64
	for i, av := range a.Data() {
		if valid != nil && !valid[i] {
			continue
		}
		if T(math.Abs(float64(av-bd[i]))) <= tol {
			n++
		}
	}
	return n
}
