// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for curve tensors and validity masks.
//
// Example:
//
//	pred, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	mask, _ := tensor.MaskFromLengths([]int{3, 2}, 3)
package tensor

import (
	"github.com/born-ml/curvemetrics/internal/tensor"
)

// Float is the constraint for curve element types (float32, float64 and named variants).
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{8, 128} is a batch of 8 curves with 128 steps each.
type Shape = tensor.Shape

// Dense is a row-major tensor of curve values.
type Dense[T Float | bool] = tensor.Dense[T]

// Mask is a boolean validity mask; true marks a valid position.
type Mask = tensor.Mask

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice[T Float | bool](data []T, shape Shape) (*Dense[T], error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[T Float | bool](data []T, shape Shape) *Dense[T] {
	return tensor.MustFromSlice(data, shape)
}

// Vector creates a 1-D tensor.
func Vector[T Float | bool](values ...T) *Dense[T] {
	return tensor.Vector(values...)
}

// MaskFromSlice creates a mask from booleans.
func MaskFromSlice(valid []bool, shape Shape) (*Mask, error) {
	return tensor.MaskFromSlice(valid, shape)
}

// MaskFromLengths builds a (len(lengths), maxLen) padding mask.
func MaskFromLengths(lengths []int, maxLen int) (*Mask, error) {
	return tensor.MaskFromLengths(lengths, maxLen)
}
