// Package tensor provides the dense curve tensors and boolean masks that the
// metric accumulators consume.
package tensor

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Float is the constraint for curve element types.
type Float interface {
	constraints.Float
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Bool
)

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// inferDataType infers DataType from a generic element type.
func inferDataType[T Float | bool](dummy T) DataType {
	switch any(dummy).(type) {
	case bool:
		return Bool
	case float32:
		return Float32
	case float64:
		return Float64
	}
	// Named float types (~float32, ~float64).
	if unsafe.Sizeof(dummy) == 4 {
		return Float32
	}
	return Float64
}
