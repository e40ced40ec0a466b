package tensor

import "fmt"

// Dense is a row-major, CPU-resident tensor of curve values or mask bits.
//
// Example:
//
//	pred, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	if err != nil {
//	    return err
//	}
//	flat := pred.Flatten() // shape (6)
type Dense[T Float | bool] struct {
	shape Shape
	data  []T
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T Float | bool](data []T, shape Shape) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	buf := make([]T, len(data))
	copy(buf, data)
	return &Dense[T]{shape: shape.Clone(), data: buf}, nil
}

// MustFromSlice is like FromSlice but panics on error.
// Intended for tests and literals with known-good shapes.
func MustFromSlice[T Float | bool](data []T, shape Shape) *Dense[T] {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Vector creates a 1-D tensor from values.
func Vector[T Float | bool](values ...T) *Dense[T] {
	return MustFromSlice(values, Shape{len(values)})
}

// Zeros creates a zero-filled tensor.
func Zeros[T Float | bool](shape Shape) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Dense[T]{shape: shape.Clone(), data: make([]T, shape.NumElements())}, nil
}

// Shape returns the tensor's shape.
func (t *Dense[T]) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Dense[T]) DType() DataType {
	var dummy T
	return inferDataType(dummy)
}

// NumElements returns the total number of elements.
func (t *Dense[T]) NumElements() int {
	return len(t.data)
}

// Data returns the underlying row-major data (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Dense[T]) Data() []T {
	return t.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Dense[T]) At(indices ...int) T {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}

	offset := 0
	stride := 1
	for i := len(indices) - 1; i >= 0; i-- {
		idx := indices[i]
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * stride
		stride *= t.shape[i]
	}

	return t.data[offset]
}

// Flatten returns a 1-D view sharing the same data.
func (t *Dense[T]) Flatten() *Dense[T] {
	return &Dense[T]{shape: Shape{len(t.data)}, data: t.data}
}

// Clone creates a deep copy of the tensor.
func (t *Dense[T]) Clone() *Dense[T] {
	buf := make([]T, len(t.data))
	copy(buf, t.data)
	return &Dense[T]{shape: t.shape.Clone(), data: buf}
}

// String returns a human-readable representation of the tensor.
func (t *Dense[T]) String() string {
	return fmt.Sprintf("Dense[%s]%v", t.DType(), t.shape)
}
