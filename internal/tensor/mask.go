package tensor

import "fmt"

// Mask is a boolean validity mask. true marks a valid (non-padding) position.
// A nil *Mask means every position is valid.
type Mask = Dense[bool]

// MaskFromSlice creates a mask from booleans.
func MaskFromSlice(valid []bool, shape Shape) (*Mask, error) {
	return FromSlice(valid, shape)
}

// MaskFromLengths builds a (len(lengths), maxLen) padding mask where row i has
// its first lengths[i] positions marked valid.
//
// Example:
//
//	mask, _ := tensor.MaskFromLengths([]int{3, 1}, 4)
//	// [[true true true false]
//	//  [true false false false]]
func MaskFromLengths(lengths []int, maxLen int) (*Mask, error) {
	if maxLen < 0 {
		return nil, fmt.Errorf("mask from lengths: negative max length %d", maxLen)
	}
	m, err := Zeros[bool](Shape{len(lengths), maxLen})
	if err != nil {
		return nil, err
	}
	data := m.Data()
	for row, n := range lengths {
		if n < 0 || n > maxLen {
			return nil, fmt.Errorf("mask from lengths: length %d at row %d out of range [0, %d]", n, row, maxLen)
		}
		for j := 0; j < n; j++ {
			data[row*maxLen+j] = true
		}
	}
	return m, nil
}

// CountTrue returns the number of true entries in the mask.
func CountTrue(m *Mask) int64 {
	var n int64
	for _, v := range m.Data() {
		if v {
			n++
		}
	}
	return n
}

// MaskedSelect returns the 1-D sequence of elements of t where mask is true,
// in row-major order. The caller must ensure shapes match.
func MaskedSelect[T Float](t *Dense[T], mask *Mask) *Dense[T] {
	valid := mask.Data()
	out := make([]T, 0, len(valid))
	for i, v := range t.Data() {
		if valid[i] {
			out = append(out, v)
		}
	}
	return &Dense[T]{shape: Shape{len(out)}, data: out}
}
