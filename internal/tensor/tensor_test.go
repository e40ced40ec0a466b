package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"batch x seq", Shape{2, 3}, 6},
		{"empty batch", Shape{0, 128}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.NumElements())
		})
	}
}

func TestShape_Validate(t *testing.T) {
	assert.NoError(t, Shape{0, 3}.Validate())
	assert.Error(t, Shape{2, -1}.Validate())
}

func TestShape_EqualAndString(t *testing.T) {
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.False(t, Shape{6}.Equal(Shape{2, 3}))
	assert.Equal(t, "(2, 3)", Shape{2, 3}.String())
}

func TestFromSlice(t *testing.T) {
	src := []float32{1, 2, 3, 4, 5, 6}
	d, err := FromSlice(src, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Float32, d.DType())
	assert.Equal(t, 6, d.NumElements())
	assert.Equal(t, float32(6), d.At(1, 2))
	assert.Equal(t, float32(2), d.At(0, 1))

	// Data is copied.
	src[0] = 100
	assert.Equal(t, float32(1), d.At(0, 0))

	_, err = FromSlice(src, Shape{4})
	assert.Error(t, err)
}

type meters float64

func TestDType_NamedFloat(t *testing.T) {
	d := Vector[meters](1, 2)
	assert.Equal(t, Float64, d.DType())
	assert.Equal(t, Bool, Vector(true).DType())
}

func TestFlatten(t *testing.T) {
	d := MustFromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	flat := d.Flatten()
	assert.True(t, flat.Shape().Equal(Shape{4}))

	// Shares data.
	flat.Data()[3] = 9
	assert.Equal(t, 9.0, d.At(1, 1))

	c := d.Clone()
	c.Data()[0] = -1
	assert.Equal(t, 1.0, d.At(0, 0))
}

func TestMaskFromLengths(t *testing.T) {
	m, err := MaskFromLengths([]int{3, 1, 0}, 4)
	require.NoError(t, err)

	assert.True(t, m.Shape().Equal(Shape{3, 4}))
	assert.Equal(t, []bool{
		true, true, true, false,
		true, false, false, false,
		false, false, false, false,
	}, m.Data())
	assert.Equal(t, int64(4), CountTrue(m))

	_, err = MaskFromLengths([]int{5}, 4)
	assert.Error(t, err)
	_, err = MaskFromLengths([]int{1}, -1)
	assert.Error(t, err)
}

func TestMaskedSelect(t *testing.T) {
	d := MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	m, err := MaskFromSlice([]bool{true, false, true, false, true, false}, Shape{2, 3})
	require.NoError(t, err)

	sel := MaskedSelect(d, m)
	assert.True(t, sel.Shape().Equal(Shape{3}))
	assert.Equal(t, []float32{1, 3, 5}, sel.Data())
}

func TestReductions(t *testing.T) {
	a := Vector[float32](1, 2, 3, 4)
	b := Vector[float32](1, 1, 1, 1)

	assert.InDelta(t, 10.0, Sum(a), 1e-12)
	assert.InDelta(t, 30.0, SumSquares(a), 1e-12)
	assert.InDelta(t, 0+1+4+9, SumSquaredDiff(a, b), 1e-12)

	// Inputs untouched.
	assert.Equal(t, []float32{1, 2, 3, 4}, a.Data())
}

func TestCountClose(t *testing.T) {
	pred := Vector(1.0, 2.0, 3.0)
	target := Vector(1.1, 2.0, 2.5)

	assert.Equal(t, int64(2), CountClose(pred, target, 0.2, nil))
	assert.Equal(t, int64(3), CountClose(pred, target, 0.5, nil))

	mask := Vector(false, true, true)
	assert.Equal(t, int64(1), CountClose(pred, target, 0.2, mask))

	nan := Vector(math.NaN(), 2.0, 3.0)
	assert.Equal(t, int64(2), CountClose(nan, Vector(1.0, 2.0, 3.0), 10, nil))
}
