package metric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/curvemetrics/internal/tensor"
)

func TestFields_DeclareGetSet(t *testing.T) {
	f := NewFields()
	require.NoError(t, f.Declare("a", ReduceSum))
	require.NoError(t, f.Declare("b", ReduceSum))

	assert.ErrorIs(t, f.Declare("a", ReduceSum), ErrDuplicateField)
	assert.ErrorIs(t, f.Declare("c", ReduceOp(7)), ErrUnsupportedReducer)

	v, err := f.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	require.NoError(t, f.Set("b", 4.5))
	v, err = f.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = f.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.ErrorIs(t, f.Set("missing", 1), ErrUnknownField)

	assert.Equal(t, []string{"a", "b"}, f.Names())
	op, ok := f.Op("a")
	assert.True(t, ok)
	assert.Equal(t, "sum", op.String())
}

func TestFields_ResetAndMerge(t *testing.T) {
	newStore := func(a, b float64) *Fields {
		f := NewFields()
		require.NoError(t, f.Declare("a", ReduceSum))
		require.NoError(t, f.Declare("b", ReduceSum))
		require.NoError(t, f.Set("a", a))
		require.NoError(t, f.Set("b", b))
		return f
	}

	x := newStore(1, 2)
	require.NoError(t, x.Merge(newStore(10, 20)))
	assert.Equal(t, map[string]float64{"a": 11, "b": 22}, x.Values())

	x.Reset()
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, x.Values())

	other := NewFields()
	require.NoError(t, other.Declare("a", ReduceSum))
	require.NoError(t, other.Declare("z", ReduceSum))
	assert.ErrorIs(t, x.Merge(other), ErrIncompatibleState)
	assert.ErrorIs(t, x.Merge(NewFields()), ErrIncompatibleState)
}

// failingStore errors on every Set.
type failingStore struct {
	*Fields
}

func (s failingStore) Set(string, float64) error {
	return errors.New("store unavailable")
}

func TestMetric_StoreErrorsPropagate(t *testing.T) {
	acc, err := NewToleranceAccuracy(0.1, WithStore(failingStore{NewFields()}))
	require.NoError(t, err)

	err = acc.Update(tensor.Vector(1.0), tensor.Vector(1.0), nil)
	assert.EqualError(t, err, "store unavailable")
	assert.Error(t, acc.Reset())
}

// fieldFailingStore errors on Set for a single field name.
type fieldFailingStore struct {
	*Fields
	failOn string
	armed  bool
}

func (s *fieldFailingStore) Set(name string, value float64) error {
	if s.armed && name == s.failOn {
		return errors.New("host store unavailable")
	}
	return s.Fields.Set(name, value)
}

func TestMetric_FailedSaveRollsBack(t *testing.T) {
	t.Run("tolerance accuracy", func(t *testing.T) {
		store := &fieldFailingStore{Fields: NewFields(), failOn: FieldTotalCount}
		acc, err := NewToleranceAccuracy(0.1, WithStore(store))
		require.NoError(t, err)
		require.NoError(t, acc.Update(tensor.Vector(1.0, 5.0), tensor.Vector(1.0, 2.0), nil))

		store.armed = true
		err = acc.Update(tensor.Vector(1.0, 2.0), tensor.Vector(1.0, 2.0), nil)
		assert.EqualError(t, err, "host store unavailable")

		s, err := acc.State()
		require.NoError(t, err)
		assert.Equal(t, AccuracyState{CloseCount: 1, TotalCount: 2}, s)

		v, err := acc.Compute()
		require.NoError(t, err)
		assert.Equal(t, 0.5, v)
	})

	t.Run("r2 score", func(t *testing.T) {
		store := &fieldFailingStore{Fields: NewFields(), failOn: FieldTotalCount}
		r2, err := NewR2Score[float64](WithStore(store))
		require.NoError(t, err)
		require.NoError(t, r2.Update(tensor.Vector(1.0, 2.0), tensor.Vector(1.0, 3.0), nil))
		before, err := r2.State()
		require.NoError(t, err)

		store.armed = true
		err = r2.Update(tensor.Vector(4.0), tensor.Vector(5.0), nil)
		assert.Error(t, err)

		after, err := r2.State()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestMetric_SharedStoreConflicts(t *testing.T) {
	store := NewFields()
	_, err := NewToleranceAccuracy(0.1, WithStore(store))
	require.NoError(t, err)

	// Both metrics declare total_count.
	_, err = NewR2Score[float64](WithStore(store))
	assert.ErrorIs(t, err, ErrDuplicateField)
}
