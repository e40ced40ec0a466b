package metric

import (
	"fmt"
	"slices"
)

// ReduceOp is the operator used to combine a state field across replicas.
type ReduceOp int

// Supported reduce ops. Only summation is needed by the curve metrics.
const (
	ReduceSum ReduceOp = iota
)

// String returns the op name.
func (op ReduceOp) String() string {
	switch op {
	case ReduceSum:
		return "sum"
	default:
		return "unknown"
	}
}

// Identity returns the identity element for op, the value a field takes on reset.
func (op ReduceOp) Identity() float64 {
	return 0
}

// Combine applies op to two field values.
func (op ReduceOp) Combine(a, b float64) (float64, error) {
	switch op {
	case ReduceSum:
		return a + b, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedReducer, int(op))
	}
}

// FieldStore is the capability a metric needs from its host framework:
// named scalar state fields with a declared cross-replica reduce op.
//
// Counts are stored as float64 and stay exact up to 2^53.
type FieldStore interface {
	Declare(name string, op ReduceOp) error
	Get(name string) (float64, error)
	Set(name string, value float64) error
}

// Fields is the in-memory FieldStore. Declaration order is preserved.
// Fields is not safe for concurrent use; give each worker its own.
type Fields struct {
	order  []string
	ops    map[string]ReduceOp
	values map[string]float64
}

// NewFields creates an empty field store.
func NewFields() *Fields {
	return &Fields{
		ops:    make(map[string]ReduceOp),
		values: make(map[string]float64),
	}
}

// Declare registers a field initialized to the op's identity.
func (f *Fields) Declare(name string, op ReduceOp) error {
	if _, ok := f.ops[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	if op != ReduceSum {
		return fmt.Errorf("%w: %d", ErrUnsupportedReducer, int(op))
	}
	f.order = append(f.order, name)
	f.ops[name] = op
	f.values[name] = op.Identity()
	return nil
}

// Get returns the current value of a field.
func (f *Fields) Get(name string) (float64, error) {
	v, ok := f.values[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return v, nil
}

// Set overwrites the value of a declared field.
func (f *Fields) Set(name string, value float64) error {
	if _, ok := f.values[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.values[name] = value
	return nil
}

// Names returns the declared field names in declaration order.
func (f *Fields) Names() []string {
	return slices.Clone(f.order)
}

// Op returns the reduce op of a declared field.
func (f *Fields) Op(name string) (ReduceOp, bool) {
	op, ok := f.ops[name]
	return op, ok
}

// Values returns a copy of all field values.
func (f *Fields) Values() map[string]float64 {
	out := make(map[string]float64, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Reset sets every field back to its op's identity.
func (f *Fields) Reset() {
	for _, name := range f.order {
		f.values[name] = f.ops[name].Identity()
	}
}

// Merge combines other into f field by field.
// Both stores must declare the same fields with the same ops.
func (f *Fields) Merge(other *Fields) error {
	if len(f.order) != len(other.order) {
		return fmt.Errorf("%w: %v vs %v", ErrIncompatibleState, f.order, other.order)
	}
	for _, name := range f.order {
		op := f.ops[name]
		if otherOp, ok := other.ops[name]; !ok || otherOp != op {
			return fmt.Errorf("%w: field %q", ErrIncompatibleState, name)
		}
	}
	for _, name := range f.order {
		v, err := f.ops[name].Combine(f.values[name], other.values[name])
		if err != nil {
			return err
		}
		f.values[name] = v
	}
	return nil
}
