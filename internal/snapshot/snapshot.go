package snapshot

import (
	"fmt"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/born-ml/curvemetrics/internal/metric"
	"github.com/born-ml/curvemetrics/internal/tensor"
)

// FormatVersion is the snapshot layout version written by Encode.
const FormatVersion = 1

// Snapshot is a decoded set of metric state fields.
type Snapshot struct {
	Metric string
	Order  []string
	Fields map[string]float64
}

// Encode reads fields from store and encodes them.
func Encode(name string, fields []string, store metric.FieldStore) ([]byte, error) {
	order := make([]any, len(fields))
	values := make(map[string]any, len(fields))
	for i, f := range fields {
		v, err := store.Get(f)
		if err != nil {
			return nil, err
		}
		order[i] = f
		values[f] = v
	}

	st, err := structpb.NewStruct(map[string]any{
		"version": FormatVersion,
		"metric":  name,
		"order":   order,
		"fields":  values,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(st)
}

// EncodeMetric encodes every state field of m.
func EncodeMetric[T tensor.Float](m metric.Metric[T]) ([]byte, error) {
	return Encode(m.Name(), m.FieldNames(), m.Store())
}

// Decode parses and validates an encoded snapshot.
func Decode(data []byte) (*Snapshot, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	fields := st.GetFields()

	version, ok := fields["version"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrMalformed)
	}
	if int(version.NumberValue) != FormatVersion {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, version.NumberValue)
	}

	name, ok := fields["metric"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("%w: missing metric name", ErrMalformed)
	}
	orderList := fields["order"].GetListValue()
	valueMap := fields["fields"].GetStructValue()
	if orderList == nil || valueMap == nil {
		return nil, fmt.Errorf("%w: missing fields", ErrMalformed)
	}

	snap := &Snapshot{
		Metric: name.StringValue,
		Order:  make([]string, 0, len(orderList.GetValues())),
		Fields: make(map[string]float64, len(orderList.GetValues())),
	}
	for _, item := range orderList.GetValues() {
		f, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: non-string field name", ErrMalformed)
		}
		v, ok := valueMap.GetFields()[f.StringValue].GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: field %q has no numeric value", ErrMalformed, f.StringValue)
		}
		snap.Order = append(snap.Order, f.StringValue)
		snap.Fields[f.StringValue] = v.NumberValue
	}
	if len(snap.Fields) != len(valueMap.GetFields()) {
		return nil, fmt.Errorf("%w: fields and order disagree", ErrMalformed)
	}
	return snap, nil
}

// AddTo sums the snapshot's fields into store.
func (s *Snapshot) AddTo(store metric.FieldStore) error {
	for _, f := range s.Order {
		cur, err := store.Get(f)
		if err != nil {
			return err
		}
		sum, err := metric.ReduceSum.Combine(cur, s.Fields[f])
		if err != nil {
			return err
		}
		if err := store.Set(f, sum); err != nil {
			return err
		}
	}
	return nil
}

// AddToMetric sums the snapshot into m after checking that the field layouts match.
func AddToMetric[T tensor.Float](s *Snapshot, m metric.Metric[T]) error {
	if !slices.Equal(s.Order, m.FieldNames()) {
		return fmt.Errorf("%w: snapshot of %s has %v, %s has %v",
			metric.ErrIncompatibleState, s.Metric, s.Order, m.Name(), m.FieldNames())
	}
	return s.AddTo(m.Store())
}

// Reduce decodes every snapshot and sums them into m.
func Reduce[T tensor.Float](m metric.Metric[T], snapshots ...[]byte) error {
	for i, data := range snapshots {
		snap, err := Decode(data)
		if err != nil {
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
		if err := AddToMetric(snap, m); err != nil {
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
	}
	return nil
}
