// Package snapshot encodes metric state fields for transfer between processes.
//
// A snapshot is a protobuf-encoded google.protobuf.Struct:
//
//	{
//	  "version": 1,
//	  "metric":  "r2_score",
//	  "order":   ["sum_squared_target", "sum_target", ...],
//	  "fields":  {"sum_squared_target": 30, "sum_target": 10, ...}
//	}
//
// Workers in a multi-process evaluation encode their fields, ship the bytes,
// and the coordinator sums them into its own metric with AddTo before
// computing the final value.
//
// Example usage:
//
//	data, err := snapshot.EncodeMetric[float32](r2)
//	// ... send data ...
//	snap, err := snapshot.Decode(data)
//	err = snapshot.AddToMetric(snap, globalR2)
package snapshot
