package export

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/curvemetrics/internal/metric"
	"github.com/born-ml/curvemetrics/internal/tensor"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]map[string]float64)
	for _, mf := range families {
		byLabel := make(map[string]float64)
		for _, m := range mf.GetMetric() {
			byLabel[labelValue(m, "metric")] = sampleValue(mf.GetType(), m)
		}
		out[mf.GetName()] = byLabel
	}
	return out
}

func metricType(t *testing.T, reg *prometheus.Registry, name string) dto.MetricType {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetType()
		}
	}
	t.Fatalf("metric family %s not found", name)
	return 0
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func sampleValue(typ dto.MetricType, m *dto.Metric) float64 {
	if typ == dto.MetricType_COUNTER {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestCollector(t *testing.T) {
	acc, err := metric.NewToleranceAccuracy(0.2, metric.WithName("acc"))
	require.NoError(t, err)
	r2, err := metric.NewR2Score[float64](metric.WithName("r2"))
	require.NoError(t, err)
	c, err := metric.NewCollection[float64](acc, r2)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector("eval", c, nil)))

	// Before any update the values are NaN and counts are zero.
	got := gather(t, reg)
	assert.True(t, math.IsNaN(got["eval_curve_metric_value"]["acc"]))
	assert.Equal(t, 0.0, got["eval_curve_metric_count"]["r2"])

	require.NoError(t, c.Update(tensor.Vector(1.0, 2.0, 3.0, 4.0), tensor.Vector(1.0, 2.0, 3.0, 4.0), nil))

	got = gather(t, reg)
	assert.Equal(t, 1.0, got["eval_curve_metric_value"]["acc"])
	assert.Equal(t, 1.0, got["eval_curve_metric_value"]["r2"])
	assert.Equal(t, 4.0, got["eval_curve_metric_count"]["acc"])
	assert.Equal(t, 4.0, got["eval_curve_metric_count"]["r2"])

	assert.Equal(t, dto.MetricType_GAUGE, metricType(t, reg, "eval_curve_metric_count"))
	assert.Equal(t, dto.MetricType_GAUGE, metricType(t, reg, "eval_curve_metric_value"))

	// An epoch reset brings the count back to zero.
	require.NoError(t, c.Reset())
	got = gather(t, reg)
	assert.Equal(t, 0.0, got["eval_curve_metric_count"]["acc"])
	assert.True(t, math.IsNaN(got["eval_curve_metric_value"]["r2"]))
	assert.Equal(t, dto.MetricType_GAUGE, metricType(t, reg, "eval_curve_metric_count"))
}
