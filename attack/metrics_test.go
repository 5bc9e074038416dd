package attack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := m3(t)
	_, cipher := intercept(t, m, trueSettings, 120)
	e := newEngine(t, nil, nil)
	r := Range{Machine: m, Reflectors: []string{"B"}, Orders: [][]string{{"II", "I", "III"}},
		Rings: "FBC", Positions: []string{"AAA", "KDO", "QWE"}}
	_, err := e.Phase1(context.Background(), r, cipher)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != meterName {
			continue
		}
		for _, mt := range sm.Metrics {
			got[mt.Name] = mt.Data
		}
	}
	require.Contains(t, got, "mzenigma_attack_duration_seconds")

	sum, ok := got["mzenigma_attack_candidates_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	require.Equal(t, int64(3), total)
}
