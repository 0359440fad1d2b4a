package telemetry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/blackwell-systems/devpulse/internal/config"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOTLPExporter_RecordsHeadline(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	exp, err := newWithReader(context.Background(), reader, "test")
	require.NoError(t, err)
	defer func() { _ = exp.Close(context.Background()) }()

	score := 41.5
	require.NoError(t, exp.Export(context.Background(), Headline{
		CurrentStreak:  3,
		LongestStreak:  5,
		TodayScore:     &score,
		TodayCoding:    45,
		WeekCoding:     200,
		WeekActiveDays: 4,
	}))

	metrics := collect(t, reader)

	streak, ok := metrics["devpulse_streak_days"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, streak.DataPoints, 2, "one point per kind")

	scoreHist, ok := metrics["devpulse_today_score"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, scoreHist.DataPoints, 1)
	assert.Equal(t, 41.5, scoreHist.DataPoints[0].Sum)

	minutes, ok := metrics["devpulse_coding_minutes"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, minutes.DataPoints, 2)

	total, ok := metrics["devpulse_snapshots_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(1), total.DataPoints[0].Value)
}

func TestOTLPExporter_SkipsMissingScore(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	exp, err := newWithReader(context.Background(), reader, "test")
	require.NoError(t, err)
	defer func() { _ = exp.Close(context.Background()) }()

	require.NoError(t, exp.Export(context.Background(), Headline{LongestStreak: 2}))

	metrics := collect(t, reader)
	_, found := metrics["devpulse_today_score"]
	assert.False(t, found)
}

func TestNew_RequiresEnabledEndpoint(t *testing.T) {
	_, err := New(context.Background(), config.Telemetry{Enabled: false, Endpoint: "localhost:4317"}, "test")
	assert.Error(t, err)

	_, err = New(context.Background(), config.Telemetry{Enabled: true}, "test")
	assert.Error(t, err)
}

func TestFromConfig_DisabledIsNoOp(t *testing.T) {
	exp := FromConfig(context.Background(), config.Telemetry{}, "test", slog.New(slog.DiscardHandler))
	assert.IsType(t, NoOp{}, exp)
	assert.NoError(t, exp.Export(context.Background(), Headline{}))
	assert.NoError(t, exp.Close(context.Background()))
}

func TestFromConfig_MissingEndpointDegrades(t *testing.T) {
	exp := FromConfig(context.Background(), config.Telemetry{Enabled: true}, "test", slog.New(slog.DiscardHandler))
	assert.IsType(t, NoOp{}, exp)
}
