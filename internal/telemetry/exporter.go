// Package telemetry exports devpulse headline metrics to an OpenTelemetry
// collector over OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blackwell-systems/devpulse/internal/config"
)

const serviceName = "devpulse"

// Headline is the set of metrics `devpulse track` snapshots.
type Headline struct {
	CurrentStreak  int
	LongestStreak  int
	TodayScore     *float64 // nil when nothing was logged today
	TodayCoding    float64
	WeekCoding     float64
	WeekActiveDays int
}

// Exporter publishes headline metrics.
type Exporter interface {
	Export(ctx context.Context, h Headline) error
	Close(ctx context.Context) error
}

// OTLPExporter records headline metrics on an OpenTelemetry meter provider.
type OTLPExporter struct {
	provider    *sdkmetric.MeterProvider
	streakHist  metric.Int64Histogram
	scoreHist   metric.Float64Histogram
	minutesHist metric.Float64Histogram
	activeHist  metric.Int64Histogram
	exportTotal metric.Int64Counter
}

// New creates an exporter that pushes to the OTLP/gRPC endpoint in cfg.
func New(ctx context.Context, cfg config.Telemetry, version string) (*OTLPExporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, errors.New("telemetry is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return newWithReader(ctx, sdkmetric.NewPeriodicReader(exp), version)
}

// newWithReader builds the meter provider and instruments on reader.
func newWithReader(ctx context.Context, reader sdkmetric.Reader, version string) (*OTLPExporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	e := &OTLPExporter{provider: provider}

	if e.streakHist, err = meter.Int64Histogram(
		"devpulse_streak_days",
		metric.WithDescription("Streak length in days, by kind (current, longest)"),
		metric.WithUnit("d"),
	); err != nil {
		return nil, fmt.Errorf("creating streak histogram: %w", err)
	}

	if e.scoreHist, err = meter.Float64Histogram(
		"devpulse_today_score",
		metric.WithDescription("Streak-aware score for today"),
	); err != nil {
		return nil, fmt.Errorf("creating score histogram: %w", err)
	}

	if e.minutesHist, err = meter.Float64Histogram(
		"devpulse_coding_minutes",
		metric.WithDescription("Coding minutes, by window (today, 7d)"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating minutes histogram: %w", err)
	}

	if e.activeHist, err = meter.Int64Histogram(
		"devpulse_active_days",
		metric.WithDescription("Days with coding in the trailing week"),
		metric.WithUnit("d"),
	); err != nil {
		return nil, fmt.Errorf("creating active days histogram: %w", err)
	}

	if e.exportTotal, err = meter.Int64Counter(
		"devpulse_snapshots_total",
		metric.WithDescription("Number of headline snapshots exported"),
		metric.WithUnit("{snapshot}"),
	); err != nil {
		return nil, fmt.Errorf("creating snapshot counter: %w", err)
	}

	return e, nil
}

// Export records h. Today's score is skipped when absent.
func (e *OTLPExporter) Export(ctx context.Context, h Headline) error {
	e.streakHist.Record(ctx, int64(h.CurrentStreak), metric.WithAttributes(attribute.String("kind", "current")))
	e.streakHist.Record(ctx, int64(h.LongestStreak), metric.WithAttributes(attribute.String("kind", "longest")))
	if h.TodayScore != nil {
		e.scoreHist.Record(ctx, *h.TodayScore)
	}
	e.minutesHist.Record(ctx, h.TodayCoding, metric.WithAttributes(attribute.String("window", "today")))
	e.minutesHist.Record(ctx, h.WeekCoding, metric.WithAttributes(attribute.String("window", "7d")))
	e.activeHist.Record(ctx, int64(h.WeekActiveDays))
	e.exportTotal.Add(ctx, 1)
	return nil
}

// Close flushes pending metrics and shuts the provider down.
func (e *OTLPExporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

// NoOp is an Exporter that discards everything.
type NoOp struct{}

// Export implements Exporter.
func (NoOp) Export(context.Context, Headline) error {
	return nil
}

// Close implements Exporter.
func (NoOp) Close(context.Context) error {
	return nil
}

// FromConfig returns an OTLP exporter when telemetry is enabled and a NoOp
// otherwise. Setup failures are logged and degrade to NoOp.
func FromConfig(ctx context.Context, cfg config.Telemetry, version string, logger *slog.Logger) Exporter {
	if !cfg.Enabled {
		return NoOp{}
	}
	exp, err := New(ctx, cfg, version)
	if err != nil {
		logger.Warn("telemetry disabled", "endpoint", cfg.Endpoint, "error", err)
		return NoOp{}
	}
	logger.Info("telemetry enabled", "endpoint", cfg.Endpoint)
	return exp
}
