package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"edusight/internal/config"
)

const (
	ServiceName = "edusight"
	MeterName   = "edusight"
)

// Telemetry holds the tracer and meter of one batch run. Spans are written
// to the configured trace file; metrics are gathered into a private
// Prometheus registry and dumped in textfile format on Shutdown.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Metrics        *RunMetrics

	registry    *prometheus.Registry
	traceFile   *os.File
	metricsFile string
	logger      *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics for the named command.
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, command string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("edusight.command", command),
		attribute.String("edusight.run_id", GetTraceID(ctx)),
	)

	t := &Telemetry{
		registry:    prometheus.NewRegistry(),
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceFile != "" {
		f, err := openLogFile(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceFile = f
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
	}
	t.TracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Metrics, err = NewRunMetrics(t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion)))
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Telemetry initialized",
		slog.String("command", command),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// Gatherer exposes the run's metric registry
func (t *Telemetry) Gatherer() prometheus.Gatherer {
	return t.registry
}

// StartStage opens a span for one pipeline stage and returns a function
// that ends it, recording the stage duration and any error.
func (t *Telemetry) StartStage(ctx context.Context, stage string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := t.Tracer.Start(ctx, stage)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		t.Metrics.stageDuration(ctx, stage, time.Since(start), err == nil)
	}
}

// Shutdown writes the metrics textfile and flushes the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.metricsFile != "" {
		if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		}
	}

	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
	}
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// RunMetrics are the counters a batch run reports
type RunMetrics struct {
	filesLoaded    metric.Int64Counter
	filesFailed    metric.Int64Counter
	rowsLoaded     metric.Int64Counter
	rowsDropped    metric.Int64Counter
	outputsWritten metric.Int64Counter
	stageSeconds   metric.Float64Histogram
}

// NewRunMetrics creates the run instruments on meter
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	var (
		m   RunMetrics
		err error
	)

	if m.filesLoaded, err = meter.Int64Counter("edusight_files_loaded",
		metric.WithDescription("Input files loaded successfully")); err != nil {
		return nil, err
	}
	if m.filesFailed, err = meter.Int64Counter("edusight_files_failed",
		metric.WithDescription("Input files that could not be loaded")); err != nil {
		return nil, err
	}
	if m.rowsLoaded, err = meter.Int64Counter("edusight_rows_loaded",
		metric.WithDescription("Rows loaded per dataset")); err != nil {
		return nil, err
	}
	if m.rowsDropped, err = meter.Int64Counter("edusight_rows_dropped",
		metric.WithDescription("Rows dropped by cleaning or joins")); err != nil {
		return nil, err
	}
	if m.outputsWritten, err = meter.Int64Counter("edusight_outputs_written",
		metric.WithDescription("Derived files written")); err != nil {
		return nil, err
	}
	if m.stageSeconds, err = meter.Float64Histogram("edusight_stage_duration",
		metric.WithDescription("Pipeline stage duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return &m, nil
}

// FileLoaded counts a loaded input file of the given kind (scores, workbook, csv)
func (m *RunMetrics) FileLoaded(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.filesLoaded.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// FileFailed counts an input file that was skipped
func (m *RunMetrics) FileFailed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.filesFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RowsLoaded counts rows that entered a dataset
func (m *RunMetrics) RowsLoaded(ctx context.Context, dataset string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsLoaded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("dataset", dataset)))
}

// RowsDropped counts rows removed from a dataset
func (m *RunMetrics) RowsDropped(ctx context.Context, dataset string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("dataset", dataset)))
}

// OutputWritten counts a derived file (csv, xlsx, png)
func (m *RunMetrics) OutputWritten(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.outputsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *RunMetrics) stageDuration(ctx context.Context, stage string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.stageSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", ok)))
}
