package exporter

//go:generate mockgen -source=exporter.go -destination=./mocks/mock_exporter.go -package=mocks

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	cfgpkg "github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/config"
	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/encode"
	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/processor"
	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/sink"
)

const instrumentationName = "github.com/GustavPetterssonBjorklund/Json-Buffer-Writer"

// Exporter is the surface the gRPC layer depends on.
type Exporter interface {
	Enqueue(it processor.Item) bool
	IncrMetric(ctx context.Context, mt MetricType, n int64)
}

// exporterSvc holds all instance-scoped dependencies and metrics.
type exporterSvc struct {
	Cfg    cfgpkg.Config
	Logger *slog.Logger
	Tracer oteltrace.Tracer
	Meter  otelmetric.Meter

	// Metrics
	RecordsReceived  otelmetric.Int64Counter
	RecordsPublished otelmetric.Int64Counter
	RecordsDropped   otelmetric.Int64Counter
	BufferOverflows  otelmetric.Int64Counter
	PublishFailed    otelmetric.Int64Counter

	Processor *processor.Processor

	outSink sink.Sink

	procCancel context.CancelFunc
}

// Option customizes the service during construction.
type Option func(*exporterSvc) error

// WithSink overrides the default stdout line sink with a custom sink (useful for tests).
func WithSink(s sink.Sink) Option {
	return func(svc *exporterSvc) error { svc.outSink = s; return nil }
}

func New(cfg cfgpkg.Config, logger *slog.Logger, opts ...Option) (*exporterSvc, error) {
	s := &exporterSvc{
		Cfg:    cfg,
		Logger: logger,
		Tracer: otel.Tracer(instrumentationName),
		Meter:  otel.Meter(instrumentationName),
	}

	var err error
	if s.RecordsReceived, err = s.Meter.Int64Counter(
		"com.github.jsonbufwriter.records.received",
		otelmetric.WithDescription("The number of log records received by the exporter"),
		otelmetric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if s.RecordsPublished, err = s.Meter.Int64Counter(
		"com.github.jsonbufwriter.records.published",
		otelmetric.WithDescription("The number of log records encoded and published as JSON lines"),
		otelmetric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if s.RecordsDropped, err = s.Meter.Int64Counter(
		"com.github.jsonbufwriter.records.dropped",
		otelmetric.WithDescription("The number of log records dropped because the ingestion queue was full"),
		otelmetric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if s.BufferOverflows, err = s.Meter.Int64Counter(
		"com.github.jsonbufwriter.buffer.overflows",
		otelmetric.WithDescription("The number of log records that did not fit in the fixed encoder buffer"),
		otelmetric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if s.PublishFailed, err = s.Meter.Int64Counter(
		"com.github.jsonbufwriter.publish.failed",
		otelmetric.WithDescription("Number of failed line publishes"),
		otelmetric.WithUnit("{failure}"),
	); err != nil {
		return nil, err
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	// Default sink to stdout lines if not set
	if s.outSink == nil {
		s.outSink = sink.NewStdoutLineSink()
	}

	// Processor owns the single fixed-buffer encoder.
	enc := encode.New(cfg.BufferSize, cfg.FloatPrecision)
	s.Processor = processor.New(enc, s.outSink, logger, cfg.MaxQueue)
	s.Processor.SetMetricsCallbacks(
		func(n int64) { s.IncrMetric(context.Background(), MetricRecordsPublished, n) },
		func(n int64) { s.IncrMetric(context.Background(), MetricBufferOverflows, n) },
		func(n int64) { s.IncrMetric(context.Background(), MetricPublishFailed, n) },
	)

	return s, nil
}

// Start starts the service's internal components (e.g., the processor).
// It is safe to call more than once; subsequent calls are no-ops until Close.
func (s *exporterSvc) Start(ctx context.Context) {
	if s.Processor == nil || s.procCancel != nil {
		return
	}

	ctx, span := s.Tracer.Start(ctx, "exporter.Start")
	defer span.End()

	s.Logger.DebugContext(ctx, "exporter.Start: begin")
	procCtx, cancel := context.WithCancel(ctx)
	s.procCancel = cancel
	s.Processor.Start(procCtx)
	s.Logger.DebugContext(ctx, "exporter.Start: started processor", slog.Int("queue_len", s.Processor.QueueLen()))
}

// Close stops the processor and waits for the queue to drain.
func (s *exporterSvc) Close(ctx context.Context) error {
	ctx, span := s.Tracer.Start(ctx, "exporter.Close")
	defer span.End()

	s.Logger.DebugContext(ctx, "exporter.Close: begin")

	if s.procCancel != nil {
		s.procCancel()

		if s.Processor != nil {
			s.Processor.Stop(ctx)
		}

		s.procCancel = nil
	}

	s.Logger.DebugContext(ctx, "exporter.Close: end")

	return nil
}

// Enqueue forwards one record to the processor without blocking.
func (s *exporterSvc) Enqueue(it processor.Item) bool {
	if s.Processor == nil {
		return false
	}
	// Use a background context for logging/tracing as this method has no ctx param
	ctx, span := s.Tracer.Start(context.Background(), "exporter.Enqueue")
	defer span.End()

	ok := s.Processor.Enqueue(it)
	span.SetAttributes(attribute.Bool("enqueued", ok), attribute.Int("queue.len", s.Processor.QueueLen()))
	s.Logger.DebugContext(ctx, "exporter.Enqueue", slog.Bool("enqueued", ok), slog.Int("queue_len", s.Processor.QueueLen()))

	return ok
}

// MetricType enumerates exporter metric counters.
type MetricType int

const (
	MetricRecordsReceived MetricType = iota
	MetricRecordsPublished
	MetricRecordsDropped
	MetricBufferOverflows
	MetricPublishFailed
)

// IncrMetric increments the selected metric by n (if n > 0).
func (s *exporterSvc) IncrMetric(ctx context.Context, mt MetricType, n int64) {
	if n <= 0 {
		return
	}

	switch mt {
	case MetricRecordsReceived:
		s.RecordsReceived.Add(ctx, n)
	case MetricRecordsPublished:
		s.RecordsPublished.Add(ctx, n)
	case MetricRecordsDropped:
		s.RecordsDropped.Add(ctx, n)
	case MetricBufferOverflows:
		s.BufferOverflows.Add(ctx, n)
	case MetricPublishFailed:
		s.PublishFailed.Add(ctx, n)
	}
}
