package otlp

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"

	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/exporter"
	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/processor"
)

type logsServiceServer struct {
	exporterSvc exporter.Exporter
	collogspb.UnimplementedLogsServiceServer
}

// NewServer returns a LogsServiceServer backed by the provided Exporter.
func NewServer(svc exporter.Exporter) collogspb.LogsServiceServer {
	return &logsServiceServer{exporterSvc: svc}
}

func (l *logsServiceServer) Export(ctx context.Context, request *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	// Use the span started by the gRPC OTel interceptor.
	span := oteltrace.SpanFromContext(ctx)

	slog.DebugContext(ctx, "Received ExportLogsServiceRequest")

	var receivedCount int64

	var enqueuedCount int64

	var droppedCount int64

	for _, rl := range request.GetResourceLogs() {
		// Safe even if Resource is nil; GetAttributes() returns nil in that case.
		resAttrs := rl.GetResource().GetAttributes()

		for _, sl := range rl.GetScopeLogs() {
			scopeAttrs := sl.GetScope().GetAttributes()

			for _, rec := range sl.GetLogRecords() {
				receivedCount++

				it := processor.Item{
					Record:        rec,
					ScopeAttrs:    scopeAttrs,
					ResourceAttrs: resAttrs,
				}
				if l.exporterSvc.Enqueue(it) {
					enqueuedCount++
				} else {
					droppedCount++
				}
			}
		}
	}

	// Update metrics once per request.
	l.exporterSvc.IncrMetric(ctx, exporter.MetricRecordsReceived, receivedCount)
	l.exporterSvc.IncrMetric(ctx, exporter.MetricRecordsDropped, droppedCount)

	resp := &collogspb.ExportLogsServiceResponse{}
	if droppedCount > 0 {
		resp.PartialSuccess = &collogspb.ExportLogsPartialSuccess{
			RejectedLogRecords: droppedCount,
			ErrorMessage:       "ingestion queue full",
		}
	}
	// Add summary attributes to the RPC span and exit debug log
	span.SetAttributes(
		attribute.Int64("logs.received", receivedCount),
		attribute.Int64("logs.enqueued", enqueuedCount),
		attribute.Int64("logs.dropped", droppedCount),
	)
	slog.DebugContext(
		ctx,
		"Completed ExportLogsServiceRequest",
		slog.Int64("received", receivedCount),
		slog.Int64("enqueued", enqueuedCount),
		slog.Int64("dropped", droppedCount),
	)

	return resp, nil
}
