package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/encode"
	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/sink"
)

// Item is one queued log record with its surrounding attribute context.
type Item struct {
	Record        *logspb.LogRecord
	ScopeAttrs    []*commonpb.KeyValue
	ResourceAttrs []*commonpb.KeyValue
}

// Processor drains a bounded queue on a single goroutine, encodes each record
// through the fixed-buffer encoder, and publishes the resulting JSON line.
// Funneling all items through one goroutine is what lets a single reusable
// buffer serve every record.
type Processor struct {
	in     chan Item
	enc    *encode.Encoder
	sink   sink.Sink
	logger *slog.Logger

	done chan struct{}

	// Optional metric callbacks provided by the owner (e.g., exporter).
	incrPublished     func(int64)
	incrOverflow      func(int64)
	incrPublishFailed func(int64)
}

func New(enc *encode.Encoder, s sink.Sink, logger *slog.Logger, maxQueue int) *Processor {
	if maxQueue < 0 {
		maxQueue = 0
	}

	return &Processor{
		in:     make(chan Item, maxQueue),
		enc:    enc,
		sink:   s,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// SetMetricsCallbacks installs optional callbacks for metrics updates.
// If not provided, metrics are not recorded by the processor.
func (p *Processor) SetMetricsCallbacks(incrPublished, incrOverflow, incrPublishFailed func(int64)) {
	p.incrPublished = incrPublished
	p.incrOverflow = incrOverflow
	p.incrPublishFailed = incrPublishFailed
}

// Enqueue attempts to add an item without blocking. Returns false if the queue
// is full.
func (p *Processor) Enqueue(it Item) bool {
	select {
	case p.in <- it:
		return true
	default:
		return false
	}
}

// Start begins the processing loop.
func (p *Processor) Start(ctx context.Context) {
	go func() {
		defer close(p.done)

		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case it := <-p.in:
				p.process(it)
			}
		}
	}()
}

// Stop waits for the loop to finish; the caller should cancel the context
// passed to Start first.
func (p *Processor) Stop(ctx context.Context) {
	select {
	case <-p.done:
		return
	case <-ctx.Done():
		return
	}
}

// drain encodes whatever is still queued at shutdown.
func (p *Processor) drain() {
	for {
		select {
		case it := <-p.in:
			p.process(it)
		default:
			return
		}
	}
}

func (p *Processor) process(it Item) {
	line, err := p.enc.EncodeRecord(it.Record, it.ScopeAttrs, it.ResourceAttrs)
	if err != nil {
		if errors.Is(err, encode.ErrBufferFull) {
			p.logger.Warn(
				"dropping record that exceeds the encoder buffer",
				slog.Uint64("timestamp", it.Record.GetTimeUnixNano()),
			)
			if p.incrOverflow != nil {
				p.incrOverflow(1)
			}
			return
		}

		p.logger.Error("failed to encode record", slog.String("err", err.Error()))
		return
	}

	if err := p.sink.Publish(context.Background(), line); err != nil {
		p.logger.Error(
			"failed to publish record",
			slog.String("err", err.Error()),
			slog.String("sink", fmt.Sprintf("%T", p.sink)),
		)

		if p.incrPublishFailed != nil {
			p.incrPublishFailed(1)
		}
		return
	}

	if p.incrPublished != nil {
		p.incrPublished(1)
	}
}

// QueueLen returns the current queue length; can be observed for metrics.
func (p *Processor) QueueLen() int { return len(p.in) }
