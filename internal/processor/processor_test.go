package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/encode"
	"github.com/GustavPetterssonBjorklund/Json-Buffer-Writer/internal/sink"
)

type captureSink struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureSink) Publish(_ context.Context, line []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(line))
	return nil
}

func (c *captureSink) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(body string) *logspb.LogRecord {
	return &logspb.LogRecord{
		TimeUnixNano: 1,
		Body:         &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: body}},
	}
}

func TestProcessor_EncodesAndPublishes(t *testing.T) {
	cs := &captureSink{}
	p := New(encode.New(1024, 3), cs, discardLogger(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	defer func() { cancel(); p.Stop(context.Background()) }()

	require.True(t, p.Enqueue(Item{Record: record("first")}))
	require.True(t, p.Enqueue(Item{Record: record("second")}))

	require.Eventually(t, func() bool { return len(cs.snapshot()) == 2 }, 300*time.Millisecond, 5*time.Millisecond)

	lines := cs.snapshot()
	require.Contains(t, lines[0], `"body":"first"`)
	require.Contains(t, lines[1], `"body":"second"`)

	// Each line must be parseable on its own.
	for _, line := range lines {
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &doc))
	}
}

func TestProcessor_EnqueueFullQueue(t *testing.T) {
	// maxQueue=0 and no Start; every Enqueue must be refused.
	p := New(encode.New(1024, 3), &captureSink{}, discardLogger(), 0)

	require.False(t, p.Enqueue(Item{Record: record("v")}))
}

func TestProcessor_OversizedRecordCounted(t *testing.T) {
	cs := &captureSink{}
	p := New(encode.New(48, 3), cs, discardLogger(), 10)

	var overflow atomic.Int64
	p.SetMetricsCallbacks(nil, func(n int64) { overflow.Add(n) }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	defer func() { cancel(); p.Stop(context.Background()) }()

	require.True(t, p.Enqueue(Item{Record: record(strings.Repeat("x", 100))}))
	require.True(t, p.Enqueue(Item{Record: record("ok")}))

	require.Eventually(t, func() bool { return len(cs.snapshot()) == 1 }, 300*time.Millisecond, 5*time.Millisecond)

	assert.EqualValues(t, 1, overflow.Load())
	require.Contains(t, cs.snapshot()[0], `"body":"ok"`)
}

type erroringSink struct{ calls atomic.Int64 }

func (e *erroringSink) Publish(context.Context, []byte) error {
	e.calls.Add(1)
	return context.DeadlineExceeded
}

func TestProcessor_PublishFailureCounted(t *testing.T) {
	es := &erroringSink{}
	p := New(encode.New(1024, 3), es, discardLogger(), 10)

	var failed atomic.Int64
	p.SetMetricsCallbacks(nil, nil, func(n int64) { failed.Add(n) })

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	defer func() { cancel(); p.Stop(context.Background()) }()

	require.True(t, p.Enqueue(Item{Record: record("v")}))

	require.Eventually(t, func() bool { return failed.Load() == 1 }, 300*time.Millisecond, 5*time.Millisecond)
	require.EqualValues(t, 1, es.calls.Load())
}

func TestProcessor_DrainsQueueOnShutdown(t *testing.T) {
	cs := &captureSink{}
	p := New(encode.New(1024, 3), cs, discardLogger(), 10)

	// Queue before starting so the items are pending at cancellation time.
	require.True(t, p.Enqueue(Item{Record: record("a")}))
	require.True(t, p.Enqueue(Item{Record: record("b")}))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.Stop(context.Background())

	require.Len(t, cs.snapshot(), 2)
}

func TestProcessor_QueueLen(t *testing.T) {
	p := New(encode.New(1024, 3), sink.NewLineSink(new(bytes.Buffer)), discardLogger(), 4)

	require.Zero(t, p.QueueLen())
	require.True(t, p.Enqueue(Item{Record: record("v")}))
	require.Equal(t, 1, p.QueueLen())
}
