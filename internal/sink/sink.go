package sink

import "context"

//go:generate mockgen -source=sink.go -destination=./mocks/mock_sink.go -package=mocks

// Sink publishes finalized JSON documents. The line slice aliases a buffer the
// caller reuses, so implementations must not retain it after Publish returns.
type Sink interface {
	Publish(ctx context.Context, line []byte) error
}
