package sink

import (
	"context"
	"io"
	"os"
	"sync"
)

var newline = []byte{'\n'}

// LineSink writes each published document as a single line to an io.Writer.
// A mutex keeps lines from interleaving when multiple RPCs publish at once.
type LineSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineSink creates a line sink writing to the provided writer.
func NewLineSink(w io.Writer) *LineSink { return &LineSink{w: w} }

// NewStdoutLineSink returns a line sink that writes to os.Stdout.
func NewStdoutLineSink() *LineSink { return &LineSink{w: os.Stdout} }

// Publish writes the document followed by a newline.
func (s *LineSink) Publish(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(line); err != nil {
		return err
	}
	_, err := s.w.Write(newline)
	return err
}
