package lambdahttp

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink is a write-only stream that accumulates every chunk written to it.
// Chunks are kept in call order and concatenated lazily when the full body is
// requested. Writes never fail; a closed sink drops further chunks so a late
// writer cannot corrupt an already-finalized body.
//
// Sink is used standalone wherever plain byte accumulation is needed, and as
// the write half of Conn.
type Sink struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int64
	closed bool
}

// NewSink creates an empty sink
func NewSink() *Sink {
	return &Sink{}
}

// Write appends a copy of p to the accumulated chunks. It always reports the
// full length as written.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		logrus.WithField("bytes", len(p)).Debug("Write to closed sink dropped")
		return len(p), nil
	}

	// Callers may reuse p after Write returns
	chunk := make([]byte, len(p))
	copy(chunk, p)
	s.chunks = append(s.chunks, chunk)
	s.size += int64(len(p))
	return len(p), nil
}

// WriteString appends the string form of a chunk
func (s *Sink) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Bytes concatenates every written chunk, in call order, into one buffer
func (s *Sink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, 0, s.size)
	for _, chunk := range s.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Len returns the total number of bytes accepted so far
func (s *Sink) Len() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Close marks the sink closed. It is safe to call more than once; the
// accumulated bytes stay readable through Bytes.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether the sink has been closed
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
