package dial

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/papercomputeco/dialchat/pkg/llm"
	"github.com/papercomputeco/dialchat/pkg/sse"
	"github.com/papercomputeco/dialchat/pkg/stream"
)

// Stream is one in-flight streamed reply. Fragments are pulled with Next;
// nothing is read from the connection between calls.
//
// A Stream is not safe for concurrent use. Close must be called on every
// path; it releases the connection and ends the request span.
type Stream struct {
	body   io.ReadCloser
	reader *sse.Reader
	agg    *stream.Aggregator
	span   trace.Span
	logger *slog.Logger
	client *Client

	closed    bool
	abandoned bool
}

func newStream(body io.ReadCloser, span trace.Span, c *Client) *Stream {
	var src io.Reader = body
	if c.trace != nil {
		src = io.TeeReader(body, c.trace)
	}

	var readerOpts []sse.ReaderOption
	if c.chunkSize > 0 {
		readerOpts = append(readerOpts, sse.WithChunkSize(c.chunkSize))
	}
	reader := sse.NewReader(src, readerOpts...)

	return &Stream{
		body:   body,
		reader: reader,
		agg:    stream.NewAggregator(reader, stream.WithLogger(c.logger)),
		span:   span,
		logger: c.logger,
		client: c,
	}
}

// Next returns the next fragment, or io.EOF once the reply is complete.
// After Close it returns io.EOF only if the reply had already completed,
// ErrStreamClosed otherwise.
func (s *Stream) Next() (string, error) {
	if s.abandoned {
		return "", ErrStreamClosed
	}
	return s.agg.Next()
}

// Drain pushes every remaining fragment to fn and returns the assembled
// message.
func (s *Stream) Drain(fn func(string) error) (llm.Message, error) {
	if s.abandoned {
		return llm.Message{}, ErrStreamClosed
	}
	return s.agg.Drain(fn)
}

// Message returns the assembled reply once Next has returned io.EOF.
func (s *Stream) Message() (llm.Message, error) {
	if s.abandoned {
		return llm.Message{}, ErrStreamClosed
	}
	return s.agg.Message()
}

// Stats reports what the stream has seen so far.
func (s *Stream) Stats() stream.Stats {
	return s.agg.Stats()
}

// Close drops buffered bytes, closes the response body and ends the span.
// Closing before the reply completed abandons it: the fragments received so
// far are discarded and later reads fail with ErrStreamClosed. It is safe to
// call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.abandoned = s.agg.State() == stream.StateOpen

	if n := s.reader.Discarded(); n > 0 {
		s.logger.Debug("dropped unterminated trailing line", "bytes", n)
	}
	s.reader.Close()
	err := s.body.Close()

	stats := s.agg.Stats()
	s.span.SetAttributes(
		attribute.Int("dial.stream.fragments", stats.Fragments),
		attribute.Int("dial.stream.malformed", stats.Malformed),
		attribute.Bool("dial.stream.end_marker", stats.EndMarker),
	)
	if s.abandoned {
		recordError(s.span, ErrStreamClosed)
	} else if _, msgErr := s.agg.Message(); msgErr != nil {
		recordError(s.span, msgErr)
	}
	s.span.End()

	s.client.dumpStreamFooter("\n")
	return err
}
