package sse

import (
	"errors"
	"io"
)

const defaultChunkSize = 4 * 1024

// ErrClosed is returned by Next after Close. It is not io.EOF: lines the
// Reader had buffered were dropped, so the stream did not end.
var ErrClosed = errors.New("sse: reader closed")

// Reader pulls raw chunks from a source io.Reader and yields complete lines.
// It is the producer side of a stream: callers ask for the next line and
// decide themselves when to ask again, so the same Reader works whether the
// consumer runs on its own goroutine or interleaves reads with UI updates.
//
// ┌──────────────────┐
// │ source io.Reader │  arbitrary chunk boundaries
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │     Decoder      │  buffers until a '\n' arrives
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  Reader.Next()   │  one line per call, io.EOF at end
// └──────────────────┘
type Reader struct {
	src   io.Reader
	dec   *Decoder
	chunk []byte

	eof       bool
	closed    bool
	discarded int
}

// ReaderOption configures a Reader created with NewReader.
type ReaderOption func(*Reader)

// WithChunkSize sets how many bytes are requested from the source per read.
func WithChunkSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.chunk = make([]byte, n)
		}
	}
}

// NewReader returns a Reader that decodes lines from src.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		src:   src,
		dec:   NewDecoder(),
		chunk: make([]byte, defaultChunkSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next complete line. It blocks on the source until a line
// terminator is available and returns io.EOF once the source is exhausted.
//
// Bytes left in the buffer without a terminator when the source ends are
// dropped: the protocol gives an unterminated trailing line no meaning.
// Discarded reports how many bytes that was.
func (r *Reader) Next() (string, error) {
	if r.closed {
		return "", ErrClosed
	}
	for {
		line, ok, err := r.dec.Next()
		if err != nil {
			return "", err
		}
		if ok {
			return line, nil
		}

		if r.eof {
			if n := r.dec.Buffered(); n > 0 {
				r.discarded = n
				r.dec.Reset()
			}
			return "", io.EOF
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.dec.Feed(r.chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.eof = true
				continue
			}
			return "", err
		}
	}
}

// Discarded returns the size of the unterminated trailing line dropped at
// end of stream, if any.
func (r *Reader) Discarded() int {
	return r.discarded
}

// Close drops any buffered bytes; later calls to Next return ErrClosed. It
// does not close the source; the owner of the connection does that.
func (r *Reader) Close() {
	r.dec.Reset()
	r.closed = true
}
