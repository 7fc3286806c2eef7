package sse

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a complete line is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 in stream")

// Decoder turns raw byte chunks into complete lines. Chunks may split lines,
// or multi-byte runes, at any position; a line is only surfaced once its
// terminator has arrived.
//
// A Decoder holds the buffer for exactly one stream and is not safe for
// concurrent use.
type Decoder struct {
	buf []byte

	// scanned is how far into buf we already know there is no '\n', so a long
	// line arriving in many small chunks is not rescanned from the start.
	scanned int
	lines   int

	// err is the first decode error. The offending line stays buffered, so
	// every later Next reports the same error.
	err error
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk to the buffer. Empty chunks are a no-op.
func (d *Decoder) Feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	d.buf = append(d.buf, chunk...)
}

// Next pops the next complete line, without its "\n" or "\r\n" terminator.
// ok is false when the buffer holds no complete line yet. A line that is not
// valid UTF-8 fails the decoder until Reset.
func (d *Decoder) Next() (string, bool, error) {
	if d.err != nil {
		return "", false, d.err
	}

	idx := bytes.IndexByte(d.buf[d.scanned:], '\n')
	if idx < 0 {
		d.scanned = len(d.buf)
		return "", false, nil
	}
	end := d.scanned + idx

	raw := d.buf[:end]
	raw = bytes.TrimSuffix(raw, []byte{'\r'})

	if !utf8.Valid(raw) {
		d.err = fmt.Errorf("line %d: %w", d.lines+1, ErrInvalidEncoding)
		return "", false, d.err
	}
	line := string(raw)
	d.lines++

	d.buf = d.buf[end+1:]
	d.scanned = 0
	if len(d.buf) == 0 {
		d.buf = nil
	}

	return line, true, nil
}

// Buffered returns the number of bytes held that do not yet form a line.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset discards any buffered bytes and clears a decode error.
func (d *Decoder) Reset() {
	d.buf = nil
	d.scanned = 0
	d.err = nil
}
