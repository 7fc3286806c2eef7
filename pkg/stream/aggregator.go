// Package stream assembles a streamed chat completion: it classifies decoded
// SSE lines, extracts the content fragment of each data event, hands every
// fragment to the caller as it arrives and accumulates them into the final
// assistant message.
package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/dialchat/pkg/llm"
	"github.com/papercomputeco/dialchat/pkg/logger"
	"github.com/papercomputeco/dialchat/pkg/sse"
)

// ErrStreamOpen is returned by Message when the stream has not finished.
var ErrStreamOpen = errors.New("stream is still open")

// LineSource produces decoded protocol lines, returning io.EOF at end of
// stream. *sse.Reader satisfies it.
type LineSource interface {
	Next() (string, error)
}

// State is the lifecycle position of an Aggregator.
type State int

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	if s == StateClosed {
		return "closed"
	}
	return "open"
}

// Stats counts what an Aggregator has seen.
type Stats struct {
	Lines     int
	Data      int
	Fragments int
	Absent    int
	Malformed int

	// EndMarker is true when the stream ended with "data: [DONE]" rather than
	// the transport closing.
	EndMarker bool
}

// Aggregator drives one stream from lines to an assembled message.
// It is not safe for concurrent use and serves exactly one stream.
type Aggregator struct {
	src    LineSource
	role   llm.Role
	logger *slog.Logger

	content strings.Builder
	state   State
	err     error
	stats   Stats
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for dropped payloads and stream end.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRole overrides the role of the assembled message. Defaults to assistant.
func WithRole(role llm.Role) Option {
	return func(a *Aggregator) {
		a.role = role
	}
}

func NewAggregator(src LineSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:    src,
		role:   llm.RoleAssistant,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next returns the next fragment, which may be the empty string. Once the
// stream has ended, through "data: [DONE]" or the source reaching io.EOF,
// Next returns io.EOF and never reads the source again.
//
// Any other source error (a decode error, a broken connection, a cancelled
// context) ends the stream and is returned from every later call.
func (a *Aggregator) Next() (string, error) {
	for {
		if a.err != nil {
			return "", a.err
		}
		if a.state == StateClosed {
			return "", io.EOF
		}

		line, err := a.src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.close()
				continue
			}
			a.err = fmt.Errorf("reading stream: %w", err)
			a.state = StateClosed
			continue
		}
		a.stats.Lines++

		ev := sse.ParseLine(line)
		switch ev.Kind {
		case sse.EventStreamEnd:
			a.stats.EndMarker = true
			a.close()

		case sse.EventData:
			a.stats.Data++
			ex := Extract(ev.Data)
			switch ex.Outcome {
			case OutcomeFragment:
				a.stats.Fragments++
				a.content.WriteString(ex.Fragment)
				return ex.Fragment, nil
			case OutcomeAbsent:
				a.stats.Absent++
			case OutcomeMalformed:
				a.stats.Malformed++
				a.logger.Debug("dropping malformed stream payload",
					"error", ex.Err,
					"payload", ev.Data,
				)
			}

		case sse.EventIgnorable:
		}
	}
}

func (a *Aggregator) close() {
	a.state = StateClosed
	a.logger.Debug("stream closed",
		"end_marker", a.stats.EndMarker,
		"fragments", a.stats.Fragments,
		"malformed", a.stats.Malformed,
	)
}

// Drain pushes every remaining fragment to fn in arrival order and returns
// the assembled message. An error from fn stops consumption and is returned.
func (a *Aggregator) Drain(fn func(fragment string) error) (llm.Message, error) {
	for {
		fragment, err := a.Next()
		if errors.Is(err, io.EOF) {
			return a.Message()
		}
		if err != nil {
			return llm.Message{}, err
		}
		if fn != nil {
			if err := fn(fragment); err != nil {
				return llm.Message{}, err
			}
		}
	}
}

// Message returns the assembled message once the stream has ended cleanly.
func (a *Aggregator) Message() (llm.Message, error) {
	if a.err != nil {
		return llm.Message{}, a.err
	}
	if a.state != StateClosed {
		return llm.Message{}, ErrStreamOpen
	}
	return llm.Message{Role: a.role, Content: a.content.String()}, nil
}

// State reports whether the stream is still open.
func (a *Aggregator) State() State {
	return a.state
}

// Stats returns the counters collected so far.
func (a *Aggregator) Stats() Stats {
	return a.stats
}
