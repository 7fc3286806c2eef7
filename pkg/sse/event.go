// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// line decoder for consuming streamed chat completions. It rebuilds protocol
// lines from raw network chunks and classifies each line as a data event, the
// end-of-stream sentinel, or a line the client does not care about.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities, nor multi-line event assembly: completion endpoints send one
// JSON payload per "data:" line.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	// DataPrefix introduces every payload-carrying line.
	DataPrefix = "data: "

	// DoneToken is the payload of the line that terminates a completion stream.
	DoneToken = "[DONE]"

	endMarker = DataPrefix + DoneToken
)

// EventKind classifies a single decoded line.
type EventKind int

const (
	// EventIgnorable covers blank lines, comments and SSE fields other than data.
	EventIgnorable EventKind = iota

	// EventData is a "data: " line carrying a payload.
	EventData

	// EventStreamEnd is the "data: [DONE]" sentinel.
	EventStreamEnd
)

func (k EventKind) String() string {
	switch k {
	case EventData:
		return "data"
	case EventStreamEnd:
		return "stream_end"
	default:
		return "ignorable"
	}
}

// Event represents a single parsed SSE line.
type Event struct {
	Kind EventKind

	// Data is the payload following the "data: " prefix. Only set for EventData.
	Data string
}

// ParseLine maps one line to exactly one Event. It is pure and never fails:
// anything it does not recognize is Ignorable.
func ParseLine(line string) Event {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return Event{Kind: EventIgnorable}
	case trimmed == endMarker:
		return Event{Kind: EventStreamEnd}
	case strings.HasPrefix(trimmed, DataPrefix):
		return Event{Kind: EventData, Data: trimmed[len(DataPrefix):]}
	default:
		// * Comments (":keep-alive") and "event:", "id:", "retry:" fields
		//   carry nothing a completion client needs.
		return Event{Kind: EventIgnorable}
	}
}
