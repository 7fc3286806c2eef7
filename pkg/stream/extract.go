package stream

import (
	"encoding/json"
)

// Outcome is the result class of decoding one data payload.
type Outcome int

const (
	// OutcomeAbsent means the payload parsed but carried no content, e.g. a
	// role announcement or a final chunk with only a finish reason.
	OutcomeAbsent Outcome = iota

	// OutcomeFragment means the payload carried content, possibly empty.
	OutcomeFragment

	// OutcomeMalformed means the payload was not a JSON object. Some servers
	// interleave keep-alive lines like this; they are dropped.
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFragment:
		return "fragment"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Extraction is what Extract found in a payload.
type Extraction struct {
	Outcome  Outcome
	Fragment string

	// Err holds the JSON error for OutcomeMalformed.
	Err error
}

// deltaPayload is the part of a stream chunk Extract reads. Every other field
// is ignored, so an unexpected type elsewhere in the chunk cannot hide the
// content.
type deltaPayload struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Extract decodes a data payload and pulls out choices[0].delta.content.
// Neither "choices" nor the delta content are required to exist. Only a
// payload that is not a JSON object, or whose choices/delta/content path has
// the wrong shape, is malformed.
func Extract(payload string) Extraction {
	var chunk deltaPayload
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return Extraction{Outcome: OutcomeMalformed, Err: err}
	}

	if len(chunk.Choices) == 0 {
		return Extraction{Outcome: OutcomeAbsent}
	}

	content := chunk.Choices[0].Delta.Content
	if content == nil {
		return Extraction{Outcome: OutcomeAbsent}
	}

	return Extraction{Outcome: OutcomeFragment, Fragment: *content}
}
