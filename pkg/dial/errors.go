package dial

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/papercomputeco/dialchat/pkg/llm"
)

var (
	// ErrNoChoices is returned when a whole response carries no choices.
	ErrNoChoices = errors.New("no choices in response found")

	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrMissingDeployment is returned by New when no deployment is configured.
	ErrMissingDeployment = errors.New("deployment is required")

	// ErrMissingEndpoint is returned by New when no endpoint is configured.
	ErrMissingEndpoint = errors.New("endpoint is required")

	// ErrStreamClosed is returned when a Stream is read after Close cut the
	// reply short. The fragments received so far are not a reply.
	ErrStreamClosed = errors.New("stream closed before the reply was complete")
)

// StatusError reports a non-success HTTP status. The body is the raw
// response text; nothing in it has been decoded.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Detail returns the error message from a JSON error body when there is one,
// falling back to the trimmed raw body.
func (e *StatusError) Detail() string {
	var resp llm.ErrorResponse
	if err := json.Unmarshal([]byte(e.Body), &resp); err == nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return strings.TrimSpace(e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
