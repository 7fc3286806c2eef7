package dial

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a whole request, streamed body included. Model
// responses can be slow.
const DefaultTimeout = 5 * time.Minute

// Option configures a Client created with New.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. WithTimeout has no effect on a
// client supplied this way.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for request lifecycle and dropped payloads.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTrace dumps every request body, response status and response body to
// w as they pass through the client.
func WithTrace(w io.Writer) Option {
	return func(c *Client) {
		c.trace = w
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for request spans.
// The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithChunkSize sets how many bytes are read from a streamed body at a time.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		c.chunkSize = n
	}
}
