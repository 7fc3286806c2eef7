// Package dial is a client for DIAL-style chat completion deployments. It
// sends a conversation to {endpoint}/openai/deployments/{deployment}/chat/completions
// and returns either the whole reply or a stream of reply fragments.
package dial

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/papercomputeco/dialchat/pkg/llm"
	"github.com/papercomputeco/dialchat/pkg/logger"
)

const (
	tracerName      = "github.com/papercomputeco/dialchat/pkg/dial"
	requestIDHeader = "X-Request-Id"
	apiKeyHeader    = "Api-Key"
)

// Config addresses one deployment.
type Config struct {
	// Endpoint is the base URL of the DIAL service, without a trailing path.
	Endpoint string

	// Deployment is the model deployment name, e.g. "gpt-4o".
	Deployment string

	// APIKey is sent in the Api-Key header.
	APIKey string
}

// Client sends chat completion requests to a single deployment.
// It is safe for concurrent use; each call owns its own connection and
// stream state.
type Client struct {
	url    string
	apiKey string

	httpClient *http.Client
	timeout    time.Duration
	chunkSize  int
	logger     *slog.Logger
	trace      io.Writer
	tracer     trace.Tracer
	deployment string
}

// New validates cfg and returns a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if cfg.Deployment == "" {
		return nil, ErrMissingDeployment
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	c := &Client{
		url:        CompletionsURL(cfg.Endpoint, cfg.Deployment),
		apiKey:     cfg.APIKey,
		deployment: cfg.Deployment,
		timeout:    DefaultTimeout,
		logger:     logger.Nop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// CompletionsURL builds the chat completions URL for a deployment.
func CompletionsURL(endpoint, deployment string) string {
	return strings.TrimRight(endpoint, "/") +
		"/openai/deployments/" + url.PathEscape(deployment) + "/chat/completions"
}

// URL returns the address requests are sent to.
func (c *Client) URL() string {
	return c.url
}

// Complete sends messages and waits for the whole reply.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	ctx, span := c.startSpan(ctx, "dial.Complete", false, len(messages))
	defer span.End()

	msg, err := c.complete(ctx, span, messages)
	if err != nil {
		recordError(span, err)
		return llm.Message{}, err
	}
	return msg, nil
}

func (c *Client) complete(ctx context.Context, span trace.Span, messages []llm.Message) (llm.Message, error) {
	resp, err := c.send(ctx, span, llm.ChatRequest{Messages: messages})
	if err != nil {
		return llm.Message{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Message{}, fmt.Errorf("reading response: %w", err)
	}
	c.dumpResponse(resp.StatusCode, body)

	if resp.StatusCode != http.StatusOK {
		return llm.Message{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var cr llm.ChatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return llm.Message{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return llm.Message{}, ErrNoChoices
	}
	if cr.Usage != nil {
		span.SetAttributes(
			attribute.Int("dial.usage.prompt_tokens", cr.Usage.PromptTokens),
			attribute.Int("dial.usage.completion_tokens", cr.Usage.CompletionTokens),
		)
	}

	// The role is fixed: a reply is always the assistant's turn.
	return llm.NewTextMessage(llm.RoleAssistant, cr.Choices[0].Message.Content), nil
}

// Stream sends messages with streaming enabled and returns once the response
// headers have arrived. The caller must Close the returned Stream.
func (c *Client) Stream(ctx context.Context, messages []llm.Message) (*Stream, error) {
	ctx, span := c.startSpan(ctx, "dial.Stream", true, len(messages))

	resp, err := c.send(ctx, span, llm.ChatRequest{Messages: messages, Stream: true})
	if err != nil {
		recordError(span, err)
		span.End()
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			c.logger.Debug("reading error body", "error", readErr)
		}
		c.dumpStreamHeader(resp.StatusCode)
		c.dumpStreamFooter(fmt.Sprintf("Error Response: %s\n", body))

		err := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		recordError(span, err)
		span.End()
		return nil, err
	}

	c.dumpStreamHeader(resp.StatusCode)
	return newStream(resp.Body, span, c), nil
}

// StreamCompletion streams a reply, calling onFragment with every fragment in
// arrival order, and returns the assembled message. An error from onFragment
// aborts the stream.
func (c *Client) StreamCompletion(ctx context.Context, messages []llm.Message, onFragment func(string) error) (llm.Message, error) {
	s, err := c.Stream(ctx, messages)
	if err != nil {
		return llm.Message{}, err
	}
	defer s.Close()

	return s.Drain(onFragment)
}

// send marshals req and posts it. The caller owns the response body.
func (c *Client) send(ctx context.Context, span trace.Span, req llm.ChatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	c.dumpRequest(req)

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("dial.request_id", requestID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	c.logger.Debug("sending completion request",
		"url", c.url,
		"request_id", requestID,
		"messages", len(req.Messages),
		"stream", req.Stream,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("received response headers",
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return resp, nil
}

func (c *Client) startSpan(ctx context.Context, name string, stream bool, messages int) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("dial.deployment", c.deployment),
			attribute.Bool("dial.stream", stream),
			attribute.Int("dial.messages", messages),
		),
	)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
