package llm

// ChatRequest is the body POSTed to a deployment's chat completions path.
// The deployment is addressed by the URL, so no model field is sent.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Stream asks for an SSE response. Omitted for whole-response requests.
	Stream bool `json:"stream,omitempty"`
}
