package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for talking to a generative model.
// Consumers call Generate with a Request and receive the model output.
type Provider interface {
	// Generate sends a prompt (text plus optional inline images) to the
	// model. When the request carries a Schema, the provider asks for JSON
	// output and the returned Content has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the default model identifier of this provider.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system instruction.
	System string

	// Messages is the conversation history. Single-shot calls (analysis,
	// grading, practice generation) carry one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response Content is the raw text.
	Schema *Schema

	// Model overrides the provider's configured model for this request.
	// Friendly names are resolved the same way as in the provider config.
	Model string

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single conversation turn.
type Message struct {
	Role    Role
	Content string

	// Images are sent as inline parts ahead of the text, in order.
	Images []Image
}

// Image is an inline binary attachment.
type Image struct {
	MIMEType string
	Data     []byte
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "homework-grading".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the generated output. With a Schema it is the validated
	// JSON object with any Markdown fence removed; without one it is the
	// raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}
