// Package llm is the transport layer for hosted language models. Four
// provider SDKs (Anthropic, OpenAI, Gemini, OpenRouter) are normalized
// behind a single Generate call that speaks structured JSON: callers
// attach a schema, providers enforce it natively where they can, and the
// reply is re-validated locally either way. The factory wraps whichever
// provider is configured with retry and event-journal middleware.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is one hosted model behind a uniform call. Implementations
// are safe for concurrent use.
type Provider interface {
	// Generate performs one model call. When the request carries a
	// Schema the returned Content is JSON already validated against it;
	// without one, Content is the raw text of the reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the resolved model identifier calls are sent to.
	ModelID() string
}

// Request is a single model call: instructions, conversation, and the
// shape the answer must take.
type Request struct {
	// System sets the model's role and constraints for the call.
	System string

	// Messages is the conversation so far. Most tutoring calls send one
	// user turn; chat sends the running transcript.
	Messages []Message

	// Schema, when set, demands a JSON reply conforming to it. Providers
	// with native structured output enforce it server-side; the local
	// validator has the final word regardless.
	Schema *Schema

	// MaxTokens caps the reply length.
	MaxTokens int

	// Temperature in [0,1]; zero means deterministic sampling.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and defines the JSON shape a structured reply must take.
type Schema struct {
	// Name identifies the schema to providers that want one (OpenAI's
	// response format); kebab-case.
	Name string

	// Description tells the model what the object represents.
	Description string

	// Definition is the JSON Schema document as a map.
	Definition map[string]any
}

// Response is the outcome of one model call.
type Response struct {
	// Content is the reply: schema-validated JSON when the request
	// carried a Schema, raw text otherwise.
	Content json.RawMessage

	// Usage is the token consumption the provider reported.
	Usage Usage

	// Model is the model that actually served the call.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is the token accounting for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
