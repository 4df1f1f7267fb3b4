package model

import (
	"context"

	"github.com/flowbyte/agentrun/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized input of one model call.
//
// Messages must be non-empty and begin with a system message; the engine
// injects the system prompt as the first message of every turn rather than
// persisting it in conversation history.
type Request struct {
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
	JSONMode bool             `json:"json_mode,omitempty"`
}

// Info contains metadata about a backend implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Backend is the uniform request/response interface over LLM providers.
//
// Implementations perform one network call per invocation and classify
// failures via *Error so callers can branch on kind instead of matching
// error text. A content-safety refusal is not an error: adapters convert it
// into a synthetic assistant message carrying a diagnostic string.
type Backend interface {
	// Invoke performs a blocking model call and returns the assistant message.
	Invoke(ctx context.Context, req Request) (*core.Message, error)

	// InvokeStreaming performs a streaming model call, delivering text deltas
	// to onToken as they arrive, and returns the fully accumulated assistant
	// message. onToken may be nil.
	InvokeStreaming(ctx context.Context, req Request, onToken func(string)) (*core.Message, error)

	// Info returns metadata about the backend implementation.
	Info() Info
}
