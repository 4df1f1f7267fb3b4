package core

import (
	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks the engine-injected system prompt.
	RoleSystem Role = "system"
	// RoleUser marks caller-supplied input.
	RoleUser Role = "user"
	// RoleAssistant marks model output, possibly carrying tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool marks the response to a single tool call.
	RoleTool Role = "tool"
)

// ToolCall is a structured request, emitted by the model, to invoke a named
// tool. Arguments holds the raw JSON argument payload as produced by the
// provider.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// TokenUsage counts tokens consumed by one or more model calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another usage sample into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Message is one entry in the conversation transcript threaded through a run.
//
// The populated fields depend on Role:
//   - assistant messages may carry ToolCalls, Thinking and per-call Usage
//   - tool messages carry ToolCallID referencing the assistant ToolCall they
//     answer
//   - user messages may carry Images (base64 payloads or URLs)
type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Images     []string    `json:"images,omitempty"`
	Thinking   string      `json:"thinking,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	Usage      *TokenUsage `json:"usage,omitempty"`
}

// NewSystemMessage builds a system prompt message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user message with optional image attachments.
func NewUserMessage(content string, images ...string) Message {
	return Message{Role: RoleUser, Content: content, Images: images}
}

// NewAssistantMessage builds a plain text assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolResultMessage builds the tool message answering the ToolCall with
// the given id.
func NewToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content}
}

// NewToolErrorMessage builds a tool message reporting a failed tool call.
// The error text becomes the message content so the model can react to it.
func NewToolErrorMessage(toolCallID string, err error) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: "Error: " + err.Error()}
}

// HasToolCalls reports whether the message requests at least one tool call.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// NewID generates a unique identifier, used for tool calls when the provider
// omits one and for run correlation.
func NewID() string { return uuid.NewString() }
