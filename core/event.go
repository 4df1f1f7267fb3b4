package core

import "time"

// EventType enumerates the lifecycle events emitted during a run.
type EventType string

const (
	// EventLLMStart is emitted immediately before a model call.
	EventLLMStart EventType = "llm_start"
	// EventLLMComplete is emitted once the model call produced an assistant
	// message. Carries extracted thinking text when the backend exposes it.
	EventLLMComplete EventType = "llm_complete"
	// EventToolStart is emitted before each tool execution, including calls
	// that will fail to resolve.
	EventToolStart EventType = "tool_start"
	// EventToolComplete is emitted after each tool execution, on both the
	// success and the error path.
	EventToolComplete EventType = "tool_complete"
	// EventError reports a model-backend failure. Recoverable failures are
	// followed by a retry attempt; unrecoverable ones end the run.
	EventError EventType = "error"
)

// StreamingEvent is one entry of the ordered event sequence delivered to the
// caller's sink. Events are immutable once emitted and are delivered in
// strict execution order.
type StreamingEvent struct {
	Type       EventType     `json:"type"`
	Timestamp  time.Time     `json:"timestamp"`
	Model      string        `json:"model,omitempty"`
	Thinking   string        `json:"thinking,omitempty"`
	Tool       string        `json:"tool,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	Input      string        `json:"input,omitempty"`
	Output     string        `json:"output,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        string        `json:"error,omitempty"`
	Recoverable bool         `json:"recoverable,omitempty"`
}

// NewLLMStartEvent marks the beginning of a model call.
func NewLLMStartEvent(modelName string) StreamingEvent {
	return StreamingEvent{Type: EventLLMStart, Timestamp: time.Now().UTC(), Model: modelName}
}

// NewLLMCompleteEvent marks a completed model call.
func NewLLMCompleteEvent(modelName, thinking string) StreamingEvent {
	return StreamingEvent{Type: EventLLMComplete, Timestamp: time.Now().UTC(), Model: modelName, Thinking: thinking}
}

// NewToolStartEvent marks the beginning of one tool execution.
func NewToolStartEvent(tool, toolCallID, input string) StreamingEvent {
	return StreamingEvent{Type: EventToolStart, Timestamp: time.Now().UTC(), Tool: tool, ToolCallID: toolCallID, Input: input}
}

// NewToolCompleteEvent marks a successful tool execution.
func NewToolCompleteEvent(tool, toolCallID, output string, dur time.Duration) StreamingEvent {
	return StreamingEvent{Type: EventToolComplete, Timestamp: time.Now().UTC(), Tool: tool, ToolCallID: toolCallID, Output: output, Duration: dur}
}

// NewToolErrorEvent marks a failed tool execution. The run continues; tool
// failures are isolated per call.
func NewToolErrorEvent(tool, toolCallID string, err error, dur time.Duration) StreamingEvent {
	return StreamingEvent{Type: EventToolComplete, Timestamp: time.Now().UTC(), Tool: tool, ToolCallID: toolCallID, Err: err.Error(), Duration: dur}
}

// NewErrorEvent reports a model-backend failure.
func NewErrorEvent(err error, recoverable bool) StreamingEvent {
	return StreamingEvent{Type: EventError, Timestamp: time.Now().UTC(), Err: err.Error(), Recoverable: recoverable}
}
