package core

import "encoding/json"

// ToolRecord is one entry of the run's tool-call ledger: the tool name, the
// raw JSON input the model supplied and the serialized output (or error text)
// the tool produced. Records are matched to their originating ToolCall by id.
type ToolRecord struct {
	ID     string `json:"id"`
	Tool   string `json:"tool"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// RunResult is the final value returned by every run. The engine never
// propagates expected failures as errors; callers inspect Success and Error.
// Partial progress (tool records, iterations, usage) is preserved on failure.
type RunResult struct {
	Response   string          `json:"response"`
	JSON       json.RawMessage `json:"json,omitempty"`
	ToolCalls  []ToolRecord    `json:"tool_calls,omitempty"`
	Iterations int             `json:"iterations"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	Usage      TokenUsage      `json:"usage"`
}
