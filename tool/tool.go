// Package tool implements the callable-tool subsystem: the Tool interface,
// a schema-validated function adapter and a name-keyed registry. Tool
// business logic is injected by the caller; the engine only resolves and
// invokes tools through this package.
package tool

import "fmt"

// Tool is the interface every callable capability must satisfy.
//
// Implementations should be thread-safe: the registry is read-only for the
// duration of a run, and independent runs may invoke the same tool
// concurrently.
type Tool interface {
	// Name returns the unique identifier used in model tool-call requests
	// (snake_case recommended).
	Name() string

	// Description is shown to the model so it can decide when to call the tool.
	Description() string

	// Parameters returns a JSON schema describing the accepted arguments.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments. The returned
	// value must be JSON-serializable.
	Call(args map[string]any) (any, error)
}

// ToolError is the normalized failure type for tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the given details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
