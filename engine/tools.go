package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowbyte/agentrun/core"
)

// executeToolBatch runs every tool call of the last assistant message,
// sequentially and in request order, so one tool's side effects are visible
// to the next within the same turn. Each call is answered by exactly one
// tool message, on the success path and on every error path: unknown tool,
// bad arguments, handler error, handler panic.
func (e *Engine) executeToolBatch(ctx context.Context, st *runState) {
	calls := st.last().ToolCalls
	for _, tc := range calls {
		args, decodeErr := decodeArgs(tc.Arguments)

		if decodeErr == nil && e.hooks.BeforeToolCall != nil {
			msgs, newArgs := e.hooks.BeforeToolCall(tc.Name, args, st.messages)
			if msgs != nil {
				st.messages = msgs
			}
			if newArgs != nil {
				args = newArgs
			}
		}

		input := encodeArgs(args, tc.Arguments)
		e.emit(ctx, core.NewToolStartEvent(tc.Name, tc.ID, input))

		start := time.Now()
		var (
			output any
			err    error
		)
		if decodeErr != nil {
			err = decodeErr
		} else {
			output, err = e.invokeTool(ctx, tc.Name, args)
		}
		dur := time.Since(start)

		var outputText string
		if err != nil {
			outputText = "Error: " + err.Error()
			st.messages = append(st.messages, core.NewToolErrorMessage(tc.ID, err))
			e.emit(ctx, core.NewToolErrorEvent(tc.Name, tc.ID, err, dur))
			e.logger.Error("tool.call.error", "tool", tc.Name, "fc_id", tc.ID, "error", err.Error())
		} else {
			outputText = serializeOutput(output)
			st.messages = append(st.messages, core.NewToolResultMessage(tc.ID, outputText))
			e.emit(ctx, core.NewToolCompleteEvent(tc.Name, tc.ID, outputText, dur))
			e.logger.Info("tool.call.success", "tool", tc.Name, "fc_id", tc.ID, "duration_ms", dur.Milliseconds())
		}
		st.records = append(st.records, core.ToolRecord{ID: tc.ID, Tool: tc.Name, Input: input, Output: outputText})

		if e.hooks.AfterToolCall != nil {
			msgs, stop := e.hooks.AfterToolCall(tc.Name, args, output, st.messages)
			if msgs != nil {
				st.messages = msgs
			}
			if stop {
				// Remaining calls in this batch still execute; the machine
				// stops before the next LLM turn.
				st.stopAfterTools = true
			}
		}
	}
}

// invokeTool resolves and executes a single tool under isolation: a missing
// tool, a cancelled context or a panicking handler all surface as ordinary
// errors so the run continues.
func (e *Engine) invokeTool(ctx context.Context, name string, args map[string]any) (result any, err error) {
	impl, ok := e.tools.Get(name)
	if !ok {
		return nil, fmt.Errorf("tool %q not found", name)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool.call.panic", "tool", name, "recover", fmt.Sprint(r))
			result = nil
			err = fmt.Errorf("tool %q panicked: %v", name, r)
		}
	}()
	return impl.Call(args)
}

// decodeArgs parses the model-supplied JSON argument payload. An empty
// payload means no arguments.
func decodeArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// encodeArgs re-serializes possibly hook-rewritten arguments for the ledger
// and the tool_start event, falling back to the raw payload.
func encodeArgs(args map[string]any, fallback string) string {
	if args == nil {
		return fallback
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fallback
	}
	return string(data)
}

// serializeOutput converts a tool result into the text content of its tool
// message. Strings pass through; structured values are JSON-encoded.
func serializeOutput(output any) string {
	switch v := output.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
