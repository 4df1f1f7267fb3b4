package tool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumTool() *FunctionTool {
	return NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)
}

func TestFunctionToolSuccess(t *testing.T) {
	result, err := sumTool().Call(map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	_, err := sumTool().Call(map[string]any{"a": 2.0})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "calculate_sum", toolErr.Tool)
}

func TestFunctionToolExecutionError(t *testing.T) {
	failing := NewFunctionTool("boom", "always fails", map[string]any{"type": "object"},
		func(map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		})

	_, err := failing.Call(map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "backend unavailable")
}

func TestFunctionToolPreservesCustomToolError(t *testing.T) {
	custom := NewToolError("lookup", "record missing", "NOT_FOUND")
	failing := NewFunctionTool("lookup", "find a record", map[string]any{"type": "object"},
		func(map[string]any) (any, error) { return nil, custom })

	_, err := failing.Call(map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", toolErr.Code)
}

type echoArgs struct {
	Text string `json:"text" description:"Text to echo"`
}

func TestFunctionToolFromStruct(t *testing.T) {
	echo := NewFunctionToolFromStruct("echo", "Echo the input", echoArgs{},
		func(args map[string]any) (any, error) { return args["text"], nil })

	props := echo.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "text")

	result, err := echo.Call(map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", result)
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(sumTool())
	require.NoError(t, err)

	_, ok := reg.Get("calculate_sum")
	assert.True(t, ok)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())

	// Duplicate names are rejected.
	err = reg.Register(sumTool())
	assert.Error(t, err)

	echo := NewFunctionToolFromStruct("echo", "Echo the input", echoArgs{},
		func(args map[string]any) (any, error) { return args["text"], nil })
	require.NoError(t, reg.Register(echo))

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	// Sorted by name for deterministic model requests.
	assert.Equal(t, "calculate_sum", defs[0].Name)
	assert.Equal(t, "echo", defs[1].Name)
	assert.Equal(t, "Echo the input", defs[1].Description)
	assert.NotNil(t, defs[0].Parameters)
}
