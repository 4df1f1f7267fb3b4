package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Query string  `json:"query" description:"Search query"`
	Limit *int    `json:"limit" description:"Optional result cap"`
	Tag   string  `json:"tag,omitempty"`
	Score float64 `json:"score"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "limit")
	assert.Contains(t, props, "tag")
	assert.Contains(t, props, "score")

	query := props["query"].(map[string]any)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "Search query", query["description"])
	assert.Equal(t, "integer", props["limit"].(map[string]any)["type"])
	assert.Equal(t, "number", props["score"].(map[string]any)["type"])

	// Pointer and omitempty fields are optional.
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"query", "score"}, req)
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
			"s": map[string]any{"type": "string"},
		},
		// JSON-decoded schemas carry []any
		"required": []any{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5}, schema))
	// JSON numbers decode as float64; integral values pass.
	assert.NoError(t, ValidateParameters(map[string]any{"x": float64(7)}, schema))
	// Extra fields are allowed.
	assert.NoError(t, ValidateParameters(map[string]any{"x": 1, "extra": true}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": 1.5}, schema)
	require.Error(t, err)

	err = ValidateParameters(map[string]any{"x": 1, "s": 42}, schema)
	require.Error(t, err)
	vErr, ok = err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Message, "expected type string")
}
