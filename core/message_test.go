package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("be terse")
	assert.Equal(t, RoleSystem, sys.Role)

	user := NewUserMessage("what is this?", "data:image/png;base64,AAAA")
	assert.Equal(t, RoleUser, user.Role)
	assert.Len(t, user.Images, 1)

	result := NewToolResultMessage("tc-1", `{"ok":true}`)
	assert.Equal(t, RoleTool, result.Role)
	assert.Equal(t, "tc-1", result.ToolCallID)

	failed := NewToolErrorMessage("tc-2", errors.New("timeout"))
	assert.Equal(t, "Error: timeout", failed.Content)
	assert.Equal(t, "tc-2", failed.ToolCallID)
}

func TestHasToolCalls(t *testing.T) {
	assert.False(t, NewAssistantMessage("plain text").HasToolCalls())

	msg := Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "tc-1", Name: "search"}}}
	assert.True(t, msg.HasToolCalls())
}

func TestTokenUsageAdd(t *testing.T) {
	var total TokenUsage
	total.Add(TokenUsage{InputTokens: 10, OutputTokens: 3})
	total.Add(TokenUsage{InputTokens: 7, OutputTokens: 2})
	assert.Equal(t, 17, total.InputTokens)
	assert.Equal(t, 5, total.OutputTokens)
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
