package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmorel/db-agent/internal/tools"
)

func TestLatestByRole(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	messages := []ThreadMessage{
		{ID: "m1", Role: "user", Text: "première question", CreatedAt: base},
		{ID: "m2", Role: "assistant", Text: "première réponse", CreatedAt: base.Add(time.Second)},
		{ID: "m3", Role: "user", Text: "seconde question", CreatedAt: base.Add(2 * time.Second)},
		{ID: "m4", Role: "assistant", Text: "seconde réponse", CreatedAt: base.Add(3 * time.Second)},
	}

	t.Run("returns newest assistant message", func(t *testing.T) {
		text, ok := LatestByRole(messages, "assistant")
		require.True(t, ok)
		assert.Equal(t, "seconde réponse", text)
	})

	t.Run("returns newest user message", func(t *testing.T) {
		text, ok := LatestByRole(messages, "user")
		require.True(t, ok)
		assert.Equal(t, "seconde question", text)
	})

	t.Run("no message for role", func(t *testing.T) {
		_, ok := LatestByRole(messages[:1], "assistant")
		assert.False(t, ok)
	})

	t.Run("empty thread", func(t *testing.T) {
		_, ok := LatestByRole(nil, "assistant")
		assert.False(t, ok)
	})
}

// echoTool records what it was called with and returns a fixed payload.
type echoTool struct {
	name     string
	lastArgs string
}

func (e *echoTool) Definition() tools.Tool {
	return tools.NewFunctionTool(e.name, "echo", tools.JSONSchema{Type: "object"})
}

func (e *echoTool) Execute(_ context.Context, arguments string) string {
	e.lastArgs = arguments
	return `{"echo": true}`
}

func TestExecuteToolCalls(t *testing.T) {
	t.Parallel()

	echo := &echoTool{name: "echo_tool"}
	manager := tools.NewToolManager()
	manager.Register(echo)

	calls := []tools.ToolCall{
		{ID: "call-1", Type: tools.ToolTypeFunction, Function: tools.ToolCallFunction{Name: "echo_tool", Arguments: `{"a": 1}`}},
		{ID: "call-2", Type: tools.ToolTypeFunction, Function: tools.ToolCallFunction{Name: "unknown_tool", Arguments: `{}`}},
	}

	outputs := ExecuteToolCalls(context.Background(), manager, calls)
	require.Len(t, outputs, 2)

	assert.Equal(t, "call-1", outputs[0].ToolCallID)
	assert.Equal(t, `{"echo": true}`, outputs[0].Output)
	assert.Equal(t, `{"a": 1}`, echo.lastArgs)

	// The unknown tool still answers its call id, with an error payload.
	assert.Equal(t, "call-2", outputs[1].ToolCallID)
	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(outputs[1].Output), &result))
	assert.Contains(t, result["error"], "unknown_tool")
}
