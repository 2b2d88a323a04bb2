package agent

import (
	"context"

	"github.com/pmorel/db-agent/internal/tools"
)

// ToolOutput pairs a tool call id with the payload produced for it.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// ExecuteToolCalls services a batch of tool calls requested by a hosted run,
// in request order. Every call produces an output: unknown tools and failed
// executions yield error payloads, never a missing entry, because the hosted
// run cannot proceed until each call id has been answered.
func ExecuteToolCalls(ctx context.Context, manager *tools.ToolManager, calls []tools.ToolCall) []ToolOutput {
	outputs := make([]ToolOutput, len(calls))
	for i, call := range calls {
		outputs[i] = ToolOutput{
			ToolCallID: call.ID,
			Output:     manager.Execute(ctx, call.Function.Name, call.Function.Arguments),
		}
	}
	return outputs
}
