package tools

import (
	"context"
	"fmt"
)

// ToolManager holds a registry of all tools bound to the agent.
type ToolManager struct {
	tools map[string]ToolExecutor
	order []string
}

func NewToolManager() *ToolManager {
	return &ToolManager{
		tools: make(map[string]ToolExecutor),
	}
}

// Register adds a tool to the registry, keyed by its function name.
func (tm *ToolManager) Register(tool ToolExecutor) {
	name := tool.Definition().Function.Name
	if _, exists := tm.tools[name]; !exists {
		tm.order = append(tm.order, name)
	}
	tm.tools[name] = tool
}

// GetDefinitions returns all registered tool definitions in registration
// order, for provisioning the hosted agent.
func (tm *ToolManager) GetDefinitions() []Tool {
	defs := make([]Tool, 0, len(tm.tools))
	for _, name := range tm.order {
		defs = append(defs, tm.tools[name].Definition())
	}
	return defs
}

// Execute runs a tool by name and returns its JSON payload. An unknown tool
// name yields an error payload like any other tool failure, so the hosted
// run can continue.
func (tm *ToolManager) Execute(ctx context.Context, name, arguments string) string {
	tool, ok := tm.tools[name]
	if !ok {
		return ErrorPayload(fmt.Sprintf("tool '%s' not found", name))
	}
	return tool.Execute(ctx, arguments)
}

// ToolCount returns the number of registered tools.
func (tm *ToolManager) ToolCount() int {
	return len(tm.tools)
}
