// Package tools implements the tool-function dispatch contract between the
// hosted agent service and the local database-inspection functions.
//
// The types here are a provider-agnostic description of callable functions:
// they are translated into the hosted service's tool format when the agent is
// provisioned, and tool calls coming back from the service are dispatched
// through the ToolManager registry.
package tools

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Tool defines the schema for a function that can be described to the hosted
// agent. This is the information sent *to* the service when the agent is
// created.
type Tool struct {
	// Type specifies the type of tool, which is almost always "function".
	Type string `json:"type"`
	// Function holds the detailed definition of the function.
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
// The description is what the hosted model uses to decide when to call it.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is a structured representation of the JSON Schema fragment used
// for tool parameters. Using a struct instead of map[string]interface{} keeps
// tool definitions readable and catches shape mistakes at compile time.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

// ToolCall represents a request *from* the hosted service to execute a
// specific tool with given arguments. The ID ties the execution result back
// to the request inside the hosted run.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction holds the name and JSON-encoded arguments of a requested
// function call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewFunctionTool creates a Tool with the correct "function" type set.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
