package tools

import "context"

// ToolExecutor is the interface every tool exposed to the hosted agent
// implements.
//
// Execute returns a JSON payload string and deliberately has no error return:
// a tool function never raises to the hosted caller. Every failure (bad
// arguments, driver errors, unknown connection names) is encoded as an
// {"error": "..."} payload, so the hosted reasoning loop can react to it as
// if it were ordinary tool output.
type ToolExecutor interface {
	// Definition returns the tool's schema, provided to the hosted service
	// when the agent is created.
	Definition() Tool

	// Execute runs the tool with the JSON-encoded arguments generated by the
	// hosted model. The context bounds external side effects (database and
	// file access).
	Execute(ctx context.Context, arguments string) string
}
