// Package agent wraps the hosted agent service: provisioning an agent
// definition with its bound tool set, opening conversation threads,
// submitting user messages and driving hosted runs to a terminal state.
//
// Model reasoning, tool selection and message threading all happen inside
// the hosted service. This package only relays requests and
// services the tool callbacks a run asks for. The openai-backed
// implementation lives in openai.go; the rest of the codebase depends on the
// Service interface so front ends and tests can swap in fakes.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/pmorel/db-agent/internal/tools"
)

// Run terminal states as observed locally. The hosted service has more
// internal states; everything that is neither completed nor failed is
// reported as other.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunOther     RunStatus = "other"
)

// ErrNoReply reports a thread with no message from the requested role yet.
var ErrNoReply = errors.New("no reply from agent")

// Definition describes the agent to provision on the hosted service.
type Definition struct {
	Name         string
	Model        string
	Instructions string
	Toolset      *tools.ToolManager
}

// Agent is the locally relevant view of a hosted agent.
type Agent struct {
	ID           string
	Name         string
	Model        string
	Instructions string
	CreatedAt    time.Time
}

// ThreadMessage is one message of a hosted conversation thread.
type ThreadMessage struct {
	ID        string
	Role      string
	Text      string
	CreatedAt time.Time
}

// RunResult is the outcome of one hosted processing cycle for a message.
type RunResult struct {
	Status RunStatus
	// ErrorMessage carries the hosted error text when Status is RunFailed.
	ErrorMessage string
}

// Service is the gateway contract to the hosted agent service.
type Service interface {
	// EnsureAgent provisions the agent described by def, reusing an existing
	// hosted agent with the same identity when one exists.
	EnsureAgent(ctx context.Context, def Definition) (Agent, error)

	// OpenThread requests a new hosted conversation thread and returns its id.
	OpenThread(ctx context.Context) (string, error)

	// Submit appends a message with the given role to the thread.
	Submit(ctx context.Context, threadID, role, text string) error

	// RunAndWait triggers hosted processing of the thread and blocks until
	// the run reaches a terminal state, the configured timeout elapses, or
	// ctx is cancelled. While the run requires action it executes the
	// requested tool calls and submits their outputs back.
	RunAndWait(ctx context.Context, threadID, agentID string) (RunResult, error)

	// LatestReply returns the text of the most recent assistant message in
	// the thread, or ErrNoReply if none exists yet.
	LatestReply(ctx context.Context, threadID string) (string, error)

	// ListMessages returns all messages of the thread sorted by creation
	// time, oldest first.
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)

	// ListAgents returns all agents visible on the hosted project.
	ListAgents(ctx context.Context) ([]Agent, error)

	// GetAgent fetches one hosted agent by id.
	GetAgent(ctx context.Context, id string) (Agent, error)

	// UpdateAgent applies a partial update; empty fields are left unchanged.
	UpdateAgent(ctx context.Context, id, name, instructions string) error

	// DeleteAgent removes the hosted agent.
	DeleteAgent(ctx context.Context, id string) error

	// DeleteThread removes the hosted thread.
	DeleteThread(ctx context.Context, threadID string) error
}

// LatestByRole returns the text of the newest message attributed to role.
// Messages are expected oldest first, as ListMessages returns them.
func LatestByRole(messages []ThreadMessage, role string) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == role {
			return messages[i].Text, true
		}
	}
	return "", false
}
