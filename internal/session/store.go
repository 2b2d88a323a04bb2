// Package session keeps the conversation bookkeeping that glues HTTP
// requests to hosted agent threads.
//
// A Conversation records only the first exchange of a thread; the hosted
// service owns the full message history. Two implementations exist: a
// bounded in-memory store for single-process deployments and a redis-backed
// store when conversations must survive restarts or be shared between
// replicas.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports an unknown conversation id.
var ErrNotFound = errors.New("conversation not found")

// Conversation is the locally kept metadata of one hosted thread. The id is
// the hosted thread id.
type Conversation struct {
	ID            string
	FirstQuestion string
	FirstAnswer   string
	CreatedAt     time.Time
}

// ThreadOpener requests new hosted conversation threads. Satisfied by
// agent.Service.
type ThreadOpener interface {
	OpenThread(ctx context.Context) (string, error)
}

// Store is the conversation bookkeeping contract.
type Store interface {
	// GetOrCreate resolves a conversation id. An empty id opens a new hosted
	// thread and records a fresh conversation (isNew true). A known id
	// returns the recorded conversation without touching the hosted service.
	// An unknown non-empty id is passed through untracked: the chat path
	// tolerates ids this process has never seen, an inconsistency with Get
	// that is kept on purpose.
	GetOrCreate(ctx context.Context, id string) (conv Conversation, isNew bool, err error)

	// Get looks up a recorded conversation, failing with ErrNotFound when
	// the id is unknown.
	Get(ctx context.Context, id string) (Conversation, error)

	// List returns all recorded conversations, newest first by creation
	// time. Reading a conversation does not change its position.
	List(ctx context.Context) ([]Conversation, error)

	// RecordFirstExchange sets the first question and answer of the
	// conversation. Fields already set are left alone, so only the first
	// message of a thread is ever recorded; later turns are no-ops.
	RecordFirstExchange(ctx context.Context, id, question, answer string) error
}
