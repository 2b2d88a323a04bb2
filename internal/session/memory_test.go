package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpener hands out sequential thread ids and counts how many threads
// were opened.
type fakeOpener struct {
	opened int
}

func (f *fakeOpener) OpenThread(context.Context) (string, error) {
	f.opened++
	return fmt.Sprintf("thread-%d", f.opened), nil
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty id opens a new thread", func(t *testing.T) {
		opener := &fakeOpener{}
		store := NewMemoryStore(opener, 10)

		conv, isNew, err := store.GetOrCreate(ctx, "")
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.Equal(t, "thread-1", conv.ID)
		assert.Equal(t, 1, opener.opened)

		// A second fresh conversation gets a previously-unseen id.
		conv2, isNew, err := store.GetOrCreate(ctx, "")
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.NotEqual(t, conv.ID, conv2.ID)
	})

	t.Run("existing id does not open a thread", func(t *testing.T) {
		opener := &fakeOpener{}
		store := NewMemoryStore(opener, 10)

		created, _, err := store.GetOrCreate(ctx, "")
		require.NoError(t, err)

		conv, isNew, err := store.GetOrCreate(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, created.ID, conv.ID)
		assert.Equal(t, 1, opener.opened)
	})

	t.Run("unknown id passes through untracked", func(t *testing.T) {
		opener := &fakeOpener{}
		store := NewMemoryStore(opener, 10)

		conv, isNew, err := store.GetOrCreate(ctx, "thread-elsewhere")
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, "thread-elsewhere", conv.ID)
		assert.Equal(t, 0, opener.opened)

		_, err = store.Get(ctx, "thread-elsewhere")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecordFirstExchange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(&fakeOpener{}, 10)

	created, _, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)

	require.NoError(t, store.RecordFirstExchange(ctx, created.ID, "question 1", "réponse 1"))

	conv, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "question 1", conv.FirstQuestion)
	assert.Equal(t, "réponse 1", conv.FirstAnswer)

	// Later turns must not overwrite the first exchange.
	require.NoError(t, store.RecordFirstExchange(ctx, created.ID, "question 2", "réponse 2"))
	conv, err = store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "question 1", conv.FirstQuestion)
	assert.Equal(t, "réponse 1", conv.FirstAnswer)

	// Unknown ids are a no-op, not an error.
	assert.NoError(t, store.RecordFirstExchange(ctx, "unknown", "q", "a"))
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(&fakeOpener{}, 10)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(&fakeOpener{}, 10)

	first, _, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)
	second, _, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)

	conversations, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, second.ID, conversations[0].ID)
	assert.Equal(t, first.ID, conversations[1].ID)

	// Viewing an old conversation must not reorder the listing; access
	// recency only drives eviction.
	_, err = store.Get(ctx, first.ID)
	require.NoError(t, err)

	conversations, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, second.ID, conversations[0].ID)
	assert.Equal(t, first.ID, conversations[1].ID)
}

func TestEviction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(&fakeOpener{}, 2)

	first, _, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)
	second, _, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)

	// Touch the oldest so the middle one becomes least recently used.
	_, err = store.Get(ctx, first.ID)
	require.NoError(t, err)

	third, _, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)

	_, err = store.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound, "least recently used conversation should be evicted")

	_, err = store.Get(ctx, first.ID)
	assert.NoError(t, err)
	_, err = store.Get(ctx, third.ID)
	assert.NoError(t, err)
}
