package session

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory store when no capacity is configured.
const DefaultCapacity = 1000

// MemoryStore is a mutex-guarded, bounded conversation store. When the
// capacity is exceeded the least-recently-used conversation is evicted; the
// hosted thread behind it keeps existing, only the local bookkeeping is
// dropped. Access recency drives eviction only: List always reports
// creation order, so reading an old conversation does not reorder it.
type MemoryStore struct {
	opener   ThreadOpener
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used, drives eviction only
	created []string   // conversation ids in creation order
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a bounded in-memory store. A capacity of zero or
// less falls back to DefaultCapacity.
func NewMemoryStore(opener ThreadOpener, capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		opener:   opener,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, id string) (Conversation, bool, error) {
	if id != "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if elem, ok := s.entries[id]; ok {
			s.lru.MoveToFront(elem)
			return *elem.Value.(*Conversation), false, nil
		}
		// Unknown ids pass through untracked (see Store docs).
		return Conversation{ID: id}, false, nil
	}

	threadID, err := s.opener.OpenThread(ctx)
	if err != nil {
		return Conversation{}, false, err
	}

	conv := &Conversation{ID: threadID, CreatedAt: time.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[threadID] = s.lru.PushFront(conv)
	s.created = append(s.created, threadID)
	s.evict()
	return *conv, true, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.entries[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	s.lru.MoveToFront(elem)
	return *elem.Value.(*Conversation), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversations := make([]Conversation, 0, len(s.created))
	for i := len(s.created) - 1; i >= 0; i-- {
		if elem, ok := s.entries[s.created[i]]; ok {
			conversations = append(conversations, *elem.Value.(*Conversation))
		}
	}
	return conversations, nil
}

func (s *MemoryStore) RecordFirstExchange(_ context.Context, id, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.entries[id]
	if !ok {
		return nil
	}
	conv := elem.Value.(*Conversation)
	if conv.FirstQuestion == "" {
		conv.FirstQuestion = question
	}
	if conv.FirstAnswer == "" {
		conv.FirstAnswer = answer
	}
	return nil
}

// evict drops least-recently-used conversations beyond capacity. Caller
// holds the lock.
func (s *MemoryStore) evict() {
	for s.lru.Len() > s.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			return
		}
		s.lru.Remove(oldest)
		id := oldest.Value.(*Conversation).ID
		delete(s.entries, id)
		for i, cid := range s.created {
			if cid == id {
				s.created = append(s.created[:i], s.created[i+1:]...)
				break
			}
		}
	}
}
