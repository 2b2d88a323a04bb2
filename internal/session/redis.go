package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	convKeyPrefix = "conversation:"
	convIndexKey  = "conversations"
)

// RedisStore keeps conversation bookkeeping in redis, so it survives process
// restarts and can be shared between replicas. Each conversation is a hash;
// a sorted set scored by creation time provides the listing order.
type RedisStore struct {
	opener ThreadOpener
	rdb    *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(opener ThreadOpener, rdb *redis.Client) *RedisStore {
	return &RedisStore{opener: opener, rdb: rdb}
}

func convKey(id string) string { return convKeyPrefix + id }

func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (Conversation, bool, error) {
	if id != "" {
		conv, err := s.Get(ctx, id)
		if err == ErrNotFound {
			// Unknown ids pass through untracked, as in the memory store.
			return Conversation{ID: id}, false, nil
		}
		if err != nil {
			return Conversation{}, false, err
		}
		return conv, false, nil
	}

	threadID, err := s.opener.OpenThread(ctx)
	if err != nil {
		return Conversation{}, false, err
	}

	now := time.Now()
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, convKey(threadID), "created_at", now.Unix())
	pipe.ZAdd(ctx, convIndexKey, redis.Z{Score: float64(now.Unix()), Member: threadID})
	if _, err := pipe.Exec(ctx); err != nil {
		return Conversation{}, false, fmt.Errorf("record conversation: %w", err)
	}
	return Conversation{ID: threadID, CreatedAt: now}, true, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Conversation, error) {
	fields, err := s.rdb.HGetAll(ctx, convKey(id)).Result()
	if err != nil {
		return Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	if len(fields) == 0 {
		return Conversation{}, ErrNotFound
	}

	conv := Conversation{
		ID:            id,
		FirstQuestion: fields["first_question"],
		FirstAnswer:   fields["first_answer"],
	}
	if raw, ok := fields["created_at"]; ok {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			conv.CreatedAt = time.Unix(unix, 0)
		}
	}
	return conv, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Conversation, error) {
	ids, err := s.rdb.ZRevRange(ctx, convIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	conversations := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		conv, err := s.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

// RecordFirstExchange relies on HSETNX for the write-once semantics: fields
// already present keep their first value.
func (s *RedisStore) RecordFirstExchange(ctx context.Context, id, question, answer string) error {
	exists, err := s.rdb.Exists(ctx, convKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check conversation: %w", err)
	}
	if exists == 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSetNX(ctx, convKey(id), "first_question", question)
	pipe.HSetNX(ctx, convKey(id), "first_answer", answer)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record first exchange: %w", err)
	}
	return nil
}
