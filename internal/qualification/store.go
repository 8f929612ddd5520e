package qualification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// MemoryStore persists QualificationMemory. Last-write-wins on concurrent
// turns is an accepted property of this store; see the dispatcher notes.
type MemoryStore interface {
	Load(ctx context.Context, conversationID string) (*Memory, error)
	Save(ctx context.Context, memory *Memory) error
}

// RedisMemoryStore keeps qualification memory in Redis without expiry;
// conversations are archived by collaborators, never deleted here.
type RedisMemoryStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisMemoryStore creates a Redis-backed memory store.
func NewRedisMemoryStore(client *redis.Client) *RedisMemoryStore {
	if client == nil {
		panic("qualification: redis client cannot be nil")
	}
	return &RedisMemoryStore{
		redis:  client,
		tracer: otel.Tracer("leadqual.internal.qualification"),
	}
}

// Load fetches the memory for a conversation, or nil when none exists yet.
// Memory is created lazily on the first qualification-relevant message.
func (s *RedisMemoryStore) Load(ctx context.Context, conversationID string) (*Memory, error) {
	ctx, span := s.tracer.Start(ctx, "qualification.load_memory")
	defer span.End()

	data, err := s.redis.Get(ctx, memoryKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("qualification: failed to load memory: %w", err)
	}

	var memory Memory
	if err := json.Unmarshal(data, &memory); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("qualification: failed to decode memory: %w", err)
	}
	return &memory, nil
}

// Save writes the memory back.
func (s *RedisMemoryStore) Save(ctx context.Context, memory *Memory) error {
	ctx, span := s.tracer.Start(ctx, "qualification.save_memory")
	defer span.End()

	if memory == nil || memory.ConversationID == "" {
		return fmt.Errorf("qualification: memory requires a conversation id")
	}
	data, err := json.Marshal(memory)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("qualification: failed to marshal memory: %w", err)
	}
	if err := s.redis.Set(ctx, memoryKey(memory.ConversationID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("qualification: failed to persist memory: %w", err)
	}
	return nil
}

func memoryKey(conversationID string) string {
	return fmt.Sprintf("qualmem:%s", conversationID)
}
