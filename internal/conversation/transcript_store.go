package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// transcriptTTL bounds hot transcript storage. Conversation state outlives
// the transcript in Postgres.
const transcriptTTL = 7 * 24 * time.Hour

// TranscriptStore persists the ordered message history of a conversation.
type TranscriptStore interface {
	Load(ctx context.Context, conversationID string) ([]llm.ChatMessage, error)
	Save(ctx context.Context, conversationID string, history []llm.ChatMessage) error
}

// RedisTranscriptStore keeps transcripts in Redis as JSON arrays.
type RedisTranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisTranscriptStore creates a transcript store backed by Redis.
func NewRedisTranscriptStore(client *redis.Client) *RedisTranscriptStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisTranscriptStore{
		redis:  client,
		tracer: otel.Tracer("leadqual.internal.conversation"),
	}
}

// Load returns the stored transcript, or nil when none exists yet.
func (s *RedisTranscriptStore) Load(ctx context.Context, conversationID string) ([]llm.ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_transcript")
	defer span.End()

	data, err := s.redis.Get(ctx, transcriptKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load transcript: %w", err)
	}

	var history []llm.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode transcript: %w", err)
	}
	return history, nil
}

// Save replaces the stored transcript.
func (s *RedisTranscriptStore) Save(ctx context.Context, conversationID string, history []llm.ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_transcript")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal transcript: %w", err)
	}
	if err := s.redis.Set(ctx, transcriptKey(conversationID), data, transcriptTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist transcript: %w", err)
	}
	return nil
}

func transcriptKey(id string) string {
	return fmt.Sprintf("transcript:%s", id)
}

// InMemoryTranscriptStore keeps transcripts in memory for development and tests.
type InMemoryTranscriptStore struct {
	mu          sync.RWMutex
	transcripts map[string][]llm.ChatMessage
}

// NewInMemoryTranscriptStore creates an empty in-memory store.
func NewInMemoryTranscriptStore() *InMemoryTranscriptStore {
	return &InMemoryTranscriptStore{transcripts: make(map[string][]llm.ChatMessage)}
}

// Load returns the stored transcript, or nil when none exists yet.
func (s *InMemoryTranscriptStore) Load(ctx context.Context, conversationID string) ([]llm.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.transcripts[conversationID]
	if !ok {
		return nil, nil
	}
	out := make([]llm.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

// Save replaces the stored transcript.
func (s *InMemoryTranscriptStore) Save(ctx context.Context, conversationID string, history []llm.ChatMessage) error {
	copied := make([]llm.ChatMessage, len(history))
	copy(copied, history)

	s.mu.Lock()
	s.transcripts[conversationID] = copied
	s.mu.Unlock()
	return nil
}
