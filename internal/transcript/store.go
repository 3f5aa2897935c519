package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "whatsapp_transcript:"

// transcriptTTL keeps conversations around long enough for support lookups
// without growing Redis forever.
const transcriptTTL = 30 * 24 * time.Hour

// Message is one entry in a customer's transcript. Direction is "in" for
// customer messages and "out" for bot replies.
type Message struct {
	ID        string    `json:"id"`
	Direction string    `json:"direction"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps per-customer message transcripts in Redis. A nil Store (no
// Redis configured) silently drops appends, so callers never have to guard.
type Store struct {
	redis       *redis.Client
	maxMessages int64
}

func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		return nil
	}
	return &Store{
		redis:       redisClient,
		maxMessages: 250,
	}
}

// Append records one message at the end of the customer's transcript.
func (s *Store) Append(ctx context.Context, phone, direction, body string) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if phone == "" {
		return errors.New("transcript: phone required")
	}

	msg := Message{
		ID:        uuid.NewString(),
		Direction: direction,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transcript: marshal message: %w", err)
	}

	key := transcriptKey(phone)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, transcriptTTL)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("transcript: append message: %w", err)
	}
	return nil
}

// List returns the customer's transcript in chronological order. limit > 0
// returns only the most recent entries.
func (s *Store) List(ctx context.Context, phone string, limit int64) ([]Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if phone == "" {
		return nil, errors.New("transcript: phone required")
	}

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(phone), start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("transcript: list messages: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(phone string) string {
	return keyPrefix + phone
}
