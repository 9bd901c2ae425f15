package events

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	// StreamKey is the Redis stream for ledger events.
	StreamKey = "stream:ledger_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000
)

// StreamAppender writes one entry to a capped Redis stream.
// *cache.Cache implements it.
type StreamAppender interface {
	AppendToStream(ctx context.Context, stream string, maxLen int64, values map[string]any) error
}

// RedisStream appends events to a Redis stream.
type RedisStream struct {
	appender StreamAppender
	stream   string
}

// NewRedisStream creates a sink writing to StreamKey.
func NewRedisStream(appender StreamAppender) *RedisStream {
	return &RedisStream{appender: appender, stream: StreamKey}
}

// Send adds the event to the stream.
func (s *RedisStream) Send(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return s.appender.AppendToStream(ctx, s.stream, MaxStreamLen, map[string]any{
		"type":    string(event.Type),
		"payload": string(data),
	})
}

// Close is a no-op; the Redis client is owned by the cache.
func (s *RedisStream) Close() error {
	return nil
}
