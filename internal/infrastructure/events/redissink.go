// Package events provides security event sink implementations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"clinica/internal/domain/session"
	"clinica/internal/shared/biztime"
)

const (
	// redisEventKey is the list holding recent security events.
	redisEventKey = "security:events"
	// redisEventCap bounds the list so the sink cannot grow without limit.
	redisEventCap = 10000
	// redisEventTTL expires the whole list if nothing appends for a week.
	redisEventTTL = 7 * 24 * time.Hour
)

type redisEvent struct {
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Timestamp string            `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RedisEventSink appends security events to a capped redis list.
type RedisEventSink struct {
	client *redis.Client
}

func NewRedisEventSink(client *redis.Client) session.EventSink {
	return &RedisEventSink{client: client}
}

func (s *RedisEventSink) Append(ctx context.Context, ev session.Event) error {
	data, err := json.Marshal(redisEvent{
		UserID:    ev.UserID,
		Type:      string(ev.Type),
		Timestamp: biztime.FormatMetadataTime(ev.Timestamp),
		Metadata:  ev.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal security event: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, redisEventKey, data)
	pipe.LTrim(ctx, redisEventKey, 0, redisEventCap-1)
	pipe.Expire(ctx, redisEventKey, redisEventTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append security event to redis: %w", err)
	}
	return nil
}
