package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "kiosk:session:"

// sessionTTL caps how long a persisted copy can outlive its session. The
// retention cleanup normally deletes keys first; the TTL is the backstop.
const sessionTTL = 48 * time.Hour

// RedisSessionStore implements Persistence on top of redis. Each session is
// one JSON value under a namespaced key.
type RedisSessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisSessionStore(redisClient *redis.Client) *RedisSessionStore {
	if redisClient == nil {
		return nil
	}
	return &RedisSessionStore{
		redis:  redisClient,
		tracer: otel.Tracer("kiosk.internal.assistant.sessions"),
	}
}

func (s *RedisSessionStore) Save(ctx context.Context, session *SessionContext) error {
	if session == nil || session.SessionID == "" {
		return errors.New("assistant: session with id required")
	}

	ctx, span := s.tracer.Start(ctx, "assistant.sessions.save")
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.SessionID), data, sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "assistant.sessions.delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to delete session: %w", err)
	}
	return nil
}

// LoadAll scans the session namespace and deserializes every stored session.
// Entries that fail to decode are skipped rather than aborting the scan.
func (s *RedisSessionStore) LoadAll(ctx context.Context) ([]*SessionContext, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.sessions.load_all")
	defer span.End()

	var sessions []*SessionContext
	iter := s.redis.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			span.RecordError(err)
			return nil, fmt.Errorf("assistant: failed to load session %s: %w", iter.Val(), err)
		}
		var session SessionContext
		if err := json.Unmarshal(data, &session); err != nil {
			span.RecordError(err)
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: session scan failed: %w", err)
	}
	return sessions, nil
}

// Clear deletes every key in the session namespace.
func (s *RedisSessionStore) Clear(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "assistant.sessions.clear")
	defer span.End()

	iter := s.redis.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			span.RecordError(err)
			return fmt.Errorf("assistant: failed to clear session %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: session clear scan failed: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
