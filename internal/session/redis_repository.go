package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout:
//
//	session:<token>        -> JSON-encoded Session, TTL = expiry
//	user_sessions:<userID> -> set of tokens, for bulk revocation
const (
	sessionKeyPrefix  = "session:"
	userSessionPrefix = "user_sessions:"
)

// RedisRepository is a Redis implementation of Repository. Sessions
// expire on their own via key TTLs; the per-user set exists so
// revocation can find every token in one round trip.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis session repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Create stores a new session.
func (r *RedisRepository) Create(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+sess.Token, data, ttl)
	pipe.SAdd(ctx, userSessionPrefix+sess.UserID, sess.Token)
	pipe.ExpireGT(ctx, userSessionPrefix+sess.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by its token.
func (r *RedisRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// ListByUser returns all live sessions for a user. Tokens whose keys
// have lapsed are pruned from the index as they are encountered.
func (r *RedisRepository) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	tokens, err := r.client.SMembers(ctx, userSessionPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	var sessions []*Session
	for _, token := range tokens {
		sess, err := r.GetByToken(ctx, token)
		if err != nil {
			if err == ErrSessionNotFound {
				r.client.SRem(ctx, userSessionPrefix+userID, token)
				continue
			}
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// DeleteAllForUser removes every session for a user.
func (r *RedisRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	tokens, err := r.client.SMembers(ctx, userSessionPrefix+userID).Result()
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	if len(tokens) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, sessionKeyPrefix+token)
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.Del(ctx, userSessionPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return del.Val(), nil
}
