package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/pkg/helpers"
)

var ErrSessionNotFound = errors.New("session not found")

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// SessionStore keeps one session hash per user; saving replaces the previous one.
type SessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSessionStore(rdb redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, sess entity.Session) error {
	key := sessionKey(sess.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"sid":        sess.ID,
		"email":      sess.Email,
		"name":       sess.Name,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(data) == 0 || data["sid"] == "" {
		return nil, ErrSessionNotFound
	}
	sess := &entity.Session{
		ID:     data["sid"],
		UserID: userID,
		Email:  data["email"],
		Name:   data["name"],
	}
	if t, err := time.Parse(time.RFC3339Nano, data["created_at"]); err == nil {
		sess.CreatedAt = t
	}
	return sess, nil
}

// touchScript writes the name only while the hash exists so a session
// expiring mid-call is never recreated without a TTL.
var touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "name", ARGV[1])
return 1
`)

// Touch refreshes the cached display name while keeping the remaining TTL.
func (s *SessionStore) Touch(ctx context.Context, userID, name string) error {
	if err := touchScript.Run(ctx, s.rdb, []string{sessionKey(userID)}, name).Err(); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := helpers.RedisDel(ctx, s.rdb, sessionKey(userID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
