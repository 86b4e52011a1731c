package sessions

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ ConditionalStore = (*RedisStore)(nil)

const sessionKeyPrefix = "authcore:session:"

// casScript swaps the slot value only when it matches the expected token.
// Returns 1 on swap, 0 when the slot is empty, -1 on mismatch.
var casScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return 0
end
if cur ~= ARGV[1] then
	return -1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// clearScript deletes the slot only when it matches the expected token.
// Returns 1 on delete, 0 when the slot is empty, -1 on mismatch.
var clearScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return 0
end
if cur ~= ARGV[1] then
	return -1
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisStore keeps session slots in Redis with a TTL matching the refresh
// token lifetime, so abandoned sessions expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", errors.Wrap(err, "[RedisStore.Get] GET")
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, userID, refreshToken string) error {
	if err := s.client.Set(ctx, sessionKey(userID), refreshToken, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Set] SET")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Clear] DEL")
	}
	return nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, userID, expected, next string) error {
	res, err := casScript.Run(ctx, s.client, []string{sessionKey(userID)}, expected, next, s.ttl.Milliseconds()).Int()
	if err != nil {
		return errors.Wrap(err, "[RedisStore.CompareAndSwap] script")
	}
	switch res {
	case 0:
		return ErrNoSession
	case -1:
		return ErrTokenMismatch
	}
	return nil
}

func (s *RedisStore) CompareAndClear(ctx context.Context, userID, expected string) error {
	res, err := clearScript.Run(ctx, s.client, []string{sessionKey(userID)}, expected).Int()
	if err != nil {
		return errors.Wrap(err, "[RedisStore.CompareAndClear] script")
	}
	switch res {
	case 0:
		return ErrNoSession
	case -1:
		return ErrTokenMismatch
	}
	return nil
}
