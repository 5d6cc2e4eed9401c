package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const RunLockKey = "quartergate:lock:run"

var ErrLockHeld = errors.New("run lock is held by another process")

// Deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func CloseRedis(client *redis.Client) {
	if client != nil {
		client.Close()
	}
}

type RunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{client: client, key: RunLockKey, ttl: ttl}
}

// Acquire returns the token needed to release the lock, or ErrLockHeld.
func (l *RunLock) Acquire(ctx context.Context) (string, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

func (l *RunLock) Release(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
}
