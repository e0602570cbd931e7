package lock

import (
	"context"
	"fmt"
	"time"

	"fitai-planner-be/internal/pkg/logger"
	"fitai-planner-be/pkg/planner"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fitai:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements planner.SubjectLocker with SET NX PX.
type RedisLocker struct {
	rdb    *redis.Client
	logger logger.ILogger
}

var _ planner.SubjectLocker = (*RedisLocker)(nil)

func NewRedisLocker(rdb *redis.Client, log logger.ILogger) *RedisLocker {
	return &RedisLocker{rdb: rdb, logger: log}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key

	acquired, err := l.rdb.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, planner.ErrCorrectionInProgress
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("LOCK", "Failed to release lock", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}, nil
}
