package analytics

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// client is the minimal slice of *redis.Client this package drives. It
// exists for the same reason ethdb/redisdb's simpleClient interface
// does in go-ethereum: it lets tests substitute a lightweight fake
// without reimplementing redis.Cmdable's entire surface.
type client interface {
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRangeByScoreWithScores(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.ZSliceCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

var _ client = (*redis.Client)(nil)
