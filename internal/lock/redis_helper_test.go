package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const isolatedLockTestRedisDB = 13

// newTestRedisClient connects to REDIS_ADDR (or a local default) and skips the test when no
// Redis is reachable.
func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addrs := []string{os.Getenv("REDIS_ADDR"), "redis:6379", "localhost:6379", "127.0.0.1:6379"}
	var lastErr error
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       isolatedLockTestRedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return client
		}
		_ = client.Close()
		lastErr = err
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return nil
}

// testPrefix gives each test its own key space and removes it afterwards.
func testPrefix(t *testing.T, client *redis.Client) string {
	t.Helper()

	prefix := "test-lock:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			_ = client.Del(ctx, iter.Val()).Err()
		}
		_ = client.Close()
	})
	return prefix
}
