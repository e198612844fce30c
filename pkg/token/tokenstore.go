package tokenstore

import (
	"context"
	"log"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Revocation store for JWT jti claims. When UseRedis succeeds at
// startup revocations are shared across instances and expire on their
// own; otherwise they live in process memory (fine for a single
// instance, lost on restart which only un-revokes already-expired
// sessions eventually).

const revokedTTL = 24 * time.Hour // matches the access-token expiry

var (
	mu            sync.RWMutex
	revokedTokens = map[string]struct{}{}

	rdb *redis.Client
)

// UseRedis switches the store to the given redis URL. Called once at
// startup; not safe to call concurrently with Revoke/IsRevoked.
func UseRedis(url string) error {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return err
	}
	rdb = c
	return nil
}

func RevokeToken(jti string) {
	if jti == "" {
		return
	}
	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := rdb.Set(ctx, key(jti), "1", revokedTTL).Err()
		if err == nil {
			return
		}
		log.Printf("[token] redis revoke failed, using memory: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	revokedTokens[jti] = struct{}{}
}

func IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rdb.Exists(ctx, key(jti)).Result(); err == nil {
			return n > 0
		}
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := revokedTokens[jti]
	return ok
}

func key(jti string) string { return "revoked_jti:" + jti }
