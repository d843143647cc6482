package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const blacklistPrefix = "jwt:blacklist:"

// Blacklist remembers revoked token ids until they would have expired anyway.
// It stores entries in Redis when a client is given, otherwise in process memory.
type Blacklist struct {
	rdb *redis.Client
	log *zap.Logger

	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewBlacklist(rdb *redis.Client, log *zap.Logger) *Blacklist {
	return &Blacklist{rdb: rdb, log: log, entries: make(map[string]time.Time)}
}

func (b *Blacklist) Add(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if b.rdb != nil {
		return b.rdb.Set(ctx, blacklistPrefix+tokenID, "1", ttl).Err()
	}
	b.mu.Lock()
	b.entries[tokenID] = expiresAt
	b.mu.Unlock()
	return nil
}

// Contains fails open on Redis errors so an outage does not lock every user out.
func (b *Blacklist) Contains(ctx context.Context, tokenID string) bool {
	if b.rdb != nil {
		n, err := b.rdb.Exists(ctx, blacklistPrefix+tokenID).Result()
		if err != nil {
			b.log.Warn("token blacklist lookup failed", zap.Error(err))
			return false
		}
		return n > 0
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[tokenID]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		b.mu.Lock()
		delete(b.entries, tokenID)
		b.mu.Unlock()
		return false
	}
	return true
}

// Sweep drops expired in-memory entries.
func (b *Blacklist) Sweep() {
	now := time.Now()
	b.mu.Lock()
	for id, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, id)
		}
	}
	b.mu.Unlock()
}
