package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// RefreshLock single-flights refresh attempts across concurrent requests
// that share one refresh token. The CMS rotates the refresh token on use,
// so two tabs racing the refresh endpoint would otherwise terminate one
// session: the winner stores the rotated pair under a hash of the spent
// token for a short window and the losers pick it up from there.
//
// The lock is best-effort. Redis being down degrades to uncoordinated
// refreshes, which is the behavior without a lock at all.
type RefreshLock struct {
	rdb     *redis.Client
	log     *slog.Logger
	lockTTL time.Duration
	pairTTL time.Duration
	poll    time.Duration
	wait    time.Duration
}

// NewRefreshLock creates a lock over an established redis client.
func NewRefreshLock(rdb *redis.Client, log *slog.Logger) *RefreshLock {
	return &RefreshLock{
		rdb:     rdb,
		log:     log,
		lockTTL: 10 * time.Second,
		pairTTL: 30 * time.Second,
		poll:    100 * time.Millisecond,
		wait:    3 * time.Second,
	}
}

func tokenKey(prefix, token string) string {
	sum := sha256.Sum256([]byte(token))
	return prefix + hex.EncodeToString(sum[:])
}

// TryAcquire attempts to take the refresh lock for the token. On a redis
// error it reports true so the caller proceeds with a direct refresh.
func (l *RefreshLock) TryAcquire(ctx context.Context, token string) bool {
	ok, err := l.rdb.SetNX(ctx, tokenKey("refresh_lock:", token), "1", l.lockTTL).Result()
	if err != nil {
		l.log.Warn("refresh lock unavailable, refreshing without it", sl.Err(err))
		return true
	}
	return ok
}

// Release drops the lock.
func (l *RefreshLock) Release(ctx context.Context, token string) {
	if err := l.rdb.Del(ctx, tokenKey("refresh_lock:", token)).Err(); err != nil {
		l.log.Warn("failed to release refresh lock", sl.Err(err))
	}
}

// StoreRotatedPair records the pair that replaced the spent token.
func (l *RefreshLock) StoreRotatedPair(ctx context.Context, spentToken string, pair *models.TokenPair) {
	data, err := json.Marshal(pair)
	if err != nil {
		l.log.Warn("failed to encode rotated pair", sl.Err(err))
		return
	}
	if err := l.rdb.Set(ctx, tokenKey("rotated_pair:", spentToken), data, l.pairTTL).Err(); err != nil {
		l.log.Warn("failed to store rotated pair", sl.Err(err))
	}
}

// RotatedPair returns the pair another request already obtained for this
// token, if any.
func (l *RefreshLock) RotatedPair(ctx context.Context, token string) (*models.TokenPair, bool) {
	data, err := l.rdb.Get(ctx, tokenKey("rotated_pair:", token)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		l.log.Warn("failed to read rotated pair", sl.Err(err))
		return nil, false
	}
	var pair models.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		l.log.Warn("failed to decode rotated pair", sl.Err(err))
		return nil, false
	}
	return &pair, true
}

// AwaitRotatedPair polls for the lock holder's result for a bounded time.
func (l *RefreshLock) AwaitRotatedPair(ctx context.Context, token string) (*models.TokenPair, bool) {
	deadline := time.Now().Add(l.wait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(l.poll):
		}
		if pair, ok := l.RotatedPair(ctx, token); ok {
			return pair, true
		}
	}
	return nil, false
}
