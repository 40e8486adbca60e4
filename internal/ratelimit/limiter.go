// Package ratelimit throttles ledger postings per caller. A local token bucket
// per key answers first; when Redis is configured a fixed-window counter
// shared by every replica enforces the global limit for that key.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxIdleBuckets bounds the local bucket map; past it, buckets idle for a
// full idleAfter are dropped.
const (
	maxIdleBuckets = 10_000
	idleAfter      = time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one local rate.Limiter per key with an optional Redis counter.
type Limiter struct {
	perSecond int
	burst     int
	redis     *redis.Client
	prefix    string
	window    time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New creates a limiter allowing perSecond events per key with the given
// burst. A perSecond of 0 disables limiting. client may be nil for local-only
// limiting. prefix namespaces the Redis keys.
func New(client *redis.Client, prefix string, perSecond, burst int, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		perSecond: perSecond,
		burst:     burst,
		redis:     client,
		prefix:    prefix,
		window:    time.Second,
		logger:    logger,
		buckets:   make(map[string]*bucket),
		now:       time.Now,
	}
}

// Allow reports whether one more event for key may proceed now.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.perSecond <= 0 {
		return true
	}
	if !l.local(key).Allow() {
		return false
	}
	if l.redis == nil {
		return true
	}

	windowKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, l.now().Unix()/int64(l.window/time.Second))
	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("redis rate limit check failed; using local limit", zap.String("key", key), zap.Error(err))
		return true
	}
	if incr.Val() > int64(l.burst) {
		l.logger.Debug("global rate limit exceeded", zap.String("key", key), zap.Int64("count", incr.Val()))
		return false
	}
	return true
}

func (l *Limiter) local(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxIdleBuckets {
			l.pruneLocked(now)
		}
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.perSecond), l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *Limiter) pruneLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= idleAfter {
			delete(l.buckets, k)
		}
	}
}
