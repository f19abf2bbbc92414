package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/cache"
	"github.com/0xAcousticbridge/GAID/internal/logger"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
	// Name prefixes redis keys and labels the rate limit error metric
	Name string
}

func clientKey(c *gin.Context) string {
	return c.ClientIP()
}

// DefaultRateLimitConfig returns the limit applied to the whole API
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 100, Window: time.Minute, KeyFunc: clientKey, Name: "api"}
}

// AuthRateLimitConfig returns stricter limits for sign in and sign up
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 10, Window: time.Minute, KeyFunc: clientKey, Name: "auth"}
}

// WriteRateLimitConfig returns limits for endpoints that create ideas, comments and prompts
func WriteRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 20, Window: time.Minute, KeyFunc: clientKey, Name: "write"}
}

// SearchRateLimitConfig returns limits for search endpoints
func SearchRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 60, Window: time.Minute, KeyFunc: clientKey, Name: "search"}
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientKey
	}
	if cfg.Name == "" {
		cfg.Name = "api"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

// TokenBucket refills continuously at refillRate tokens per second
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
}

// NewTokenBucket creates a full bucket
func NewTokenBucket(maxTokens, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = math.Min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow takes a token if one is available. retryAfter is set when it is not.
func (tb *TokenBucket) Allow() (ok bool, retryAfter time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true, 0
	}
	wait := (1 - tb.tokens) / tb.refillRate
	return false, time.Duration(wait * float64(time.Second))
}

// full reports whether the bucket has refilled completely, i.e. is idle
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(now)
	return tb.tokens >= tb.maxTokens
}

// limiter decides one request. remaining is -1 when unknown.
type limiter interface {
	allow(ctx context.Context, key string) (ok bool, remaining int, retryAfter time.Duration, err error)
}

// memoryLimiter keeps one token bucket per key
type memoryLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

func newMemoryLimiter(cfg RateLimitConfig) *memoryLimiter {
	return &memoryLimiter{cfg: cfg, buckets: make(map[string]*TokenBucket)}
}

func (l *memoryLimiter) allow(_ context.Context, key string) (bool, int, time.Duration, error) {
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = NewTokenBucket(float64(l.cfg.Limit), float64(l.cfg.Limit)/l.cfg.Window.Seconds())
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	allowed, retry := bucket.Allow()
	return allowed, -1, retry, nil
}

// sweep drops buckets that have refilled, so idle clients do not accumulate
func (l *memoryLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, bucket := range l.buckets {
		if bucket.full(now) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

func (l *memoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// redisLimiter is a fixed window counter shared by every server instance
type redisLimiter struct {
	cfg   RateLimitConfig
	redis *cache.RedisClient
}

func (l *redisLimiter) allow(ctx context.Context, key string) (bool, int, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, ttl, err := l.redis.IncrWindow(ctx, fmt.Sprintf("rate_limit:%s:%s", l.cfg.Name, key), l.cfg.Window)
	if err != nil {
		return false, 0, 0, err
	}
	if count > int64(l.cfg.Limit) {
		return false, 0, ttl, nil
	}
	return true, l.cfg.Limit - int(count), 0, nil
}

// NewRateLimiter returns an in-memory token bucket middleware.
// Cancelling ctx stops the idle bucket sweeper.
func NewRateLimiter(ctx context.Context, config RateLimitConfig) gin.HandlerFunc {
	cfg := config.withDefaults()
	l := newMemoryLimiter(cfg)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.sweep(now)
			}
		}
	}()

	return rateLimitHandler(cfg, l)
}

// NewRedisRateLimiter counts requests in redis so the limit holds across instances.
// A nil client falls back to the in-memory limiter.
func NewRedisRateLimiter(ctx context.Context, redis *cache.RedisClient, config RateLimitConfig) gin.HandlerFunc {
	if redis == nil {
		return NewRateLimiter(ctx, config)
	}
	cfg := config.withDefaults()
	return rateLimitHandler(cfg, &redisLimiter{cfg: cfg, redis: redis})
}

func rateLimitHandler(cfg RateLimitConfig, l limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		ok, remaining, retryAfter, err := l.allow(c.Request.Context(), key)
		if err != nil {
			// a broken limiter must not open the API up
			logger.Log.Error("Rate limit check failed",
				zap.String("limiter", cfg.Name),
				logger.WithIP(c.ClientIP()),
				zap.Error(err),
			)
			RecordError("rate_limiter_unavailable", routeLabel(c))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "rate limiter is temporarily unavailable",
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.Header("X-RateLimit-Remaining", "0")
			RecordError("rate_limited", routeLabel(c))
			logger.Log.Warn("Rate limit exceeded",
				zap.String("limiter", cfg.Name),
				logger.WithIP(c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        "RATE_LIMITED",
				"message":     "rate limit exceeded",
				"retry_after": seconds,
			})
			return
		}
		if remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		c.Next()
	}
}
