package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/fastygo/learner-portal/pkg/httpcontext"
)

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	EntryTTL          time.Duration
	CleanupInterval   time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one token bucket per caller key. Idle buckets are
// swept lazily on the request path.
type keyedLimiter struct {
	mu              sync.Mutex
	limit           rate.Limit
	burst           int
	entries         map[string]*limiterEntry
	entryTTL        time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

func newKeyedLimiter(cfg RateLimitConfig) *keyedLimiter {
	ttl := cfg.EntryTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}
	return &keyedLimiter{
		limit:           rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:           cfg.Burst,
		entries:         make(map[string]*limiterEntry),
		entryTTL:        ttl,
		cleanupInterval: cleanup,
		lastCleanup:     time.Now(),
		now:             time.Now,
	}
}

func (l *keyedLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= l.cleanupInterval {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.entryTTL {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *keyedLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RateLimit throttles each learner (or client IP when no learner id is
// known) to a token bucket. It must run after JWTAuth so X-User-ID is set.
// A non-positive rate or burst disables it.
func RateLimit(cfg RateLimitConfig) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if cfg.RequestsPerMinute <= 0 || cfg.Burst <= 0 {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}
	limiter := newKeyedLimiter(cfg)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if !limiter.allow(rateLimitKey(ctx)) {
				ctx.Response.Header.Set(fasthttp.HeaderRetryAfter, "60")
				ctx.Error("rate limit exceeded", fasthttp.StatusTooManyRequests)
				return
			}
			next(ctx)
		}
	}
}

func rateLimitKey(ctx *fasthttp.RequestCtx) string {
	if id := strings.TrimSpace(string(ctx.Request.Header.Peek(httpcontext.HeaderUserID))); id != "" {
		return "user:" + id
	}
	if ip := ctx.RemoteIP(); ip != nil && !ip.IsUnspecified() {
		return "ip:" + ip.String()
	}
	return "anonymous"
}
