package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ErrCodeRateLimited is returned when a client exceeds its request budget
const ErrCodeRateLimited = "ERR_RATE_LIMITED"

const defaultMaxClients = 10000

// ClientKeyFunc identifies the client a request is counted against
type ClientKeyFunc func(c *gin.Context) string

// RateLimiter keeps a token bucket per client. It guards the administrator
// token endpoint against key guessing.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*visitor
	limit      int
	every      rate.Limit
	window     time.Duration
	maxClients int
	lastSweep  time.Time
	key        ClientKeyFunc
	now        func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterOption configures a RateLimiter
type RateLimiterOption func(*RateLimiter)

// WithClientKey sets how clients are told apart. The default is gin's ClientIP.
func WithClientKey(key ClientKeyFunc) RateLimiterOption {
	return func(rl *RateLimiter) {
		if key != nil {
			rl.key = key
		}
	}
}

// WithMaxClients caps the number of tracked clients. The least recently
// seen client is dropped to make room.
func WithMaxClients(n int) RateLimiterOption {
	return func(rl *RateLimiter) {
		if n > 0 {
			rl.maxClients = n
		}
	}
}

// NewRateLimiter allows limit requests per window per client. A client may
// burst up to limit and regains one request every window/limit.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		clients:    make(map[string]*visitor),
		limit:      limit,
		window:     window,
		maxClients: defaultMaxClients,
		key:        func(c *gin.Context) string { return c.ClientIP() },
		now:        time.Now,
	}
	if limit > 0 && window > 0 {
		rl.every = rate.Every(window / time.Duration(limit))
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow takes one request from key's budget
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	return rl.visitor(key, now).limiter.AllowN(now, 1)
}

// Remaining returns the whole requests left in key's budget
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.clients[key]
	if !ok {
		return rl.limit
	}
	return int(v.limiter.TokensAt(rl.now()))
}

// visitor returns key's bucket, creating it if needed. Caller holds mu.
func (rl *RateLimiter) visitor(key string, now time.Time) *visitor {
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(now)
	}

	v, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= rl.maxClients {
			rl.sweep(now)
			rl.evictOldest()
		}
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = v
	}
	v.lastSeen = now
	return v
}

// sweep drops clients idle for a full window. Their bucket would be full
// again anyway. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, v := range rl.clients {
		if now.Sub(v.lastSeen) >= rl.window {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// evictOldest makes room for one client. Caller holds mu.
func (rl *RateLimiter) evictOldest() {
	for len(rl.clients) >= rl.maxClients {
		var (
			oldestKey string
			oldest    time.Time
		)
		for key, v := range rl.clients {
			if oldestKey == "" || v.lastSeen.Before(oldest) {
				oldestKey, oldest = key, v.lastSeen
			}
		}
		delete(rl.clients, oldestKey)
	}
}

// RateLimit rejects requests from clients over their budget with 429
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := limiter.key(c)

		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window/time.Duration(max(limiter.limit, 1))/time.Second)+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
