package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"claira-social/internal/transport/http/response"
)

const minLimiterIdle = 10 * time.Minute

type ownerBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// OwnerLimiter hands out one token bucket per authenticated owner. Buckets
// unused for longer than idle are dropped; by then they have refilled, so a
// fresh bucket behaves the same.
type OwnerLimiter struct {
	mu        sync.Mutex
	buckets   map[uint]*ownerBucket
	every     rate.Limit
	burst     int
	retry     string
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewOwnerLimiter(perMinute, burst int) *OwnerLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	if burst <= 0 {
		burst = 5
	}
	interval := time.Minute / time.Duration(perMinute)
	idle := minLimiterIdle
	if refill := interval * time.Duration(burst); refill > idle {
		idle = refill
	}
	return &OwnerLimiter{
		buckets: make(map[uint]*ownerBucket),
		every:   rate.Every(interval),
		burst:   burst,
		retry:   strconv.Itoa((60 + perMinute - 1) / perMinute),
		idle:    idle,
		now:     time.Now,
	}
}

func (l *OwnerLimiter) Allow(ownerID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	b, ok := l.buckets[ownerID]
	if !ok {
		b = &ownerBucket{lim: rate.NewLimiter(l.every, l.burst)}
		l.buckets[ownerID] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// Len reports how many owners currently hold a bucket.
func (l *OwnerLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *OwnerLimiter) sweep(now time.Time) {
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, id)
		}
	}
	l.lastSweep = now
}

// RateLimit must run after AuthJWT.
func RateLimit(l *OwnerLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}
		if !l.Allow(ownerID) {
			c.Header("Retry-After", l.retry)
			response.Error(c, http.StatusTooManyRequests, response.CodeTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
