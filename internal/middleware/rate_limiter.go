package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"airportpos/internal/apierror"

	"github.com/gin-gonic/gin"
)

// WindowLimiter counts requests per client IP in fixed windows.
// Expired entries are dropped lazily, at most once per window.
type WindowLimiter struct {
	limit  int
	window time.Duration
	msg    string
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*windowEntry
	nextPurge time.Time
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func NewWindowLimiter(limit int, window time.Duration, msg string) *WindowLimiter {
	return &WindowLimiter{
		limit:   limit,
		window:  window,
		msg:     msg,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return NewWindowLimiter(20, time.Minute, "Too many login attempts. Try again in a minute.").Handler()
}

// RateLimiter is the general API limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return NewWindowLimiter(limit, window, "Too many requests. Please slow down.").Handler()
}

func (l *WindowLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.5)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

func (l *WindowLimiter) allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextPurge) {
		for k, e := range l.entries {
			if now.After(e.windowEnd) {
				delete(l.entries, k)
			}
		}
		l.nextPurge = now.Add(l.window)
	}

	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	if e.count > l.limit {
		return false, e.windowEnd.Sub(now)
	}
	return true, 0
}
