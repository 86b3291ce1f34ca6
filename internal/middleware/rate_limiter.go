package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Ayush3323/crm-backend/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks the requests of one client IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// ipLimiter counts requests per client IP in fixed windows.
type ipLimiter struct {
	name    string
	limit   int
	window  time.Duration
	message string

	mu      sync.Mutex
	entries map[string]*windowEntry
}

const purgeInterval = 5 * time.Minute

func newIPLimiter(name string, limit int, window time.Duration, message string) *ipLimiter {
	l := &ipLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		entries: make(map[string]*windowEntry),
	}
	go l.purgeLoop()
	return l
}

// allow records one request from ip and reports whether it is within the
// limit, with the end of the current window.
func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Envelope{Success: false, Message: l.message})
			return
		}
		c.Next()
	}
}

// purgeLoop periodically removes expired entries so IPs that never return do
// not accumulate.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		l.mu.Lock()
		purged := 0
		for ip, e := range l.entries {
			if now.After(e.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Str("limiter", l.name).
				Int("entries_purged", purged).
				Int("entries_remaining", remaining).
				Msg("rate limiter map purged")
		}
	}
}

// LoginRateLimiter limits login attempts to limit per minute per IP.
func LoginRateLimiter(limit int) gin.HandlerFunc {
	return newIPLimiter("login", limit, time.Minute,
		"Too many login attempts. Please try again in a minute.").handler()
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter("api", limit, window,
		"Too many requests from this IP, please try again later.").handler()
}
