package middleware

import (
	"net/http"
	"sync"
	"time"

	"tilerp/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ipLimiter is the token bucket of one client IP.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP: rps tokens per second
// with a burst of twice that. Idle IPs are dropped after idleTTL.
type RateLimiter struct {
	mu      sync.Mutex
	ips     map[string]*ipLimiter
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

func NewRateLimiter(rps int) *RateLimiter {
	if rps <= 0 {
		rps = 20
	}
	return &RateLimiter{
		ips:     make(map[string]*ipLimiter),
		rps:     rate.Limit(rps),
		burst:   rps * 2,
		idleTTL: 10 * time.Minute,
	}
}

func (l *RateLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.ips[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Middleware rejects requests over the per-IP limit with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// Purge drops entries idle for longer than idleTTL and returns how many went.
func (l *RateLimiter) Purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for ip, entry := range l.ips {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.ips, ip)
			purged++
		}
	}
	return purged
}

// RunPurge calls Purge every interval until stop is closed.
func (l *RateLimiter) RunPurge(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if n := l.Purge(now); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
