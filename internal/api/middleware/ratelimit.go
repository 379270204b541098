package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a client's bucket is kept after its last request
const clientIdleTTL = 5 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client address
type clientLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	clients   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(requestsPerSecond, burst uint) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(requestsPerSecond),
		burst:   int(burst),
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (c *clientLimiters) allow(client string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > clientIdleTTL {
		for key, b := range c.clients {
			if now.Sub(b.lastSeen) > clientIdleTTL {
				delete(c.clients, key)
			}
		}
		c.lastSweep = now
	}

	b, ok := c.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// clientKey is the request's remote host. RealIP runs earlier in the chain,
// so behind a proxy this is the forwarded client address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests above requestsPerSecond (with burst capacity)
// with 429. Each client address gets its own bucket. A zero rate disables
// limiting.
func RateLimit(requestsPerSecond, burst uint) func(http.Handler) http.Handler {
	if requestsPerSecond == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst == 0 {
		burst = requestsPerSecond
	}
	limiters := newClientLimiters(requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
