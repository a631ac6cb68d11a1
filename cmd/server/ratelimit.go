package main

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter throttles the routes that call the model per client IP address.
// Session cookies are chosen by the client, so they can't be the key.
type rateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*client
	// trust X-Forwarded-For; only set behind a reverse proxy that overwrites it
	trustProxy bool
}

func newRateLimiter(rps float64, burst int, trustProxy bool) *rateLimiter {
	return &rateLimiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		clients:    map[string]*client{},
		trustProxy: trustProxy,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()
	return c.limiter.Allow()
}

func (rl *rateLimiter) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r, rl.trustProxy)
		if !rl.allow(key) {
			log.Printf("rate limit exceeded for %s", key)
			http.Error(w, "Too many requests, please wait a moment", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanup forgets clients not seen for maxIdle.
func (rl *rateLimiter) cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if time.Since(c.lastSeen) > maxIdle {
			delete(rl.clients, key)
		}
	}
}

// clientKey returns the caller's address. The first X-Forwarded-For entry is
// used only when the proxy in front of us is trusted to set it.
func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			ip, _, _ := strings.Cut(forwarded, ",")
			if ip = strings.TrimSpace(ip); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
