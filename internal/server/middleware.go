package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter tracks a token bucket per client IP, dropping idle entries so
// the map does not grow without bound.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitedClient
	rps     rate.Limit
	burst   int
	logger  *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

type rateLimitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(rps float64, burst int, logger *slog.Logger) *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*rateLimitedClient),
		rps:     rate.Limit(rps),
		burst:   burst,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// close ends the background cleanup. Safe to call more than once.
func (rl *rateLimiter) close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		rl.mu.Lock()
		client, ok := rl.clients[ip]
		if !ok {
			client = &rateLimitedClient{limiter: rate.NewLimiter(rl.rps, rl.burst)}
			rl.clients[ip] = client
		}
		client.lastSeen = time.Now()
		rl.mu.Unlock()

		if !client.limiter.Allow() {
			rl.logger.Warn("rate limit exceeded", "ip", ip)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		for ip, client := range rl.clients {
			if time.Since(client.lastSeen) > 5*time.Minute {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

// bearerAuth protects the manual run triggers. An empty configured token
// disables the check for local development.
func bearerAuth(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing bearer token"})
			return
		}
		if strings.TrimPrefix(auth, "Bearer ") != token {
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "bad token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
