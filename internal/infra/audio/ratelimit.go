package audio

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxTrackedClients = 4096

// RateLimiter allows each client a fixed number of requests per window.
// Counters live in an expiring LRU, so idle clients cost nothing.
type RateLimiter struct {
	mu     sync.Mutex
	rate   int
	counts *expirable.LRU[string, *int]
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:   rate,
		counts: expirable.NewLRU[string, *int](maxTrackedClients, nil, window),
	}
}

func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	count, ok := rl.counts.Get(client)
	if !ok {
		n := 1
		rl.counts.Add(client, &n)
		return true
	}

	if *count >= rl.rate {
		return false
	}
	*count++
	return true
}

func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
