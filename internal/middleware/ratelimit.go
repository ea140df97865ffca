// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// bucket counts the submissions of one visitor to one form in the current window.
type bucket struct {
	count int
	reset time.Time
}

// RateLimiter caps how often a visitor may post the lead forms and the
// admin login. Each route has its own budget so a burst of budget
// requests does not lock the same visitor out of the contact form.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter allows limit submissions per visitor and route in each
// window. A janitor goroutine drops expired buckets until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Stop ends the janitor. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(max(rl.window, time.Minute))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if !now.Before(b.reset) {
			delete(rl.buckets, key)
		}
	}
}

// take consumes one submission for key. When the budget is spent it
// reports how long until the window resets.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || !now.Before(b.reset) {
		b = &bucket{reset: now.Add(rl.window)}
		rl.buckets[key] = b
	}
	if b.count >= rl.limit {
		return false, b.reset.Sub(now)
	}
	b.count++
	return true, 0
}

// Middleware rejects the request with 429 once the visitor has used up
// the route's budget. JSON callers get a JSON body.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, wait := rl.take(ip + " " + r.URL.Path)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		slog.Warn("form rate limit exceeded", "ip", ip, "path", r.URL.Path)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		reject(w, r, http.StatusTooManyRequests, "Muitas tentativas. Aguarde e tente novamente.")
	})
}

// clientIP returns the visitor's address. The site runs behind a single
// reverse proxy, so the first X-Forwarded-For hop is the visitor.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
