// Package ratelimit counts attempts per key in fixed windows. Expired
// windows are dropped by Sweep, which the janitor runs.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter allows at most limit attempts per key in each window of length
// per. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	per     time.Duration
	now     func() time.Time
}

type bucket struct {
	used  int
	reset time.Time
}

func New(limit int, per time.Duration) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		per:     per,
		now:     time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.buckets[key]
	if b == nil || !now.Before(b.reset) {
		l.buckets[key] = &bucket{used: 1, reset: now.Add(l.per)}
		return true
	}
	if b.used >= l.limit {
		return false
	}
	b.used++
	return true
}

// Remaining reports how many attempts key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil || !l.now().Before(b.reset) {
		return l.limit
	}
	return max(l.limit-b.used, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Sweep drops windows that ended before now and reports how many it dropped.
func (l *Limiter) Sweep(_ context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	for key, b := range l.buckets {
		if !now.Before(b.reset) {
			delete(l.buckets, key)
			n++
		}
	}
	return n, nil
}

// ClientIP returns the caller's address: the first X-Forwarded-For hop,
// then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginLimiter guards sign-in and registration. Attempts are counted per
// client IP and, when an email is given, per account.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email per
// 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipPer time.Duration, emailLimit int, emailPer time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(ipLimit, ipPer),
		byEmail: New(emailLimit, emailPer),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check records an attempt and reports whether it may proceed. When it may
// not, reason is a message fit for the client.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, reason string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "too many attempts from this address; wait a minute and try again"
	}
	if key := emailKey(email); key != "" && !ll.byEmail.Allow(key) {
		return false, "too many attempts for this account; wait a few minutes and try again"
	}
	return true, ""
}

// ResetEmail clears the account counter after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.byEmail.Reset(key)
	}
}

// Sweep drops expired windows from both counters.
func (ll *LoginLimiter) Sweep(ctx context.Context, now time.Time) (int64, error) {
	a, _ := ll.byIP.Sweep(ctx, now)
	b, _ := ll.byEmail.Sweep(ctx, now)
	return a + b, nil
}
