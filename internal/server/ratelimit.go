package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client address. Clients idle
// for longer than the TTL are forgotten by Sweep.
type IPRateLimiter struct {
	ips map[string]*visitor
	mu  sync.Mutex
	r   rate.Limit
	b   int
	ttl time.Duration
	now func() time.Time
}

// NewIPRateLimiter allows each client r requests per second with bursts of b.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*visitor),
		r:   r,
		b:   b,
		ttl: idleTTL(r, b),
		now: time.Now,
	}
}

// idleTTL never drops a bucket before it could have refilled, so forgetting
// a client does not hand it extra tokens.
func idleTTL(r rate.Limit, b int) time.Duration {
	if r == rate.Inf || r <= 0 {
		return limiterIdleTTL
	}
	refill := time.Duration(float64(b) / float64(r) * float64(time.Second))
	return max(limiterIdleTTL, refill)
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = i.now()
	return v.limiter
}

// Sweep drops the buckets of clients not seen within the TTL and returns
// how many were dropped.
func (i *IPRateLimiter) Sweep() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-i.ttl)
	var n int
	for ip, v := range i.ips {
		if v.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			n++
		}
	}
	return n
}

// Len returns the number of tracked clients.
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

// sweepEvery runs Sweep on every tick until ctx is done.
func (i *IPRateLimiter) sweepEvery(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			i.Sweep()
		}
	}
}

// LimitMiddleware rejects requests over the client's budget with 429.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.getLimiter(clientIP(r)).Allow() {
			rateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, "too many requests, try again later", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP drops the port so that all connections from one host share a bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
