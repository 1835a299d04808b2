package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter_SweepDropsIdleClients(t *testing.T) {
	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 5)
	l.now = func() time.Time { return clock }

	l.getLimiter("203.0.113.1")
	l.getLimiter("203.0.113.2")
	assert.Equal(t, 2, l.Len())

	clock = clock.Add(limiterIdleTTL / 2)
	l.getLimiter("203.0.113.2")
	assert.Zero(t, l.Sweep())

	clock = clock.Add(limiterIdleTTL/2 + time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	clock = clock.Add(limiterIdleTTL)
	assert.Equal(t, 1, l.Sweep())
	assert.Zero(t, l.Len())
}

func TestIPRateLimiter_SweepKeepsUnrefilledBuckets(t *testing.T) {
	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	// 2 tokens at 0.001/s take 2000 s to refill, longer than the idle TTL.
	l := NewIPRateLimiter(0.001, 2)
	l.now = func() time.Time { return clock }
	assert.InDelta(t, 2000, l.ttl.Seconds(), 1e-6)

	l.getLimiter("203.0.113.1")
	clock = clock.Add(limiterIdleTTL + time.Minute)
	assert.Zero(t, l.Sweep())

	clock = clock.Add(2000 * time.Second)
	assert.Equal(t, 1, l.Sweep())
}

func TestIdleTTL(t *testing.T) {
	assert.Equal(t, limiterIdleTTL, idleTTL(rate.Inf, 0))
	assert.Equal(t, limiterIdleTTL, idleTTL(10, 20))
	assert.Equal(t, limiterIdleTTL, idleTTL(0, 20))
}

func TestIPRateLimiter_SweepEvery(t *testing.T) {
	l := NewIPRateLimiter(10, 1)
	l.ttl = 0
	l.getLimiter("203.0.113.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.sweepEvery(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	assert.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}
