// Package ratelimit provides per-fingerprint flood protection for chat
// messages.
//
// Model: a counting window with a separate penalty. Up to maxMessages
// are accepted inside one window; the message that exceeds the limit
// starts a cooldown during which everything is rejected. When the
// cooldown ends the window restarts clean.
package ratelimit

import (
	"sync"
	"time"
)

// bucket tracks one fingerprint. Two states: counting (windowStart
// based) and cooling down (cooldownUntil > now rejects everything).
type bucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = no cooldown
}

// MessageRateLimiter rejects chat floods per fingerprint.
type MessageRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxMessages int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewMessageRateLimiter starts the limiter and its background cleanup.
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*bucket),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether the fingerprint may send another message now.
func (rl *MessageRateLimiter) Allow(fingerprint string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[fingerprint]
	if !ok {
		rl.buckets[fingerprint] = &bucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	if !b.cooldownUntil.IsZero() {
		// Cooldown over, start a fresh window.
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxMessages {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds returns the remaining penalty for the fingerprint,
// rounded up, or 0 when it may send.
func (rl *MessageRateLimiter) CooldownSeconds(fingerprint string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[fingerprint]
	if !ok || b.cooldownUntil.IsZero() {
		return 0
	}
	remaining := time.Until(b.cooldownUntil)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Stop terminates the background cleanup goroutine.
func (rl *MessageRateLimiter) Stop() {
	close(rl.stopCleanup)
}

func (rl *MessageRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup drops buckets whose window and cooldown have both expired.
func (rl *MessageRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for fp, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)
		if windowExpired && cooldownExpired {
			delete(rl.buckets, fp)
		}
	}
}
