package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinWindow(t *testing.T) {
	rl := NewMessageRateLimiter(3, time.Second, time.Second)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("fp") {
			t.Fatalf("message %d rejected within limit", i+1)
		}
	}
	if rl.Allow("fp") {
		t.Fatal("message over limit was allowed")
	}
}

func TestCooldownRejectsEverything(t *testing.T) {
	rl := NewMessageRateLimiter(1, time.Minute, time.Minute)
	defer rl.Stop()

	rl.Allow("fp")
	rl.Allow("fp") // starts the cooldown

	if rl.Allow("fp") {
		t.Fatal("message accepted during cooldown")
	}
	if secs := rl.CooldownSeconds("fp"); secs <= 0 {
		t.Fatalf("expected positive cooldown, got %d", secs)
	}
}

func TestCooldownExpires(t *testing.T) {
	rl := NewMessageRateLimiter(1, 10*time.Millisecond, 20*time.Millisecond)
	defer rl.Stop()

	rl.Allow("fp")
	rl.Allow("fp") // starts the cooldown
	time.Sleep(30 * time.Millisecond)

	if !rl.Allow("fp") {
		t.Fatal("message rejected after cooldown expired")
	}
	if secs := rl.CooldownSeconds("fp"); secs != 0 {
		t.Fatalf("expected no cooldown, got %d", secs)
	}
}

func TestFingerprintsAreIndependent(t *testing.T) {
	rl := NewMessageRateLimiter(1, time.Minute, time.Minute)
	defer rl.Stop()

	rl.Allow("noisy")
	rl.Allow("noisy") // noisy is cooling down

	if !rl.Allow("quiet") {
		t.Fatal("unrelated fingerprint hit noisy fingerprint's cooldown")
	}
}
