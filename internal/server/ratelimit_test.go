package server

import (
	"testing"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
)

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:                  true,
		MaxAccountsPerIP:         2,
		AccountCreationCooldownS: 60,
		LoginAttemptWindowS:      300,
		MaxLoginAttempts:         3,
	}
}

func TestRegistrationCooldown(t *testing.T) {
	rl := NewRateLimiter(limiterConfig())
	now := time.Now()

	if err := rl.CheckRegistration("1.2.3.4", now); err != nil {
		t.Fatalf("fresh IP rejected: %v", err)
	}
	rl.RecordRegistration("1.2.3.4", now)

	if err := rl.CheckRegistration("1.2.3.4", now.Add(10*time.Second)); err == nil {
		t.Error("expected rejection inside the cooldown")
	}
	if err := rl.CheckRegistration("1.2.3.4", now.Add(61*time.Second)); err != nil {
		t.Errorf("rejected after cooldown elapsed: %v", err)
	}
	if err := rl.CheckRegistration("5.6.7.8", now); err != nil {
		t.Errorf("unrelated IP rejected: %v", err)
	}
}

func TestRegistrationAccountCap(t *testing.T) {
	rl := NewRateLimiter(limiterConfig())
	now := time.Now()

	rl.RecordRegistration("1.2.3.4", now)
	rl.RecordRegistration("1.2.3.4", now.Add(2*time.Minute))

	if err := rl.CheckRegistration("1.2.3.4", now.Add(time.Hour)); err == nil {
		t.Error("expected rejection at the per-IP account cap")
	}
}

func TestLoginFailureBlocking(t *testing.T) {
	rl := NewRateLimiter(limiterConfig())
	now := time.Now()

	for i := 0; i < 2; i++ {
		blocked, _ := rl.RecordLoginFailure("1.2.3.4", now.Add(time.Duration(i)*time.Second))
		if blocked {
			t.Fatalf("blocked after %d failures, threshold is 3", i+1)
		}
	}
	blocked, dur := rl.RecordLoginFailure("1.2.3.4", now.Add(2*time.Second))
	if !blocked {
		t.Fatal("third failure should trigger a block")
	}
	if dur != 300*time.Second {
		t.Errorf("block duration = %v, want 5m", dur)
	}

	isBlocked, remaining := rl.CheckLogin("1.2.3.4", now.Add(10*time.Second))
	if !isBlocked || remaining <= 0 {
		t.Error("CheckLogin should report the active block")
	}
	if isBlocked, _ := rl.CheckLogin("1.2.3.4", now.Add(10*time.Minute)); isBlocked {
		t.Error("block should expire with the window")
	}
}

func TestLoginFailureWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(limiterConfig())
	now := time.Now()

	rl.RecordLoginFailure("1.2.3.4", now)
	rl.RecordLoginFailure("1.2.3.4", now.Add(time.Second))

	// Both earlier failures fall out of the 5 minute window, so this one
	// counts as the first of a new streak.
	blocked, _ := rl.RecordLoginFailure("1.2.3.4", now.Add(10*time.Minute))
	if blocked {
		t.Error("stale failures must not count toward the threshold")
	}
}

func TestLoginSuccessClearsFailures(t *testing.T) {
	rl := NewRateLimiter(limiterConfig())
	now := time.Now()

	rl.RecordLoginFailure("1.2.3.4", now)
	rl.RecordLoginFailure("1.2.3.4", now)
	rl.RecordLoginSuccess("1.2.3.4")

	blocked, _ := rl.RecordLoginFailure("1.2.3.4", now.Add(time.Second))
	if blocked {
		t.Error("success should have reset the failure streak")
	}
}

func TestLimiterDisabled(t *testing.T) {
	cfg := limiterConfig()
	cfg.Enabled = false
	rl := NewRateLimiter(cfg)
	now := time.Now()

	for i := 0; i < 20; i++ {
		rl.RecordRegistration("1.2.3.4", now)
		if blocked, _ := rl.RecordLoginFailure("1.2.3.4", now); blocked {
			t.Fatal("disabled limiter must never block")
		}
	}
	if err := rl.CheckRegistration("1.2.3.4", now); err != nil {
		t.Errorf("disabled limiter rejected a registration: %v", err)
	}
}

func TestCleanupDropsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(limiterConfig())
	now := time.Now()

	rl.RecordLoginFailure("1.2.3.4", now)
	rl.Cleanup(now.Add(10 * time.Minute))

	if len(rl.loginAttempts) != 0 {
		t.Errorf("stale bucket survived cleanup: %d entries", len(rl.loginAttempts))
	}
}
