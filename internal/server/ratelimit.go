package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
)

// RateLimiter tracks per-IP registration and login-failure buckets.
// State is process-local on purpose: a restart resets it.
type RateLimiter struct {
	mu  sync.Mutex
	cfg config.RateLimitConfig

	registrations map[string]*registrationBucket
	loginAttempts map[string]*loginBucket
}

type registrationBucket struct {
	count      int
	timestamps []time.Time
}

type loginBucket struct {
	failures     []time.Time
	blockedUntil time.Time
}

// NewRateLimiter creates a limiter from the game config.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:           cfg,
		registrations: make(map[string]*registrationBucket),
		loginAttempts: make(map[string]*loginBucket),
	}
}

// CheckRegistration rejects when the IP hit its account cap or is
// still inside the creation cooldown.
func (rl *RateLimiter) CheckRegistration(ip string, now time.Time) error {
	if !rl.cfg.Enabled {
		return nil
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.registrations[ip]
	if !ok {
		return nil
	}
	if rl.cfg.MaxAccountsPerIP > 0 && bucket.count >= rl.cfg.MaxAccountsPerIP {
		return fmt.Errorf("account limit reached for this address")
	}
	cooldown := time.Duration(rl.cfg.AccountCreationCooldownS) * time.Second
	if len(bucket.timestamps) > 0 {
		last := bucket.timestamps[len(bucket.timestamps)-1]
		if since := now.Sub(last); since < cooldown {
			remaining := int((cooldown - since).Seconds()) + 1
			return fmt.Errorf("please wait %d seconds before creating another account", remaining)
		}
	}
	return nil
}

// RecordRegistration counts a successful account creation.
func (rl *RateLimiter) RecordRegistration(ip string, now time.Time) {
	if !rl.cfg.Enabled {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.registrations[ip]
	if !ok {
		bucket = &registrationBucket{}
		rl.registrations[ip] = bucket
	}
	bucket.count++
	bucket.timestamps = append(bucket.timestamps, now)
}

// CheckLogin reports whether the IP is blocked and for how much longer.
func (rl *RateLimiter) CheckLogin(ip string, now time.Time) (bool, time.Duration) {
	if !rl.cfg.Enabled {
		return false, 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.loginAttempts[ip]
	if !ok {
		return false, 0
	}
	if now.Before(bucket.blockedUntil) {
		return true, bucket.blockedUntil.Sub(now)
	}
	return false, 0
}

// RecordLoginFailure drops stale failures, counts a new one, and
// blocks the IP when it crosses the threshold. Returns the block
// duration when a block starts.
func (rl *RateLimiter) RecordLoginFailure(ip string, now time.Time) (bool, time.Duration) {
	if !rl.cfg.Enabled {
		return false, 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.loginAttempts[ip]
	if !ok {
		bucket = &loginBucket{}
		rl.loginAttempts[ip] = bucket
	}

	window := time.Duration(rl.cfg.LoginAttemptWindowS) * time.Second
	fresh := bucket.failures[:0]
	for _, t := range bucket.failures {
		if now.Sub(t) < window {
			fresh = append(fresh, t)
		}
	}
	bucket.failures = append(fresh, now)

	if rl.cfg.MaxLoginAttempts > 0 && len(bucket.failures) >= rl.cfg.MaxLoginAttempts {
		bucket.blockedUntil = now.Add(window)
		bucket.failures = nil
		return true, window
	}
	return false, 0
}

// RecordLoginSuccess clears the failure bucket for an IP.
func (rl *RateLimiter) RecordLoginSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.loginAttempts, ip)
}

// Cleanup drops stale buckets; called from the tick driver.
func (rl *RateLimiter) Cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	window := time.Duration(rl.cfg.LoginAttemptWindowS) * time.Second
	for ip, bucket := range rl.loginAttempts {
		if now.After(bucket.blockedUntil) && len(bucket.failures) == 0 {
			delete(rl.loginAttempts, ip)
			continue
		}
		stale := true
		for _, t := range bucket.failures {
			if now.Sub(t) < window {
				stale = false
				break
			}
		}
		if stale && now.After(bucket.blockedUntil) {
			delete(rl.loginAttempts, ip)
		}
	}
}
