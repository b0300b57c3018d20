package ai

import (
	"fmt"
	"sync"
	"time"
)

// WindowLimits holds per-provider request ceilings over sliding windows.
type WindowLimits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// DefaultProviderLimits are the built-in ceilings per provider. Providers
// differ by orders of magnitude in allowed throughput.
var DefaultProviderLimits = map[string]WindowLimits{
	"gemini":     {PerMinute: 15, PerHour: 1000, PerDay: 50000},
	"openai":     {PerMinute: 500, PerHour: 10000, PerDay: 200000},
	"openrouter": {PerMinute: 20, PerHour: 1000, PerDay: 10000},
}

// RateLimiter is an advisory local throttle consulted before each
// provider call. It fails fast instead of queueing; the provider's own
// enforcement is still authoritative. Safe for concurrent use.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]WindowLimits
	calls  map[string][]time.Time
}

// NewRateLimiter creates a RateLimiter with the given per-provider
// ceilings. Providers absent from limits are never throttled locally.
func NewRateLimiter(limits map[string]WindowLimits) *RateLimiter {
	if limits == nil {
		limits = DefaultProviderLimits
	}
	return &RateLimiter{
		limits: limits,
		calls:  make(map[string][]time.Time),
	}
}

// Check evaluates the minute/hour/day windows for provider. On success it
// records the current timestamp and returns nil; if any ceiling is met or
// exceeded it returns a rate_limit Error naming the exceeded window.
// Timestamps older than 24h are pruned lazily on each check.
func (r *RateLimiter) Check(provider string) error {
	cfg, ok := r.limits[provider]
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	dayAgo := now.Add(-24 * time.Hour)
	hourAgo := now.Add(-time.Hour)
	minuteAgo := now.Add(-time.Minute)

	recent := r.calls[provider][:0:0]
	var minuteCount, hourCount int
	for _, t := range r.calls[provider] {
		if !t.After(dayAgo) {
			continue
		}
		recent = append(recent, t)
		if t.After(hourAgo) {
			hourCount++
		}
		if t.After(minuteAgo) {
			minuteCount++
		}
	}
	r.calls[provider] = recent

	if minuteCount >= cfg.PerMinute {
		return r.limitError(provider, minuteCount, cfg.PerMinute, "minute")
	}
	if hourCount >= cfg.PerHour {
		return r.limitError(provider, hourCount, cfg.PerHour, "hour")
	}
	if len(recent) >= cfg.PerDay {
		return r.limitError(provider, len(recent), cfg.PerDay, "day")
	}

	r.calls[provider] = append(recent, now)
	return nil
}

func (r *RateLimiter) limitError(provider string, count, limit int, window string) *Error {
	return &Error{
		Kind:     ErrKindRateLimit,
		Message:  fmt.Sprintf("rate limit exceeded: %d/%d requests per %s", count, limit, window),
		Provider: provider,
	}
}
