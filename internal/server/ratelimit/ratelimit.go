// Package ratelimit throttles job board requests with token buckets, one per
// tier and caller.
package ratelimit

import (
	"sync"
	"time"
)

// bucket refills continuously at rate tokens per second up to capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	last     time.Time
}

func newBucket(p Policy, now time.Time) *bucket {
	capacity := p.Burst
	if capacity <= 0 {
		capacity = p.Limit
	}
	return &bucket{
		capacity: float64(capacity),
		rate:     float64(p.Limit) / p.Window.Seconds(),
		tokens:   float64(capacity),
		last:     now,
	}
}

// take refills the bucket up to now and spends one token if there is one.
func (b *bucket) take(now time.Time) (ok bool, remaining int, full time.Time, retry time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.rate)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		ok = true
	} else {
		retry = seconds((1 - b.tokens) / b.rate)
	}
	return ok, int(b.tokens), now.Add(seconds((b.capacity - b.tokens) / b.rate)), retry
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Request is what the limiter needs to know about an incoming call.
type Request struct {
	Method   string
	Path     string
	ClientIP string
	// Account is the signed-in user, empty for anonymous callers.
	Account string
}

// Info reports the decision and the caller's standing in its tier. Limit is
// 0 when the request was not metered.
type Info struct {
	Allowed    bool
	Tier       Tier
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	bucket   *bucket
	lastSeen time.Time
}

// Limiter holds the buckets for every active caller.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*entry
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func NewLimiter(cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow decides whether req may proceed and spends a token when it is metered.
func (l *Limiter) Allow(req Request) Info {
	tier := Classify(req.Method, req.Path)
	info := Info{Allowed: true, Tier: tier}

	if !l.cfg.Enabled || tier == TierExempt || l.cfg.Allowlist[req.ClientIP] {
		return info
	}
	if l.cfg.Denylist[req.ClientIP] {
		info.Allowed = false
		return info
	}
	policy, ok := l.cfg.Policies[tier]
	if !ok || policy.Limit <= 0 || policy.Window <= 0 {
		return info
	}

	now := l.now()
	b := l.bucketFor(bucketKey(tier, req), policy, now)
	info.Allowed, info.Remaining, info.ResetTime, info.RetryAfter = b.take(now)
	info.Limit = policy.Limit
	return info
}

func bucketKey(tier Tier, req Request) string {
	if req.Account != "" && keyedByAccount(tier) {
		return string(tier) + "|account:" + req.Account
	}
	return string(tier) + "|ip:" + req.ClientIP
}

func (l *Limiter) bucketFor(key string, p Policy, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.buckets[key]
	if !ok {
		e = &entry{bucket: newBucket(p, now)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	return e.bucket
}

// Sweep removes buckets that have not been used for maxIdle and returns how
// many were removed.
func (l *Limiter) Sweep(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of live buckets.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
