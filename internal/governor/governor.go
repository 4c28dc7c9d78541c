// Package governor implements admission control for the tutoring pipeline:
// a per-user sliding-window rate limiter composed with a shared token
// budget ledger. The governor is an explicit, injectable object rather
// than process-global state, and takes an injectable clock so admission
// behavior is deterministic under test.
package governor

import (
	"fmt"
	"sync"
	"time"

	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Options configures a Governor.
type Options struct {
	// RequestsPerWindow is the per-user admission cap within one window.
	RequestsPerWindow int
	// Window is the sliding-window size for rate limiting.
	Window time.Duration
	// SweepInterval controls how often expired buckets are purged.
	SweepInterval time.Duration
	// DailyTokenCap is the hard pre-flight budget gate.
	DailyTokenCap int
	// MonthlyTokenCap is tracked as an advisory ceiling; it never gates
	// admission on its own.
	MonthlyTokenCap int
}

// bucket is one (user, window) rate-limit cell. It is never read after
// its reset time without being treated as expired.
type bucket struct {
	count   int
	resetAt time.Time
}

// Governor admits or rejects requests against the rate limiter and the
// token ledger. All read-modify-write sequences happen under one mutex so
// concurrent bursts from the same user cannot double-admit.
type Governor struct {
	mu    sync.Mutex
	clock Clock
	opts  Options

	buckets map[string]*bucket

	dailyUsed   int
	monthlyUsed int

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// New creates a Governor with the given options and clock. A nil clock
// falls back to the system clock.
func New(opts Options, clock Clock) *Governor {
	if clock == nil {
		clock = SystemClock{}
	}
	if opts.RequestsPerWindow <= 0 {
		opts.RequestsPerWindow = 60
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 10 * time.Second
	}
	return &Governor{
		clock:     clock,
		opts:      opts,
		buckets:   make(map[string]*bucket),
		sweepStop: make(chan struct{}),
	}
}

// StartSweeper launches the background purge of expired rate-limit
// buckets. It is safe to call at most once; Stop terminates it.
func (g *Governor) StartSweeper() {
	go func() {
		ticker := time.NewTicker(g.opts.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.sweep()
			case <-g.sweepStop:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper.
func (g *Governor) Stop() {
	g.sweepOnce.Do(func() { close(g.sweepStop) })
}

func (g *Governor) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	removed := 0
	for key, b := range g.buckets {
		if now.After(b.resetAt) {
			delete(g.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("Rate limit sweep", "removed_buckets", removed, "remaining", len(g.buckets))
	}
}

// bucketKey buckets requests by (user, floor(now/window)).
func (g *Governor) bucketKey(userID string, now time.Time) string {
	windowIndex := now.UnixNano() / int64(g.opts.Window)
	return fmt.Sprintf("%s:%d", userID, windowIndex)
}

// Admit decides whether a request with the given pre-flight token estimate
// may proceed. It applies the rate limiter first, then the budget gate,
// and reserves the rate slot on success. Rejections are typed: a rate
// rejection carries the remaining wait, a budget rejection is terminal
// until an explicit reset.
func (g *Governor) Admit(userID string, estimatedTokens int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	key := g.bucketKey(userID, now)

	b, ok := g.buckets[key]
	if ok && now.After(b.resetAt) {
		// Stale bucket for this key; treat as expired.
		delete(g.buckets, key)
		ok = false
	}
	if !ok {
		windowIndex := now.UnixNano() / int64(g.opts.Window)
		resetAt := time.Unix(0, (windowIndex+1)*int64(g.opts.Window))
		b = &bucket{resetAt: resetAt}
		g.buckets[key] = b
	}

	if b.count >= g.opts.RequestsPerWindow {
		wait := b.resetAt.Sub(now)
		if wait <= 0 {
			wait = time.Millisecond
		}
		logger.AdmissionDecision(userID, false, "rate limit exceeded")
		return tutortypes.NewRateLimitError(wait)
	}

	if g.dailyUsed+estimatedTokens > g.opts.DailyTokenCap {
		logger.AdmissionDecision(userID, false, "daily token budget exceeded")
		return tutortypes.NewBudgetExceededError(fmt.Sprintf(
			"daily token budget exceeded: used %d of %d, request needs %d",
			g.dailyUsed, g.opts.DailyTokenCap, estimatedTokens))
	}

	b.count++
	logger.AdmissionDecision(userID, true, "admitted")
	return nil
}

// Record accounts tokens consumed by a completed generation. The increment
// is clamped so dailyUsed never exceeds the daily cap; the monthly figure
// accrues unclamped for reporting.
func (g *Governor) Record(tokens int) {
	if tokens <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.monthlyUsed += tokens
	if g.dailyUsed+tokens > g.opts.DailyTokenCap {
		logger.Warn("Token usage exceeded estimate, clamping to daily cap",
			"used", g.dailyUsed, "tokens", tokens, "cap", g.opts.DailyTokenCap)
		g.dailyUsed = g.opts.DailyTokenCap
		return
	}
	g.dailyUsed += tokens
}

// Status returns a snapshot of the token ledger.
func (g *Governor) Status() tutortypes.TokenBudget {
	g.mu.Lock()
	defer g.mu.Unlock()

	return tutortypes.TokenBudget{
		DailyCap:    g.opts.DailyTokenCap,
		MonthlyCap:  g.opts.MonthlyTokenCap,
		Used:        g.dailyUsed,
		MonthlyUsed: g.monthlyUsed,
		Remaining:   g.opts.DailyTokenCap - g.dailyUsed,
	}
}

// ResetDaily zeroes the daily ledger. It is an explicit administrative
// operation, never self-triggered by the pipeline.
func (g *Governor) ResetDaily() {
	g.mu.Lock()
	defer g.mu.Unlock()
	logger.Info("Daily token budget reset", "previous_used", g.dailyUsed)
	g.dailyUsed = 0
}

// ResetMonthly zeroes the monthly ledger.
func (g *Governor) ResetMonthly() {
	g.mu.Lock()
	defer g.mu.Unlock()
	logger.Info("Monthly token budget reset", "previous_used", g.monthlyUsed)
	g.monthlyUsed = 0
}

// BucketCount reports how many live rate-limit buckets exist. Used by the
// sweeper tests and operational introspection.
func (g *Governor) BucketCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.buckets)
}
