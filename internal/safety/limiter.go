package safety

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/example/linkscout/internal/config"
	"github.com/example/linkscout/internal/models"
)

// Limits configures the outreach rate limiter. Conservative defaults keep
// accounts under LinkedIn's automation-detection thresholds.
type Limits struct {
	DailyConnectionLimit int
	DailyFollowLimit     int
	DailyMessageLimit    int

	MinActionDelay time.Duration
	MaxActionDelay time.Duration

	BatchSize     int
	MinBatchPause time.Duration
	MaxBatchPause time.Duration

	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

func DefaultLimits() Limits {
	return Limits{
		DailyConnectionLimit: 30,
		DailyFollowLimit:     50,
		DailyMessageLimit:    50,
		MinActionDelay:       30 * time.Second,
		MaxActionDelay:       120 * time.Second,
		BatchSize:            10,
		MinBatchPause:        300 * time.Second,
		MaxBatchPause:        900 * time.Second,
		InitialBackoff:       60 * time.Second,
		MaxBackoff:           3600 * time.Second,
		BackoffMultiplier:    2.0,
	}
}

func LimitsFromConfig(cfg *config.Config) Limits {
	l := cfg.Limits
	return Limits{
		DailyConnectionLimit: l.DailyConnectionLimit,
		DailyFollowLimit:     l.DailyFollowLimit,
		DailyMessageLimit:    l.DailyMessageLimit,
		MinActionDelay:       time.Duration(l.MinActionDelaySec) * time.Second,
		MaxActionDelay:       time.Duration(l.MaxActionDelaySec) * time.Second,
		BatchSize:            l.BatchSize,
		MinBatchPause:        time.Duration(l.MinBatchPauseSec) * time.Second,
		MaxBatchPause:        time.Duration(l.MaxBatchPauseSec) * time.Second,
		InitialBackoff:       time.Duration(l.InitialBackoffSec) * time.Second,
		MaxBackoff:           time.Duration(l.MaxBackoffSec) * time.Second,
		BackoffMultiplier:    l.BackoffMultiplier,
	}
}

// PausedError is returned while the persisted kill switch is on.
type PausedError struct{}

func (e *PausedError) Error() string {
	return "outreach is currently paused, resume to continue"
}

// LimitExceededError is returned when a daily quota is used up.
type LimitExceededError struct {
	ActionType models.ActionType
	Current    int
	Limit      int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("daily %s limit exceeded: %d/%d, try again tomorrow",
		e.ActionType, e.Current, e.Limit)
}

// statsStore is the slice of the store the limiter needs.
type statsStore interface {
	TodayStats(ctx context.Context) (models.DailyStats, error)
	IncrementDailyStat(ctx context.Context, stat, date string) error
	IsPaused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
}

// RateLimiter enforces daily quotas, randomized pacing, batch pauses and
// exponential backoff for outreach actions. Counters live in the store;
// backoff and batch progress are in-memory only and reset on restart.
type RateLimiter struct {
	limits Limits
	store  statsStore
	log    *slog.Logger

	mu             sync.Mutex
	currentBackoff time.Duration
	batchCount     int

	// test seams
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64
}

func NewRateLimiter(limits Limits, store statsStore, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limits:         limits,
		store:          store,
		log:            log.With("module", "safety"),
		currentBackoff: limits.InitialBackoff,
		sleep:          sleepCtx,
		randFloat:      rand.Float64,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CheckLimit returns *PausedError when paused, *LimitExceededError when the
// daily quota for the action type is used up, and nil otherwise.
func (r *RateLimiter) CheckLimit(ctx context.Context, actionType models.ActionType) error {
	paused, err := r.store.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return &PausedError{}
	}
	stats, err := r.store.TodayStats(ctx)
	if err != nil {
		return err
	}
	var current, limit int
	switch actionType {
	case models.ActionConnectionRequest:
		current, limit = stats.ConnectionRequests, r.limits.DailyConnectionLimit
	case models.ActionFollowCompany, models.ActionFollowPerson:
		current, limit = stats.Follows, r.limits.DailyFollowLimit
	case models.ActionMessageSent:
		current, limit = stats.Messages, r.limits.DailyMessageLimit
	default:
		return nil
	}
	if current >= limit {
		return &LimitExceededError{ActionType: actionType, Current: current, Limit: limit}
	}
	return nil
}

// RecordAction bumps the daily counters and the in-memory batch counter.
// Attempts count against quotas whether or not they succeeded.
func (r *RateLimiter) RecordAction(ctx context.Context, actionType models.ActionType, success bool) error {
	today := time.Now().Format("2006-01-02")
	switch actionType {
	case models.ActionConnectionRequest:
		if err := r.store.IncrementDailyStat(ctx, "connection_requests", today); err != nil {
			return err
		}
		if success {
			if err := r.store.IncrementDailyStat(ctx, "successful_connections", today); err != nil {
				return err
			}
		}
	case models.ActionFollowCompany, models.ActionFollowPerson:
		if err := r.store.IncrementDailyStat(ctx, "follows", today); err != nil {
			return err
		}
		if success {
			if err := r.store.IncrementDailyStat(ctx, "successful_follows", today); err != nil {
				return err
			}
		}
	case models.ActionMessageSent:
		if err := r.store.IncrementDailyStat(ctx, "messages", today); err != nil {
			return err
		}
	}
	if !success {
		if err := r.store.IncrementDailyStat(ctx, "failed_actions", today); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.batchCount++
	r.mu.Unlock()
	return nil
}

// WaitBetweenActions sleeps a uniform random delay inside the configured
// window and reports how long it slept.
func (r *RateLimiter) WaitBetweenActions(ctx context.Context) (time.Duration, error) {
	d := r.randomBetween(r.limits.MinActionDelay, r.limits.MaxActionDelay)
	r.log.Debug("waiting between actions", "delay", d)
	if err := r.sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}

// WaitForBatchPause sleeps the long batch pause once the batch counter hits
// the configured batch size, then resets the counter. Returns 0 when no
// pause was due.
func (r *RateLimiter) WaitForBatchPause(ctx context.Context) (time.Duration, error) {
	r.mu.Lock()
	due := r.batchCount >= r.limits.BatchSize
	count := r.batchCount
	r.mu.Unlock()
	if !due {
		return 0, nil
	}
	d := r.randomBetween(r.limits.MinBatchPause, r.limits.MaxBatchPause)
	r.log.Info("batch complete, pausing", "actions", count, "pause", d)
	if err := r.sleep(ctx, d); err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.batchCount = 0
	r.mu.Unlock()
	return d, nil
}

// ApplyBackoff sleeps the current backoff and doubles it for next time,
// capped at MaxBackoff.
func (r *RateLimiter) ApplyBackoff(ctx context.Context) (time.Duration, error) {
	r.mu.Lock()
	d := r.currentBackoff
	if d > r.limits.MaxBackoff {
		d = r.limits.MaxBackoff
	}
	r.currentBackoff = time.Duration(float64(r.currentBackoff) * r.limits.BackoffMultiplier)
	r.mu.Unlock()
	r.log.Warn("rate limit detected, backing off", "backoff", d)
	if err := r.sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}

// ResetBackoff returns the backoff to its initial value after a success.
func (r *RateLimiter) ResetBackoff() {
	r.mu.Lock()
	r.currentBackoff = r.limits.InitialBackoff
	r.mu.Unlock()
}

func (r *RateLimiter) Pause(ctx context.Context) error {
	if err := r.store.SetPaused(ctx, true); err != nil {
		return err
	}
	r.log.Info("outreach paused")
	return nil
}

func (r *RateLimiter) Resume(ctx context.Context) error {
	if err := r.store.SetPaused(ctx, false); err != nil {
		return err
	}
	r.ResetBackoff()
	r.log.Info("outreach resumed")
	return nil
}

// QuotaStatus reports usage against one daily limit.
type QuotaStatus struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Status is the snapshot returned by the rate-limit status operation.
type Status struct {
	Paused             bool        `json:"paused"`
	Date               string      `json:"date"`
	ConnectionRequests QuotaStatus `json:"connection_requests"`
	Follows            QuotaStatus `json:"follows"`
	Messages           QuotaStatus `json:"messages"`
	SuccessRate        struct {
		Connections string `json:"connections"`
		Follows     string `json:"follows"`
	} `json:"success_rate"`
	BatchProgress  string `json:"batch_progress"`
	CurrentBackoff int    `json:"current_backoff"`
}

func (r *RateLimiter) Status(ctx context.Context) (Status, error) {
	stats, err := r.store.TodayStats(ctx)
	if err != nil {
		return Status{}, err
	}
	paused, err := r.store.IsPaused(ctx)
	if err != nil {
		return Status{}, err
	}
	r.mu.Lock()
	batch := r.batchCount
	backoff := r.currentBackoff
	r.mu.Unlock()

	st := Status{
		Paused:             paused,
		Date:               stats.Date,
		ConnectionRequests: quota(stats.ConnectionRequests, r.limits.DailyConnectionLimit),
		Follows:            quota(stats.Follows, r.limits.DailyFollowLimit),
		Messages:           quota(stats.Messages, r.limits.DailyMessageLimit),
		BatchProgress:      fmt.Sprintf("%d/%d", batch, r.limits.BatchSize),
		CurrentBackoff:     int(backoff / time.Second),
	}
	st.SuccessRate.Connections = ratio(stats.SuccessfulConnections, stats.ConnectionRequests)
	st.SuccessRate.Follows = ratio(stats.SuccessfulFollows, stats.Follows)
	return st, nil
}

func quota(used, limit int) QuotaStatus {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{Used: used, Limit: limit, Remaining: remaining}
}

func ratio(ok, total int) string {
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d", ok, total)
}

func (r *RateLimiter) randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.randFloat()*float64(max-min))
}
