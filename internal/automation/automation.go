package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Result statuses. Terminal outcomes of one automation attempt; never a
// bare error across this boundary.
const (
	StatusSuccess          = "success"
	StatusAlreadyConnected = "already_connected"
	StatusAlreadyPending   = "already_pending"
	StatusAlreadyFollowing = "already_following"
	StatusRateLimited      = "rate_limited"
	StatusFailed           = "failed"
	StatusError            = "error"
)

// Result is the structured outcome of a connect or follow attempt.
type Result struct {
	Status      string `json:"status"`
	TargetURL   string `json:"target_url"`
	TargetName  string `json:"target_name,omitempty"`
	MessageSent bool   `json:"message_sent,omitempty"`
	Message     string `json:"message"`
}

func (r Result) Success() bool { return r.Status == StatusSuccess }

// Skipped reports whether the attempt was a no-op because the desired state
// already exists.
func (r Result) Skipped() bool {
	return r.Status == StatusAlreadyConnected ||
		r.Status == StatusAlreadyPending ||
		r.Status == StatusAlreadyFollowing
}

// ElementNotFoundError means every selector strategy for a UI element
// failed, usually because LinkedIn changed its markup.
type ElementNotFoundError struct {
	Element string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("could not locate %s with any selector strategy", e.Element)
}

// NavigationError wraps a failed page load during an automation flow.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// pacing holds the shared micro-delay seams so flows pause like a person
// between clicks. Tests replace sleep with a no-op.
type pacing struct {
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64
}

func defaultPacing() pacing {
	return pacing{sleep: sleepCtx, randFloat: rand.Float64}
}

func (p pacing) randomDelay(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d = min + time.Duration(p.randFloat()*float64(max-min))
	}
	_ = p.sleep(ctx, d)
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
