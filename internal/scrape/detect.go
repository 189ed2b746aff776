package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/linkscout/internal/browser"
)

type RateLimitKind string

const (
	KindCheckpoint RateLimitKind = "checkpoint"
	KindCaptcha    RateLimitKind = "captcha"
	KindThrottle   RateLimitKind = "throttle"
)

// RateLimitError signals that LinkedIn is actively challenging or
// throttling the session. It propagates past per-section isolation.
type RateLimitError struct {
	Kind          RateLimitKind
	Reason        string
	SuggestedWait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (%s): %s (suggested wait %s)", e.Kind, e.Reason, e.SuggestedWait)
}

const captchaSelector = `iframe[title*="captcha" i], iframe[src*="captcha" i]`

var throttlePhrases = []string{
	"too many requests",
	"rate limit",
	"slow down",
	"try again later",
}

// DetectRateLimit checks the loaded page for throttling signals, cheapest
// and most certain first: challenge URL, then CAPTCHA iframe, then the
// short-error-page body heuristic. The body heuristic only runs when the
// page has no <main> landmark and the body is short; normal content pages
// are long and may contain phrases like "slow down" in prose.
func DetectRateLimit(d browser.Driver) error {
	url := d.URL()
	if strings.Contains(url, "linkedin.com/checkpoint") || strings.Contains(url, "authwall") {
		return &RateLimitError{
			Kind:          KindCheckpoint,
			Reason:        "security checkpoint detected, identity verification may be required",
			SuggestedWait: 3600 * time.Second,
		}
	}

	if n, err := d.Count(captchaSelector); err == nil && n > 0 {
		return &RateLimitError{
			Kind:          KindCaptcha,
			Reason:        "CAPTCHA challenge detected, manual intervention required",
			SuggestedWait: 3600 * time.Second,
		}
	}

	if n, err := d.Count("main"); err == nil && n == 0 {
		body, err := d.EvalString(`() => document.body ? document.body.innerText : ''`)
		if err == nil && body != "" && len(body) < 2000 {
			lower := strings.ToLower(body)
			for _, phrase := range throttlePhrases {
				if strings.Contains(lower, phrase) {
					return &RateLimitError{
						Kind:          KindThrottle,
						Reason:        "rate limit message detected on page",
						SuggestedWait: 1800 * time.Second,
					}
				}
			}
		}
	}
	return nil
}
