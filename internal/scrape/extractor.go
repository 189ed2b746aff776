package scrape

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/linkscout/internal/browser"
	"github.com/example/linkscout/internal/config"
)

// Outcome distinguishes a genuinely empty page from a blocked one.
type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeContent
	OutcomeBlocked
)

type Extraction struct {
	Outcome Outcome
	Text    string
}

// RateLimitedText is the marker stored in a section map when the page
// returned only chrome on both attempts. Callers can compare against it to
// tell a blocked section from a missing one.
const RateLimitedText = "[content unavailable: LinkedIn appears to be rate limiting this session, try again later]"

const (
	contentWait          = 5 * time.Second
	overlaySelector      = "main, .artdeco-modal__content"
	modalDismissSelector = `button[aria-label="Dismiss"], button[aria-label="Close"], button.artdeco-modal__dismiss`
)

const mainTextJS = `() => {
	const main = document.querySelector('main');
	return main ? main.innerText : (document.body ? document.body.innerText : '');
}`

const overlayTextJS = `() => {
	const main = document.querySelector('main');
	const mainText = main ? main.innerText.trim() : '';
	if (mainText) return mainText;
	const modal = document.querySelector('.artdeco-modal__content');
	if (modal) return modal.innerText.trim();
	return document.body ? document.body.innerText.trim() : '';
}`

// Extractor implements the navigate-scroll-innerText pattern against a
// single page. Navigations are paced by a token bucket so consecutive
// section visits never burst.
type Extractor struct {
	d            browser.Driver
	pacer        *rate.Limiter
	scrollPause  time.Duration
	maxScrolls   int
	retryBackoff time.Duration
	log          *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewExtractor(d browser.Driver, cfg *config.Config, log *slog.Logger) *Extractor {
	navDelay := time.Duration(cfg.Scrape.NavDelayMs) * time.Millisecond
	return &Extractor{
		d:            d,
		pacer:        rate.NewLimiter(rate.Every(navDelay), 1),
		scrollPause:  time.Duration(cfg.Scrape.ScrollPauseMs) * time.Millisecond,
		maxScrolls:   cfg.Scrape.MaxScrolls,
		retryBackoff: time.Duration(cfg.Scrape.RetryBackoffMs) * time.Millisecond,
		log:          log.With("module", "scrape"),
		sleep:        sleepCtx,
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

// ExtractPage loads a URL and returns its cleaned main-content text.
// Ordinary navigation failures come back as OutcomeEmpty so the calling
// scraper can isolate them per section; RateLimitError propagates. A page
// whose text strips to nothing while the raw text was non-empty is a soft
// rate limit: retried once after a fixed backoff, then reported as
// OutcomeBlocked.
func (e *Extractor) ExtractPage(ctx context.Context, url string) (Extraction, error) {
	raw, err := e.extractOnce(ctx, url, false)
	if err != nil {
		return e.asOutcome(url, err)
	}
	if raw == "" {
		return Extraction{Outcome: OutcomeEmpty}, nil
	}
	if text := StripNoise(raw); text != "" {
		return Extraction{Outcome: OutcomeContent, Text: text}, nil
	}

	e.log.Debug("page returned only chrome, retrying once", "url", url)
	if err := e.sleep(ctx, e.retryBackoff); err != nil {
		return Extraction{}, err
	}
	raw, err = e.extractOnce(ctx, url, false)
	if err != nil {
		return e.asOutcome(url, err)
	}
	if text := StripNoise(raw); text != "" {
		return Extraction{Outcome: OutcomeContent, Text: text}, nil
	}
	e.log.Warn("page still empty after retry, treating as blocked", "url", url)
	return Extraction{Outcome: OutcomeBlocked, Text: RateLimitedText}, nil
}

// ExtractOverlay reads modal-rendered content such as the contact-info
// dialog. The overlay is the target, not an obstacle, so no modal dismissal
// and no soft-rate-limit retry.
func (e *Extractor) ExtractOverlay(ctx context.Context, url string) (Extraction, error) {
	raw, err := e.extractOnce(ctx, url, true)
	if err != nil {
		return e.asOutcome(url, err)
	}
	if raw == "" {
		return Extraction{Outcome: OutcomeEmpty}, nil
	}
	if text := StripNoise(raw); text != "" {
		return Extraction{Outcome: OutcomeContent, Text: text}, nil
	}
	return Extraction{Outcome: OutcomeBlocked, Text: RateLimitedText}, nil
}

// asOutcome maps extraction errors: rate limiting and cancellation
// propagate, everything else collapses to an empty section.
func (e *Extractor) asOutcome(url string, err error) (Extraction, error) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return Extraction{}, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Extraction{}, err
	}
	e.log.Warn("page extraction failed", "url", url, "error", err)
	return Extraction{Outcome: OutcomeEmpty}, nil
}

func (e *Extractor) extractOnce(ctx context.Context, url string, overlay bool) (string, error) {
	if err := e.pacer.Wait(ctx); err != nil {
		return "", err
	}
	if err := e.d.Navigate(ctx, url); err != nil {
		return "", err
	}
	if err := DetectRateLimit(e.d); err != nil {
		return "", err
	}

	waitFor := "main"
	if overlay {
		waitFor = overlaySelector
	}
	if err := e.d.WaitSelector(waitFor, contentWait); err != nil {
		e.log.Debug("content landmark not found", "url", url, "selector", waitFor)
	}

	textJS := overlayTextJS
	if !overlay {
		e.dismissModal(ctx)
		if err := e.scrollToBottom(ctx); err != nil {
			return "", err
		}
		textJS = mainTextJS
	}
	text, err := e.d.EvalString(textJS)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// dismissModal closes a blocking popup if one is visible. Best effort.
func (e *Extractor) dismissModal(ctx context.Context) {
	if !e.d.IsVisible(modalDismissSelector, time.Second) {
		return
	}
	if err := e.d.Click(modalDismissSelector, time.Second); err != nil {
		e.log.Debug("modal dismiss failed", "error", err)
		return
	}
	_ = e.sleep(ctx, 500*time.Millisecond)
}

// scrollToBottom triggers lazy loading, stopping early once the scroll
// height stops growing.
func (e *Extractor) scrollToBottom(ctx context.Context) error {
	for i := 0; i < e.maxScrolls; i++ {
		prev, err := e.d.EvalInt(`() => document.body.scrollHeight`)
		if err != nil {
			return nil
		}
		if err := e.d.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return nil
		}
		if err := e.sleep(ctx, e.scrollPause); err != nil {
			return err
		}
		next, err := e.d.EvalInt(`() => document.body.scrollHeight`)
		if err != nil || next == prev {
			return nil
		}
	}
	return nil
}
