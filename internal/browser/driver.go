package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Driver is the page surface the scraping and automation layers talk to.
// The rod-backed Page implements it; tests substitute fakes.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	WaitSelector(sel string, timeout time.Duration) error
	Count(sel string) (int, error)
	IsVisible(sel string, timeout time.Duration) bool
	Click(sel string, timeout time.Duration) error
	ClickByText(tag, pattern string, timeout time.Duration) error
	HasText(tag, pattern string, timeout time.Duration) bool
	Fill(sel, value string, timeout time.Duration) error
	Text(sel string, timeout time.Duration) (string, error)
	Eval(js string) error
	EvalString(js string) (string, error)
	EvalInt(js string) (int, error)
	Screenshot(prefix string) string
}

// Page is the rod-backed Driver.
type Page struct {
	page          *rod.Page
	timeout       time.Duration
	screenshotDir string
	log           *slog.Logger
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx).Timeout(p.timeout)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) WaitSelector(sel string, timeout time.Duration) error {
	_, err := p.page.Timeout(timeout).Element(sel)
	return err
}

func (p *Page) Count(sel string) (int, error) {
	els, err := p.page.Elements(sel)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (p *Page) IsVisible(sel string, timeout time.Duration) bool {
	el, err := p.page.Timeout(timeout).Element(sel)
	if err != nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

func (p *Page) Click(sel string, timeout time.Duration) error {
	el, err := p.page.Timeout(timeout).Element(sel)
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *Page) ClickByText(tag, pattern string, timeout time.Duration) error {
	el, err := p.page.Timeout(timeout).ElementR(tag, pattern)
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *Page) HasText(tag, pattern string, timeout time.Duration) bool {
	_, err := p.page.Timeout(timeout).ElementR(tag, pattern)
	return err == nil
}

// Fill types the value with a humanized keystroke rhythm.
func (p *Page) Fill(sel, value string, timeout time.Duration) error {
	el, err := p.page.Timeout(timeout).Element(sel)
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return err
	}
	var prev rune
	pos := 0
	for _, r := range value {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		time.Sleep(keystrokeDelay(prev, r, pos))
		prev = r
		pos++
	}
	return nil
}

func (p *Page) Text(sel string, timeout time.Duration) (string, error) {
	el, err := p.page.Timeout(timeout).Element(sel)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (p *Page) Eval(js string) error {
	_, err := p.page.Eval(js)
	return err
}

func (p *Page) EvalString(js string) (string, error) {
	res, err := p.page.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *Page) EvalInt(js string) (int, error) {
	res, err := p.page.Eval(js)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

// Screenshot saves a full-page capture and returns its path, or "" when the
// capture failed. Failures only cost the diagnostic.
func (p *Page) Screenshot(prefix string) string {
	bts, err := p.page.Screenshot(true, &proto.PageCaptureScreenshot{})
	if err != nil {
		p.log.Warn("screenshot failed", "error", err)
		return ""
	}
	if p.screenshotDir != "" {
		if err := os.MkdirAll(p.screenshotDir, 0o755); err != nil {
			return ""
		}
	}
	path := filepath.Join(p.screenshotDir, fmt.Sprintf("%s-%d.png", prefix, time.Now().Unix()))
	if err := os.WriteFile(path, bts, 0o644); err != nil {
		p.log.Warn("screenshot write failed", "error", err)
		return ""
	}
	return path
}

// Session serializes access to the single shared page. Everything that
// touches LinkedIn goes through With, one caller at a time.
type Session struct {
	mu sync.Mutex
	d  Driver
}

func NewSession(d Driver) *Session {
	return &Session{d: d}
}

func (s *Session) With(fn func(Driver) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.d)
}
