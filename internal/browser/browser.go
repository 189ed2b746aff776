package browser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/example/linkscout/internal/config"
)

// Browser owns the launched Chromium instance. All page work goes through
// the single Page it hands out; see Session for serialization.
type Browser struct {
	rod *rod.Browser
	cfg *config.Config
	log *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) (*Browser, error) {
	// Leakless disabled to avoid AV false positives on Windows.
	l := launcher.New().Leakless(false).Headless(cfg.Browser.Headless)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	rb := rod.New().ControlURL(url)
	if err := rb.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return &Browser{rod: rb, cfg: cfg, log: log.With("module", "browser")}, nil
}

// SetCookie installs a session cookie browser-wide before any navigation.
func (b *Browser) SetCookie(name, value, domain string) error {
	return b.rod.SetCookies([]*proto.NetworkCookieParam{{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
	}})
}

// Cookies returns the browser's current cookies for persistence.
func (b *Browser) Cookies() ([]*proto.NetworkCookie, error) {
	return b.rod.GetCookies()
}

// NewPage opens a page with the configured timeout and a minimal
// automation-mask applied on every document.
func (b *Browser) NewPage() (*Page, error) {
	p, err := b.rod.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if ua := b.cfg.Browser.UserAgent; ua != "" {
		if err := (proto.EmulationSetUserAgentOverride{UserAgent: ua}).Call(p); err != nil {
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}
	if _, err := p.EvalOnNewDocument(maskScript); err != nil {
		return nil, fmt.Errorf("install mask script: %w", err)
	}
	return &Page{
		page:          p,
		timeout:       time.Duration(b.cfg.Scrape.PageTimeoutMs) * time.Millisecond,
		screenshotDir: b.cfg.Browser.ScreenshotDir,
		log:           b.log,
	}, nil
}

func (b *Browser) Close() {
	if b.rod != nil {
		_ = b.rod.Close()
	}
}

const maskScript = `() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
	window.chrome = window.chrome || { runtime: {} };
}`
