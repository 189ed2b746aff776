package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/linkscout/internal/browser"
	"github.com/example/linkscout/internal/config"
)

// CredentialsError means no usable session cookie was found or the one
// provided no longer authenticates.
type CredentialsError struct {
	Reason string
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("linkedin authentication failed: %s "+
		"(set LINKEDIN_COOKIE to a fresh li_at cookie value, or refresh the cookie file)", e.Reason)
}

// cookieFile is the persisted shape of the session cookie.
type cookieFile struct {
	LiAt    string    `json:"li_at"`
	SavedAt time.Time `json:"saved_at"`
}

type Auth struct {
	br  *browser.Browser
	cfg *config.Config
	log *slog.Logger
}

func New(br *browser.Browser, cfg *config.Config, log *slog.Logger) *Auth {
	return &Auth{br: br, cfg: cfg, log: log.With("module", "auth")}
}

// EnsureAuthenticated installs the li_at session cookie (env var wins over
// the cookie file) and verifies it by loading the feed on the given page.
func (a *Auth) EnsureAuthenticated(ctx context.Context, d browser.Driver) error {
	cookie, source, err := a.sessionCookie()
	if err != nil {
		return err
	}
	if err := a.br.SetCookie("li_at", cookie, ".linkedin.com"); err != nil {
		return fmt.Errorf("install session cookie: %w", err)
	}
	a.log.Info("session cookie installed", "source", source)

	if err := d.Navigate(ctx, a.cfg.LinkedIn.BaseURL+"feed/"); err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	if !a.loggedIn(d) {
		d.Screenshot("auth_fail")
		return &CredentialsError{Reason: "feed did not load as an authenticated session"}
	}
	a.log.Info("session validated")
	if source == "env" {
		if err := a.saveCookie(cookie); err != nil {
			a.log.Warn("cookie save failed", "error", err)
		}
	}
	return nil
}

func (a *Auth) sessionCookie() (value, source string, err error) {
	if v := strings.TrimSpace(os.Getenv("LINKEDIN_COOKIE")); v != "" {
		return strings.TrimPrefix(v, "li_at="), "env", nil
	}
	b, err := os.ReadFile(a.cfg.Browser.CookieFile)
	if err != nil {
		return "", "", &CredentialsError{Reason: "no LINKEDIN_COOKIE env var and no cookie file"}
	}
	var cf cookieFile
	if err := json.Unmarshal(b, &cf); err != nil || cf.LiAt == "" {
		return "", "", &CredentialsError{Reason: "cookie file is unreadable or empty"}
	}
	return cf.LiAt, "file", nil
}

// loggedIn checks the URL is off the authwall, then looks for any of the
// logged-in chrome markers.
func (a *Auth) loggedIn(d browser.Driver) bool {
	url := d.URL()
	if strings.Contains(url, "/login") || strings.Contains(url, "/authwall") ||
		strings.Contains(url, "/checkpoint") {
		return false
	}
	for _, sel := range []string{
		"input[placeholder*='Search'], input[aria-label*='Search']",
		"nav.global-nav",
		"a[href*='/feed']",
		"[class*='global-nav']",
	} {
		if d.IsVisible(sel, 3*time.Second) {
			return true
		}
	}
	return false
}

func (a *Auth) saveCookie(value string) error {
	b, err := json.MarshalIndent(cookieFile{LiAt: value, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(a.cfg.Browser.CookieFile); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(a.cfg.Browser.CookieFile, b, 0o600)
}
