package automation

import (
	"context"
	"time"
)

// fakeDriver is a scriptable Driver for automation flow tests. Clicks
// succeed only for allowlisted selectors and are recorded in order.
type fakeDriver struct {
	url     string
	navErr  error
	visible map[string]bool
	hasText map[string]bool // key: tag + "|" + pattern
	clickOK map[string]bool // selectors and tag|pattern keys
	texts   map[string]string
	evalStr string

	clicks []string
	fills  map[string]string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		visible: map[string]bool{},
		hasText: map[string]bool{},
		clickOK: map[string]bool{},
		texts:   map[string]string{},
		fills:   map[string]string{},
	}
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.url = url
	return d.navErr
}

func (d *fakeDriver) URL() string { return d.url }

func (d *fakeDriver) WaitSelector(sel string, timeout time.Duration) error {
	if d.visible[sel] {
		return nil
	}
	return &ElementNotFoundError{Element: sel}
}

func (d *fakeDriver) Count(sel string) (int, error) {
	if d.visible[sel] {
		return 1, nil
	}
	return 0, nil
}

func (d *fakeDriver) IsVisible(sel string, timeout time.Duration) bool {
	return d.visible[sel]
}

func (d *fakeDriver) Click(sel string, timeout time.Duration) error {
	if d.clickOK[sel] {
		d.clicks = append(d.clicks, sel)
		return nil
	}
	return &ElementNotFoundError{Element: sel}
}

func (d *fakeDriver) ClickByText(tag, pattern string, timeout time.Duration) error {
	key := tag + "|" + pattern
	if d.clickOK[key] {
		d.clicks = append(d.clicks, key)
		return nil
	}
	return &ElementNotFoundError{Element: key}
}

func (d *fakeDriver) HasText(tag, pattern string, timeout time.Duration) bool {
	return d.hasText[tag+"|"+pattern]
}

func (d *fakeDriver) Fill(sel, value string, timeout time.Duration) error {
	d.fills[sel] = value
	return nil
}

func (d *fakeDriver) Text(sel string, timeout time.Duration) (string, error) {
	if v, ok := d.texts[sel]; ok {
		return v, nil
	}
	return "", &ElementNotFoundError{Element: sel}
}

func (d *fakeDriver) Eval(js string) error                 { return nil }
func (d *fakeDriver) EvalString(js string) (string, error) { return d.evalStr, nil }
func (d *fakeDriver) EvalInt(js string) (int, error)       { return 0, nil }
func (d *fakeDriver) Screenshot(prefix string) string      { return "" }

// noPacing removes the human-like delays from flow tests.
func noPacing() pacing {
	return pacing{
		sleep:     func(ctx context.Context, d time.Duration) error { return nil },
		randFloat: func() float64 { return 0 },
	}
}
