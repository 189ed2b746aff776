package automation

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/linkscout/internal/browser"
)

// Connector sends connection requests with an optional note. UI element
// location is best-effort across several selector strategies because
// LinkedIn's markup shifts between experiments.
type Connector struct {
	log *slog.Logger
	pacing
}

func NewConnector(log *slog.Logger) *Connector {
	return &Connector{log: log.With("module", "automation"), pacing: defaultPacing()}
}

// Execute navigates to a profile and sends a connection request. It never
// returns an error; every outcome maps onto a Result status.
func (c *Connector) Execute(ctx context.Context, d browser.Driver, profileURL, note string) Result {
	c.log.Info("sending connection request", "profile_url", profileURL)

	if err := d.Navigate(ctx, profileURL); err != nil {
		c.log.Error("connection request navigation failed", "error", err)
		return Result{Status: StatusError, TargetURL: profileURL,
			Message: (&NavigationError{URL: profileURL, Err: err}).Error()}
	}

	if d.IsVisible(rateLimitPageSel, 2*time.Second) {
		return Result{Status: StatusRateLimited, TargetURL: profileURL,
			Message: "LinkedIn rate limit page detected"}
	}

	switch c.relationshipState(d) {
	case "connected":
		return Result{Status: StatusAlreadyConnected, TargetURL: profileURL,
			TargetName: c.profileName(d), Message: "already connected to this person"}
	case "pending":
		return Result{Status: StatusAlreadyPending, TargetURL: profileURL,
			TargetName: c.profileName(d), Message: "connection request already pending"}
	}

	if err := c.clickConnectButton(ctx, d); err != nil {
		d.Screenshot("connect_button_fail")
		return Result{Status: StatusFailed, TargetURL: profileURL, Message: err.Error()}
	}

	noteSent := false
	if note != "" {
		noteSent = c.addNote(ctx, d, note)
	}

	if !c.sendRequest(ctx, d) {
		d.Screenshot("connect_send_fail")
		return Result{Status: StatusFailed, TargetURL: profileURL,
			Message: "failed to send connection request"}
	}

	name := c.profileName(d)
	return Result{
		Status:      StatusSuccess,
		TargetURL:   profileURL,
		TargetName:  name,
		MessageSent: noteSent,
		Message:     "connection request sent to " + name,
	}
}

// relationshipState probes the action buttons: a Message button with no
// Connect button means connected; a Pending button means an invite is out.
func (c *Connector) relationshipState(d browser.Driver) string {
	if d.HasText("button", messageTextPattern, 2*time.Second) &&
		!d.HasText("button", connectTextPattern, time.Second) {
		return "connected"
	}
	if d.HasText("button", pendingTextPattern, time.Second) {
		return "pending"
	}
	return "not_connected"
}

// clickConnectButton tries the strategies in fixed priority order: the
// aria-labelled invite button, a plain Connect button, a role=button
// element, then the More dropdown.
func (c *Connector) clickConnectButton(ctx context.Context, d browser.Driver) error {
	if err := d.Click(connectAriaSel, 2*time.Second); err == nil {
		c.randomDelay(ctx, 500*time.Millisecond, time.Second)
		return nil
	}
	if err := d.ClickByText("button", connectTextPattern, 2*time.Second); err == nil {
		c.randomDelay(ctx, 500*time.Millisecond, time.Second)
		return nil
	}
	if err := d.ClickByText(roleButtonSel, connectTextPattern, 2*time.Second); err == nil {
		c.randomDelay(ctx, 500*time.Millisecond, time.Second)
		return nil
	}
	if err := d.Click(moreActionsSel, 2*time.Second); err == nil {
		c.randomDelay(ctx, 300*time.Millisecond, 600*time.Millisecond)
		if err := d.Click(connectDropdownSel, 2*time.Second); err == nil {
			c.randomDelay(ctx, 500*time.Millisecond, time.Second)
			return nil
		}
	}
	return &ElementNotFoundError{Element: "connect button"}
}

// addNote opens the note field and fills it, truncated to the platform
// limit. Best effort; the request still goes out without the note.
func (c *Connector) addNote(ctx context.Context, d browser.Driver, note string) bool {
	c.randomDelay(ctx, 500*time.Millisecond, time.Second)
	if err := d.Click(addNoteSel, 2*time.Second); err != nil {
		c.log.Debug("add-note button not found", "error", err)
		return false
	}
	c.randomDelay(ctx, 300*time.Millisecond, 600*time.Millisecond)
	if len(note) > maxNoteLength {
		note = note[:maxNoteLength]
	}
	if err := d.Fill(noteTextareaSel, note, 2*time.Second); err != nil {
		c.log.Debug("note textarea not found", "error", err)
		return false
	}
	c.randomDelay(ctx, 300*time.Millisecond, 500*time.Millisecond)
	return true
}

// sendRequest clicks send and confirms via the success toast or the modal
// having closed.
func (c *Connector) sendRequest(ctx context.Context, d browser.Driver) bool {
	for _, sel := range []string{sendInviteSel, sendNowSel} {
		if err := d.Click(sel, 2*time.Second); err != nil {
			continue
		}
		c.randomDelay(ctx, time.Second, 2*time.Second)
		if d.IsVisible(toastSuccessSel, 3*time.Second) {
			return true
		}
		if !d.IsVisible(modalSel, time.Second) {
			return true
		}
	}
	return false
}

func (c *Connector) profileName(d browser.Driver) string {
	name, err := d.Text(profileNameSel, 2*time.Second)
	if err != nil || name == "" {
		return "Unknown"
	}
	return name
}
