package automation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/linkscout/internal/logging"
)

const testProfileURL = "https://www.linkedin.com/in/janedoe/"

func testConnector() *Connector {
	c := NewConnector(logging.Discard())
	c.pacing = noPacing()
	return c
}

func TestConnectSuccessViaAriaButton(t *testing.T) {
	d := newFakeDriver()
	d.clickOK[connectAriaSel] = true
	d.clickOK[sendInviteSel] = true
	d.visible[toastSuccessSel] = true
	d.texts[profileNameSel] = "Jane Doe"

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "Jane Doe", res.TargetName)
	assert.False(t, res.MessageSent)
	assert.Equal(t, []string{connectAriaSel, sendInviteSel}, d.clicks)
}

func TestConnectAlreadyConnected(t *testing.T) {
	d := newFakeDriver()
	d.hasText["button|"+messageTextPattern] = true
	d.texts[profileNameSel] = "Jane Doe"

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusAlreadyConnected, res.Status)
	assert.Empty(t, d.clicks)
}

func TestConnectAlreadyPending(t *testing.T) {
	d := newFakeDriver()
	d.hasText["button|"+pendingTextPattern] = true
	d.texts[profileNameSel] = "Jane Doe"

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusAlreadyPending, res.Status)
	assert.Empty(t, d.clicks)
}

func TestConnectRateLimitedPage(t *testing.T) {
	d := newFakeDriver()
	d.visible[rateLimitPageSel] = true

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusRateLimited, res.Status)
	assert.Empty(t, d.clicks)
}

func TestConnectNavigationError(t *testing.T) {
	d := newFakeDriver()
	d.navErr = errors.New("net::ERR_TIMED_OUT")

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "navigation")
}

func TestConnectMoreActionsFallback(t *testing.T) {
	d := newFakeDriver()
	d.clickOK[moreActionsSel] = true
	d.clickOK[connectDropdownSel] = true
	d.clickOK[sendNowSel] = true
	d.texts[profileNameSel] = "Jane Doe"

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{moreActionsSel, connectDropdownSel, sendNowSel}, d.clicks)
}

func TestConnectNoButtonAnywhere(t *testing.T) {
	d := newFakeDriver()

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Message, "connect button")
}

func TestConnectNoteTruncatedToLimit(t *testing.T) {
	d := newFakeDriver()
	d.clickOK[connectAriaSel] = true
	d.clickOK[addNoteSel] = true
	d.clickOK[sendInviteSel] = true
	d.visible[toastSuccessSel] = true
	d.texts[profileNameSel] = "Jane Doe"

	note := strings.Repeat("x", 450)
	res := testConnector().Execute(context.Background(), d, testProfileURL, note)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.MessageSent)
	assert.Len(t, d.fills[noteTextareaSel], maxNoteLength)
}

func TestConnectSendConfirmedByClosedModal(t *testing.T) {
	d := newFakeDriver()
	d.clickOK[connectAriaSel] = true
	d.clickOK[sendInviteSel] = true
	// No toast, but no modal left on screen either.
	d.texts[profileNameSel] = "Jane Doe"

	res := testConnector().Execute(context.Background(), d, testProfileURL, "")
	assert.Equal(t, StatusSuccess, res.Status)
}
