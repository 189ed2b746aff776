package automation

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/linkscout/internal/browser"
)

// Follower follows companies and people. Person follow exists because some
// profiles allow following without connecting.
type Follower struct {
	log *slog.Logger
	pacing
}

func NewFollower(log *slog.Logger) *Follower {
	return &Follower{log: log.With("module", "automation"), pacing: defaultPacing()}
}

// FollowCompany navigates to a company page and clicks follow.
func (f *Follower) FollowCompany(ctx context.Context, d browser.Driver, companyURL string) Result {
	f.log.Info("following company", "company_url", companyURL)

	if err := d.Navigate(ctx, companyURL); err != nil {
		f.log.Error("follow navigation failed", "error", err)
		return Result{Status: StatusError, TargetURL: companyURL,
			Message: (&NavigationError{URL: companyURL, Err: err}).Error()}
	}

	if d.IsVisible(rateLimitPageSel, 2*time.Second) {
		return Result{Status: StatusRateLimited, TargetURL: companyURL,
			Message: "LinkedIn rate limit page detected"}
	}

	if f.companyFollowed(d) {
		name := f.companyName(d)
		return Result{Status: StatusAlreadyFollowing, TargetURL: companyURL,
			TargetName: name, Message: "already following " + name}
	}

	if !f.clickCompanyFollow(ctx, d) {
		d.Screenshot("follow_button_fail")
		return Result{Status: StatusFailed, TargetURL: companyURL,
			Message: (&ElementNotFoundError{Element: "follow button"}).Error()}
	}

	name := f.companyName(d)
	return Result{Status: StatusSuccess, TargetURL: companyURL,
		TargetName: name, Message: "now following " + name}
}

// FollowPerson follows a profile without connecting.
func (f *Follower) FollowPerson(ctx context.Context, d browser.Driver, profileURL string) Result {
	f.log.Info("following person", "profile_url", profileURL)

	if err := d.Navigate(ctx, profileURL); err != nil {
		f.log.Error("follow navigation failed", "error", err)
		return Result{Status: StatusError, TargetURL: profileURL,
			Message: (&NavigationError{URL: profileURL, Err: err}).Error()}
	}

	if d.IsVisible(rateLimitPageSel, 2*time.Second) {
		return Result{Status: StatusRateLimited, TargetURL: profileURL,
			Message: "LinkedIn rate limit page detected"}
	}

	if d.HasText("button", followingTextPattern, 2*time.Second) {
		name := f.personName(d)
		return Result{Status: StatusAlreadyFollowing, TargetURL: profileURL,
			TargetName: name, Message: "already following " + name}
	}

	if err := d.ClickByText("button", followTextPattern, 3*time.Second); err != nil {
		return Result{Status: StatusFailed, TargetURL: profileURL,
			Message: "follow button not available, try connecting instead"}
	}
	f.randomDelay(ctx, time.Second, 2*time.Second)

	name := f.personName(d)
	return Result{Status: StatusSuccess, TargetURL: profileURL,
		TargetName: name, Message: "now following " + name}
}

func (f *Follower) companyFollowed(d browser.Driver) bool {
	if d.HasText("button", companyFollowDoneText, 2*time.Second) {
		return true
	}
	return d.IsVisible(companyFollowingSel, time.Second)
}

// clickCompanyFollow tries the dedicated follow class first, then a plain
// Follow button. A landed click counts as success; LinkedIn surfaces no
// reliable error state here.
func (f *Follower) clickCompanyFollow(ctx context.Context, d browser.Driver) bool {
	if err := d.Click(companyFollowSel, 3*time.Second); err == nil {
		f.randomDelay(ctx, time.Second, 2*time.Second)
		return true
	}
	if err := d.ClickByText("button", followTextPattern, 2*time.Second); err == nil {
		f.randomDelay(ctx, time.Second, 2*time.Second)
		return true
	}
	return false
}

func (f *Follower) companyName(d browser.Driver) string {
	name, err := d.Text(companyNameSel, 2*time.Second)
	if err != nil || name == "" {
		return "Unknown"
	}
	return name
}

func (f *Follower) personName(d browser.Driver) string {
	name, err := d.Text(profileNameSel, 2*time.Second)
	if err != nil || name == "" {
		return "Unknown"
	}
	return name
}
