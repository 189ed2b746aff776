// Package tools is the caller-facing operation layer. It composes the
// store, the rate limiter and the browser automation flows into the
// operations a CLI or agent invokes, and maps every outcome onto a
// structured response. Storage errors are the only errors that cross
// this boundary.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/linkscout/internal/automation"
	"github.com/example/linkscout/internal/browser"
	"github.com/example/linkscout/internal/models"
	"github.com/example/linkscout/internal/safety"
	"github.com/example/linkscout/internal/store"
)

// Outcome statuses added on top of the automation result statuses.
const (
	StatusPaused            = "paused"
	StatusLimitExceeded     = "rate_limit_exceeded"
	StatusAlreadySent       = "already_sent"
	StatusAlreadyFollowed   = "already_followed"
	StatusSkippedByOperator = "skipped"
)

// Outcome is the structured response for a single outreach operation.
type Outcome struct {
	Status      string `json:"status"`
	TargetURL   string `json:"target_url,omitempty"`
	TargetName  string `json:"target_name,omitempty"`
	MessageSent bool   `json:"message_sent,omitempty"`
	Message     string `json:"message"`
	Current     int    `json:"current,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// BulkResult aggregates the outcomes of a bulk outreach run.
type BulkResult struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Results    []Outcome `json:"results"`
}

// actionStore is the slice of the store the tools layer needs.
type actionStore interface {
	CreateAction(ctx context.Context, a *models.OutreachAction) error
	UpdateActionStatus(ctx context.Context, id int64, status models.ActionStatus, errorMessage *string) error
	ActionByTargetURL(ctx context.Context, targetURL string, actionType models.ActionType) (*models.OutreachAction, error)
	Actions(ctx context.Context, f store.ActionFilter) ([]models.OutreachAction, error)
	TodayStats(ctx context.Context) (models.DailyStats, error)
	WeeklyStats(ctx context.Context) (models.RangeStats, error)
	MonthlyStats(ctx context.Context) (models.RangeStats, error)
	CacheSearchResult(ctx context.Context, r *models.SearchResult) error
}

// limiter is the slice of the rate limiter the tools layer needs.
type limiter interface {
	CheckLimit(ctx context.Context, actionType models.ActionType) error
	RecordAction(ctx context.Context, actionType models.ActionType, success bool) error
	WaitBetweenActions(ctx context.Context) (time.Duration, error)
	WaitForBatchPause(ctx context.Context) (time.Duration, error)
	ApplyBackoff(ctx context.Context) (time.Duration, error)
	ResetBackoff()
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Status(ctx context.Context) (safety.Status, error)
}

// Tools wires the operation layer together. The automation entry points are
// plain function fields so tests can swap them without a browser.
type Tools struct {
	store   actionStore
	limiter limiter
	session *browser.Session
	log     *slog.Logger

	connect       func(ctx context.Context, d browser.Driver, profileURL, note string) automation.Result
	followCompany func(ctx context.Context, d browser.Driver, companyURL string) automation.Result
	followPerson  func(ctx context.Context, d browser.Driver, profileURL string) automation.Result
	searchPeople  func(ctx context.Context, d browser.Driver, keywords string, limit int) ([]automation.Person, error)
}

func New(st *store.Store, rl *safety.RateLimiter, sess *browser.Session, log *slog.Logger) *Tools {
	connector := automation.NewConnector(log)
	follower := automation.NewFollower(log)
	search := automation.NewPeopleSearch(log)
	return &Tools{
		store:         st,
		limiter:       rl,
		session:       sess,
		log:           log.With("module", "tools"),
		connect:       connector.Execute,
		followCompany: follower.FollowCompany,
		followPerson:  follower.FollowPerson,
		searchPeople:  search.Execute,
	}
}

// precheck maps pause and quota violations onto structured outcomes.
// A non-nil error means the store itself failed.
func (t *Tools) precheck(ctx context.Context, actionType models.ActionType) (*Outcome, error) {
	err := t.limiter.CheckLimit(ctx, actionType)
	var paused *safety.PausedError
	var exceeded *safety.LimitExceededError
	switch {
	case err == nil:
		return nil, nil
	case errors.As(err, &paused):
		return &Outcome{
			Status:  StatusPaused,
			Message: "outreach is paused, resume to continue",
		}, nil
	case errors.As(err, &exceeded):
		return &Outcome{
			Status:  StatusLimitExceeded,
			Message: exceeded.Error(),
			Current: exceeded.Current,
			Limit:   exceeded.Limit,
		}, nil
	default:
		return nil, err
	}
}

// settle writes the terminal action status and updates counters and the
// backoff state to match the automation result.
func (t *Tools) settle(ctx context.Context, actionID int64, actionType models.ActionType, result automation.Result) error {
	switch {
	case result.Success():
		if err := t.store.UpdateActionStatus(ctx, actionID, models.StatusSuccess, nil); err != nil {
			return err
		}
		if err := t.limiter.RecordAction(ctx, actionType, true); err != nil {
			return err
		}
		t.limiter.ResetBackoff()
	case result.Skipped():
		msg := result.Message
		if err := t.store.UpdateActionStatus(ctx, actionID, models.StatusSkipped, &msg); err != nil {
			return err
		}
	case result.Status == automation.StatusRateLimited:
		msg := result.Message
		if err := t.store.UpdateActionStatus(ctx, actionID, models.StatusRateLimited, &msg); err != nil {
			return err
		}
		if _, err := t.limiter.ApplyBackoff(ctx); err != nil {
			return err
		}
	default:
		msg := result.Message
		if err := t.store.UpdateActionStatus(ctx, actionID, models.StatusFailed, &msg); err != nil {
			return err
		}
		if err := t.limiter.RecordAction(ctx, actionType, false); err != nil {
			return err
		}
	}
	return nil
}

func fromResult(r automation.Result) Outcome {
	return Outcome{
		Status:      r.Status,
		TargetURL:   r.TargetURL,
		TargetName:  r.TargetName,
		MessageSent: r.MessageSent,
		Message:     r.Message,
	}
}
