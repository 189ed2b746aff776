package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/example/linkscout/internal/models"
	"github.com/example/linkscout/internal/safety"
	"github.com/example/linkscout/internal/store"
)

// RateLimitStatus reports quota usage, batch progress and current backoff.
func (t *Tools) RateLimitStatus(ctx context.Context) (safety.Status, error) {
	return t.limiter.Status(ctx)
}

// DayReport is the single-day stats report.
type DayReport struct {
	Period                string `json:"period"`
	Date                  string `json:"date"`
	ConnectionRequests    int    `json:"connection_requests"`
	Follows               int    `json:"follows"`
	Messages              int    `json:"messages"`
	SuccessfulConnections int    `json:"successful_connections"`
	SuccessfulFollows     int    `json:"successful_follows"`
	FailedActions         int    `json:"failed_actions"`
	SuccessRate           struct {
		Connections string `json:"connections"`
		Follows     string `json:"follows"`
	} `json:"success_rate"`
}

func (t *Tools) TodayReport(ctx context.Context) (DayReport, error) {
	stats, err := t.store.TodayStats(ctx)
	if err != nil {
		return DayReport{}, err
	}
	r := DayReport{
		Period:                "day",
		Date:                  stats.Date,
		ConnectionRequests:    stats.ConnectionRequests,
		Follows:               stats.Follows,
		Messages:              stats.Messages,
		SuccessfulConnections: stats.SuccessfulConnections,
		SuccessfulFollows:     stats.SuccessfulFollows,
		FailedActions:         stats.FailedActions,
	}
	r.SuccessRate.Connections = ratio(stats.SuccessfulConnections, stats.ConnectionRequests)
	r.SuccessRate.Follows = ratio(stats.SuccessfulFollows, stats.Follows)
	return r, nil
}

func (t *Tools) WeeklyReport(ctx context.Context) (models.RangeStats, error) {
	return t.store.WeeklyStats(ctx)
}

func (t *Tools) MonthlyReport(ctx context.Context) (models.RangeStats, error) {
	return t.store.MonthlyStats(ctx)
}

func ratio(ok, total int) string {
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d", ok, total)
}

// HistoryQuery filters the action history. Empty or "all" fields mean no
// filter on that dimension.
type HistoryQuery struct {
	ActionType string
	Status     string
	Days       int
	Limit      int
}

// History is the filtered action-history response.
type History struct {
	Filters struct {
		ActionType string `json:"action_type"`
		Status     string `json:"status"`
		Days       int    `json:"days"`
	} `json:"filters"`
	Count   int                     `json:"count"`
	Actions []models.OutreachAction `json:"actions"`
}

// OutreachHistory lists past actions newest first. Days defaults to 7 and
// limit is clamped to [1, 200] with a default of 50.
func (t *Tools) OutreachHistory(ctx context.Context, q HistoryQuery) (History, error) {
	if q.Days <= 0 {
		q.Days = 7
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.ActionType == "all" {
		q.ActionType = ""
	}
	if q.Status == "all" {
		q.Status = ""
	}

	since := time.Now().AddDate(0, 0, -q.Days)
	actions, err := t.store.Actions(ctx, store.ActionFilter{
		Type:   models.ActionType(q.ActionType),
		Status: models.ActionStatus(q.Status),
		Since:  &since,
		Limit:  q.Limit,
	})
	if err != nil {
		return History{}, err
	}

	h := History{Count: len(actions), Actions: actions}
	h.Filters.ActionType = orAll(q.ActionType)
	h.Filters.Status = orAll(q.Status)
	h.Filters.Days = q.Days
	return h, nil
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
