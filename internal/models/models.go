package models

import "time"

type ActionType string

const (
	ActionConnectionRequest ActionType = "connection_request"
	ActionFollowCompany     ActionType = "follow_company"
	ActionFollowPerson      ActionType = "follow_person"
	ActionMessageSent       ActionType = "message_sent"
)

type ActionStatus string

const (
	StatusPending     ActionStatus = "pending"
	StatusSuccess     ActionStatus = "success"
	StatusFailed      ActionStatus = "failed"
	StatusRateLimited ActionStatus = "rate_limited"
	StatusSkipped     ActionStatus = "skipped"
)

// OutreachAction is one row of the audit trail. Every attempted outreach
// action gets a row, terminal failures included.
type OutreachAction struct {
	ID           int64        `db:"id" json:"id"`
	ActionType   ActionType   `db:"action_type" json:"action_type"`
	TargetURL    string       `db:"target_url" json:"target_url"`
	TargetName   *string      `db:"target_name" json:"target_name,omitempty"`
	Message      *string      `db:"message" json:"message,omitempty"`
	Status       ActionStatus `db:"status" json:"status"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

// DailyStats holds per-day outreach counters keyed by date (YYYY-MM-DD).
type DailyStats struct {
	Date                  string `db:"date" json:"date"`
	ConnectionRequests    int    `db:"connection_requests" json:"connection_requests"`
	Follows               int    `db:"follows" json:"follows"`
	Messages              int    `db:"messages" json:"messages"`
	SuccessfulConnections int    `db:"successful_connections" json:"successful_connections"`
	SuccessfulFollows     int    `db:"successful_follows" json:"successful_follows"`
	FailedActions         int    `db:"failed_actions" json:"failed_actions"`
}

// RangeStats aggregates daily stats over a date window.
type RangeStats struct {
	Period                string       `json:"period"`
	StartDate             string       `json:"start_date"`
	EndDate               string       `json:"end_date"`
	ConnectionRequests    int          `json:"connection_requests"`
	Follows               int          `json:"follows"`
	Messages              int          `json:"messages"`
	SuccessfulConnections int          `json:"successful_connections"`
	SuccessfulFollows     int          `json:"successful_follows"`
	FailedActions         int          `json:"failed_actions"`
	DailyBreakdown        []DailyStats `json:"daily_breakdown"`
}

// SearchResult is a harvested search result cached by URL.
type SearchResult struct {
	ID          int64     `db:"id" json:"id"`
	URL         string    `db:"url" json:"url"`
	Name        string    `db:"name" json:"name"`
	Title       *string   `db:"title" json:"title,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	SearchQuery *string   `db:"search_query" json:"search_query,omitempty"`
	ResultType  string    `db:"result_type" json:"result_type"`
	ExtraData   *string   `db:"extra_data" json:"extra_data,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PauseInfo reports the persisted kill-switch state.
type PauseInfo struct {
	Paused    bool    `json:"paused"`
	UpdatedAt *string `json:"updated_at"`
}
