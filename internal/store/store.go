package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/example/linkscout/internal/models"
)

const pauseKey = "outreach_paused"

// Store is the persistence layer: action audit trail, daily counters,
// search cache and the persisted pause flag.
type Store struct{ db *sqlx.DB }

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmt := `
CREATE TABLE IF NOT EXISTS outreach_actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action_type TEXT NOT NULL,
	target_url TEXT NOT NULL,
	target_name TEXT,
	message TEXT,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_actions_created_at ON outreach_actions(created_at);
CREATE INDEX IF NOT EXISTS idx_actions_type ON outreach_actions(action_type);
CREATE INDEX IF NOT EXISTS idx_actions_target_url ON outreach_actions(target_url);

CREATE TABLE IF NOT EXISTS daily_stats (
	date TEXT PRIMARY KEY,
	connection_requests INTEGER DEFAULT 0,
	follows INTEGER DEFAULT 0,
	messages INTEGER DEFAULT 0,
	successful_connections INTEGER DEFAULT 0,
	successful_follows INTEGER DEFAULT 0,
	failed_actions INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS search_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	title TEXT,
	location TEXT,
	search_query TEXT,
	result_type TEXT NOT NULL,
	extra_data TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_search_url ON search_cache(url);
CREATE INDEX IF NOT EXISTS idx_search_query ON search_cache(search_query);

CREATE TABLE IF NOT EXISTS outreach_state (
	key TEXT PRIMARY KEY,
	value TEXT,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

// CreateAction inserts a new audit row and populates its ID.
func (s *Store) CreateAction(ctx context.Context, a *models.OutreachAction) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO outreach_actions
		(action_type, target_url, target_name, message, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ActionType, a.TargetURL, a.TargetName, a.Message, a.Status, a.ErrorMessage, a.CreatedAt)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateActionStatus(ctx context.Context, id int64, status models.ActionStatus, errorMessage *string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE outreach_actions
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?`, status, errorMessage, time.Now(), id)
	return err
}

// ActionByTargetURL returns the most recent action for a target URL,
// optionally filtered by type. Returns (nil, nil) when no row exists.
func (s *Store) ActionByTargetURL(ctx context.Context, targetURL string, actionType models.ActionType) (*models.OutreachAction, error) {
	var a models.OutreachAction
	var err error
	if actionType != "" {
		err = s.db.GetContext(ctx, &a, `SELECT * FROM outreach_actions
			WHERE target_url = ? AND action_type = ?
			ORDER BY created_at DESC LIMIT 1`, targetURL, actionType)
	} else {
		err = s.db.GetContext(ctx, &a, `SELECT * FROM outreach_actions
			WHERE target_url = ?
			ORDER BY created_at DESC LIMIT 1`, targetURL)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ActionFilter narrows Actions listings. Zero values mean "no filter".
type ActionFilter struct {
	Type   models.ActionType
	Status models.ActionStatus
	Since  *time.Time
	Limit  int
	Offset int
}

func (s *Store) Actions(ctx context.Context, f ActionFilter) ([]models.OutreachAction, error) {
	q := `SELECT * FROM outreach_actions WHERE 1=1`
	var args []any
	if f.Type != "" {
		q += ` AND action_type = ?`
		args = append(args, f.Type)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Since != nil {
		q += ` AND created_at >= ?`
		args = append(args, *f.Since)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)
	var out []models.OutreachAction
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) TodayStats(ctx context.Context) (models.DailyStats, error) {
	return s.StatsForDate(ctx, time.Now().Format("2006-01-02"))
}

// StatsForDate reads the counters for one day, creating a zero row on
// first access so later increments have something to update.
func (s *Store) StatsForDate(ctx context.Context, date string) (models.DailyStats, error) {
	var d models.DailyStats
	err := s.db.GetContext(ctx, &d, `SELECT * FROM daily_stats WHERE date = ?`, date)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO daily_stats (date) VALUES (?)`, date); err != nil {
			return models.DailyStats{}, err
		}
		return models.DailyStats{Date: date}, nil
	}
	if err != nil {
		return models.DailyStats{}, err
	}
	return d, nil
}

// statColumns is the allowlist for IncrementDailyStat; the column name is
// interpolated into SQL and must never come from user input.
var statColumns = map[string]bool{
	"connection_requests":    true,
	"follows":                true,
	"messages":               true,
	"successful_connections": true,
	"successful_follows":     true,
	"failed_actions":         true,
}

func (s *Store) IncrementDailyStat(ctx context.Context, stat string, date string) error {
	if !statColumns[stat] {
		return fmt.Errorf("unknown daily stat %q", stat)
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := s.StatsForDate(ctx, date); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE daily_stats SET %s = %s + 1 WHERE date = ?`, stat, stat), date)
	return err
}

func (s *Store) StatsRange(ctx context.Context, start, end time.Time) ([]models.DailyStats, error) {
	var out []models.DailyStats
	err := s.db.SelectContext(ctx, &out, `SELECT * FROM daily_stats
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC`,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) WeeklyStats(ctx context.Context) (models.RangeStats, error) {
	return s.rangeStats(ctx, "week", 7)
}

func (s *Store) MonthlyStats(ctx context.Context) (models.RangeStats, error) {
	return s.rangeStats(ctx, "month", 30)
}

func (s *Store) rangeStats(ctx context.Context, period string, days int) (models.RangeStats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	daily, err := s.StatsRange(ctx, start, end)
	if err != nil {
		return models.RangeStats{}, err
	}
	r := models.RangeStats{
		Period:         period,
		StartDate:      start.Format("2006-01-02"),
		EndDate:        end.Format("2006-01-02"),
		DailyBreakdown: daily,
	}
	for _, d := range daily {
		r.ConnectionRequests += d.ConnectionRequests
		r.Follows += d.Follows
		r.Messages += d.Messages
		r.SuccessfulConnections += d.SuccessfulConnections
		r.SuccessfulFollows += d.SuccessfulFollows
		r.FailedActions += d.FailedActions
	}
	return r, nil
}

// CacheSearchResult upserts a harvested search result keyed by URL.
func (s *Store) CacheSearchResult(ctx context.Context, r *models.SearchResult) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO search_cache
		(url, name, title, location, search_query, result_type, extra_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
		name=excluded.name,
		title=excluded.title,
		location=excluded.location,
		search_query=excluded.search_query,
		extra_data=excluded.extra_data`,
		r.URL, r.Name, r.Title, r.Location, r.SearchQuery, r.ResultType, r.ExtraData, r.CreatedAt)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		r.ID = id
	}
	return nil
}

func (s *Store) SearchResultByURL(ctx context.Context, url string) (*models.SearchResult, error) {
	var r models.SearchResult
	err := s.db.GetContext(ctx, &r, `SELECT * FROM search_cache WHERE url = ?`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SearchResultsByQuery(ctx context.Context, query, resultType string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []models.SearchResult
	var err error
	if resultType != "" {
		err = s.db.SelectContext(ctx, &out, `SELECT * FROM search_cache
			WHERE search_query = ? AND result_type = ? LIMIT ?`, query, resultType, limit)
	} else {
		err = s.db.SelectContext(ctx, &out, `SELECT * FROM search_cache
			WHERE search_query = ? LIMIT ?`, query, limit)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) IsPaused(ctx context.Context) (bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM outreach_state WHERE key = ?`, pauseKey)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (s *Store) SetPaused(ctx context.Context, paused bool) error {
	value := "false"
	if paused {
		value = "true"
	}
	now := time.Now().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO outreach_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		pauseKey, value, now)
	return err
}

func (s *Store) PauseInfo(ctx context.Context) (models.PauseInfo, error) {
	var row struct {
		Value     string  `db:"value"`
		UpdatedAt *string `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT value, updated_at FROM outreach_state WHERE key = ?`, pauseKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PauseInfo{Paused: false}, nil
	}
	if err != nil {
		return models.PauseInfo{}, err
	}
	return models.PauseInfo{Paused: row.Value == "true", UpdatedAt: row.UpdatedAt}, nil
}
