package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linkscout/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "linkscout.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestCreateAndFetchAction(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	msg := "hi there"
	a := &models.OutreachAction{
		ActionType: models.ActionConnectionRequest,
		TargetURL:  "https://www.linkedin.com/in/janedoe/",
		Message:    &msg,
		Status:     models.StatusPending,
	}
	require.NoError(t, st.CreateAction(ctx, a))
	assert.NotZero(t, a.ID)

	got, err := st.ActionByTargetURL(ctx, a.TargetURL, models.ActionConnectionRequest)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, models.StatusPending, got.Status)
	require.NotNil(t, got.Message)
	assert.Equal(t, msg, *got.Message)
}

func TestActionByTargetURLMissing(t *testing.T) {
	st := testStore(t)

	got, err := st.ActionByTargetURL(context.Background(),
		"https://www.linkedin.com/in/nobody/", models.ActionConnectionRequest)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActionByTargetURLMostRecentWins(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	target := "https://www.linkedin.com/in/janedoe/"

	older := &models.OutreachAction{
		ActionType: models.ActionConnectionRequest,
		TargetURL:  target,
		Status:     models.StatusFailed,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, st.CreateAction(ctx, older))

	newer := &models.OutreachAction{
		ActionType: models.ActionConnectionRequest,
		TargetURL:  target,
		Status:     models.StatusSuccess,
	}
	require.NoError(t, st.CreateAction(ctx, newer))

	got, err := st.ActionByTargetURL(ctx, target, models.ActionConnectionRequest)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, models.StatusSuccess, got.Status)
}

func TestUpdateActionStatus(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	a := &models.OutreachAction{
		ActionType: models.ActionFollowCompany,
		TargetURL:  "https://www.linkedin.com/company/acme/",
		Status:     models.StatusPending,
	}
	require.NoError(t, st.CreateAction(ctx, a))

	reason := "follow button not found"
	require.NoError(t, st.UpdateActionStatus(ctx, a.ID, models.StatusFailed, &reason))

	got, err := st.ActionByTargetURL(ctx, a.TargetURL, models.ActionFollowCompany)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, reason, *got.ErrorMessage)
	assert.NotNil(t, got.UpdatedAt)
}

func TestActionsFilter(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	for i, status := range []models.ActionStatus{
		models.StatusSuccess, models.StatusFailed, models.StatusSuccess,
	} {
		require.NoError(t, st.CreateAction(ctx, &models.OutreachAction{
			ActionType: models.ActionConnectionRequest,
			TargetURL:  "https://www.linkedin.com/in/person" + string(rune('a'+i)) + "/",
			Status:     status,
		}))
	}

	got, err := st.Actions(ctx, ActionFilter{Status: models.StatusSuccess})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = st.Actions(ctx, ActionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = st.Actions(ctx, ActionFilter{Type: models.ActionFollowCompany})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDailyStatsLazyRow(t *testing.T) {
	st := testStore(t)

	stats, err := st.TodayStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), stats.Date)
	assert.Zero(t, stats.ConnectionRequests)
}

func TestIncrementDailyStat(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	require.NoError(t, st.IncrementDailyStat(ctx, "connection_requests", today))
	require.NoError(t, st.IncrementDailyStat(ctx, "connection_requests", today))
	require.NoError(t, st.IncrementDailyStat(ctx, "successful_connections", today))

	stats, err := st.TodayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ConnectionRequests)
	assert.Equal(t, 1, stats.SuccessfulConnections)
}

func TestIncrementDailyStatRejectsUnknownColumn(t *testing.T) {
	st := testStore(t)
	err := st.IncrementDailyStat(context.Background(), "drop_table", "")
	require.Error(t, err)
}

func TestWeeklyStatsAggregation(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	lastMonth := time.Now().AddDate(0, 0, -20).Format("2006-01-02")

	require.NoError(t, st.IncrementDailyStat(ctx, "follows", today))
	require.NoError(t, st.IncrementDailyStat(ctx, "follows", yesterday))
	require.NoError(t, st.IncrementDailyStat(ctx, "follows", lastMonth))

	weekly, err := st.WeeklyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "week", weekly.Period)
	assert.Equal(t, 2, weekly.Follows)
	assert.Len(t, weekly.DailyBreakdown, 2)

	monthly, err := st.MonthlyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, monthly.Follows)
}

func TestSearchCacheUpsert(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	title := "Engineer"
	query := "golang engineer"
	r := &models.SearchResult{
		URL:         "https://www.linkedin.com/in/janedoe/",
		Name:        "Jane Doe",
		Title:       &title,
		SearchQuery: &query,
		ResultType:  "person",
	}
	require.NoError(t, st.CacheSearchResult(ctx, r))

	updatedTitle := "Staff Engineer"
	require.NoError(t, st.CacheSearchResult(ctx, &models.SearchResult{
		URL:         r.URL,
		Name:        "Jane Doe",
		Title:       &updatedTitle,
		SearchQuery: &query,
		ResultType:  "person",
	}))

	got, err := st.SearchResultByURL(ctx, r.URL)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Title)
	assert.Equal(t, updatedTitle, *got.Title)

	byQuery, err := st.SearchResultsByQuery(ctx, query, "person", 10)
	require.NoError(t, err)
	assert.Len(t, byQuery, 1)
}

func TestPauseRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	paused, err := st.IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, st.SetPaused(ctx, true))
	paused, err = st.IsPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	info, err := st.PauseInfo(ctx)
	require.NoError(t, err)
	assert.True(t, info.Paused)
	assert.NotNil(t, info.UpdatedAt)

	require.NoError(t, st.SetPaused(ctx, false))
	paused, err = st.IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
}
