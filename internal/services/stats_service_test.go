package services

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/sprintsync/internal/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name                         string
		total, todo, inProg, done, m int
		wantAverage, wantRate        float64
	}{
		{name: "no tasks"},
		{name: "demo user", total: 5, todo: 2, inProg: 1, done: 2, m: 405, wantAverage: 81, wantRate: 40},
		{name: "rounds to two places", total: 3, done: 1, m: 100, wantAverage: 33.33, wantRate: 33.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summarize(tt.total, tt.todo, tt.inProg, tt.done, tt.m)
			assert.Equal(t, tt.total, s.TotalTasks)
			assert.Equal(t, tt.m, s.TotalMinutesLogged)
			assert.Equal(t, tt.wantAverage, s.AverageMinutesPerTask)
			assert.Equal(t, tt.wantRate, s.CompletionRate)
		})
	}
}

func TestStatsService_UserSummary(t *testing.T) {
	mock := newMockPool(t)
	svc := NewStatsService(zerolog.Nop(), mock)

	mock.ExpectQuery(`FILTER \(WHERE status = 'DONE'\)`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "todo", "in_progress", "done", "minutes"}).
			AddRow(3, 1, 1, 1, 300))

	summary, err := svc.UserSummary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTasks)
	assert.Equal(t, 100.0, summary.AverageMinutesPerTask)
	assert.Equal(t, 33.33, summary.CompletionRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsService_TopUsers(t *testing.T) {
	mock := newMockPool(t)
	svc := NewStatsService(zerolog.Nop(), mock)

	mock.ExpectQuery(`LEFT JOIN tasks t ON t.user_id = u.id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "email", "total", "done", "minutes"}).
			AddRow("demo", "Demo User", "demo@sprintsync.com", 5, 2, 405).
			AddRow("new", "New User", "new@sprintsync.com", 0, 0, 0))

	stats, err := svc.TopUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 40.0, stats[0].CompletionRate)
	assert.Zero(t, stats[1].CompletionRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsService_RecentActivity(t *testing.T) {
	mock := newMockPool(t)
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := &statsServiceImpl{
		logger: zerolog.Nop(),
		db:     mock,
		now:    func() time.Time { return now },
	}

	mock.ExpectQuery(`ORDER BY updated_at DESC`).
		WithArgs("user-1", now.Add(-7*24*time.Hour), 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "status", "total_minutes", "updated_at"}).
			AddRow("t1", "Design task management UI", models.StatusInProgress, 90, now))

	activity, err := svc.RecentActivity(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, activity.RecentTasks, 1)
	assert.Equal(t, models.StatusInProgress, activity.RecentTasks[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
