package services

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/models"
)

const (
	recentActivityWindow = 7 * 24 * time.Hour
	recentActivityLimit  = 10
)

type statsServiceImpl struct {
	logger zerolog.Logger
	db     DB
	now    func() time.Time
}

func NewStatsService(
	logger zerolog.Logger,
	db DB,
) StatsService {
	return &statsServiceImpl{
		logger: logger,
		db:     db,
		now:    time.Now,
	}
}

func (s *statsServiceImpl) UserSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	const selectSummaryQuery = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'TODO'),
       COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
       COUNT(*) FILTER (WHERE status = 'DONE'),
       COALESCE(SUM(total_minutes), 0)
FROM tasks
WHERE user_id = $1
`
	var total, todo, inProgress, done, minutes int
	err := s.db.QueryRow(ctx, selectSummaryQuery, userID).Scan(
		&total,
		&todo,
		&inProgress,
		&done,
		&minutes,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user summary")
		return nil, err
	}

	summary := summarize(total, todo, inProgress, done, minutes)
	s.logger.Debug().
		Str("user_id", userID).
		Int("total_tasks", summary.TotalTasks).
		Msg("computed user summary")
	return summary, nil
}

func (s *statsServiceImpl) TopUsers(ctx context.Context) ([]*models.UserStats, error) {
	const selectTopUsersQuery = `
SELECT u.id,
       u.full_name,
       u.email,
       COUNT(t.id),
       COUNT(t.id) FILTER (WHERE t.status = 'DONE'),
       COALESCE(SUM(t.total_minutes), 0) AS total_minutes
FROM users u
LEFT JOIN tasks t ON t.user_id = u.id
GROUP BY u.id, u.full_name, u.email
ORDER BY total_minutes DESC
`
	rows, err := s.db.Query(ctx, selectTopUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select top users")
		return nil, err
	}
	defer rows.Close()

	stats := make([]*models.UserStats, 0)
	for rows.Next() {
		st := new(models.UserStats)
		err = rows.Scan(
			&st.UserID,
			&st.FullName,
			&st.Email,
			&st.TotalTasks,
			&st.CompletedTasks,
			&st.TotalMinutes,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user stats")
			return nil, err
		}
		st.CompletionRate = percent(st.CompletedTasks, st.TotalTasks)
		stats = append(stats, st)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(stats)).
		Msg("listed top users")
	return stats, nil
}

func (s *statsServiceImpl) RecentActivity(ctx context.Context, userID string) (*models.RecentActivity, error) {
	const selectRecentQuery = `
SELECT id,
       title,
       status,
       total_minutes,
       updated_at
FROM tasks
WHERE user_id = $1
  AND updated_at >= $2
ORDER BY updated_at DESC
LIMIT $3
`
	since := s.now().UTC().Add(-recentActivityWindow)
	rows, err := s.db.Query(ctx, selectRecentQuery, userID, since, recentActivityLimit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select recent activity")
		return nil, err
	}
	defer rows.Close()

	activity := &models.RecentActivity{RecentTasks: make([]models.ActivityEntry, 0)}
	for rows.Next() {
		var entry models.ActivityEntry
		err = rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Status,
			&entry.TotalMinutes,
			&entry.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan activity entry")
			return nil, err
		}
		activity.RecentTasks = append(activity.RecentTasks, entry)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("count", len(activity.RecentTasks)).
		Msg("selected recent activity")
	return activity, nil
}

func summarize(total, todo, inProgress, done, minutes int) *models.UserSummary {
	summary := &models.UserSummary{
		TotalTasks:         total,
		TodoTasks:          todo,
		InProgressTasks:    inProgress,
		CompletedTasks:     done,
		TotalMinutesLogged: minutes,
	}
	if total > 0 {
		summary.AverageMinutesPerTask = round2(float64(minutes) / float64(total))
	}
	summary.CompletionRate = percent(done, total)
	return summary
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
