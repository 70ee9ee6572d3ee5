package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	db     DB
	policy models.TransitionPolicy
}

func NewTaskService(
	logger zerolog.Logger,
	db DB,
	policy models.TransitionPolicy,
) TaskService {
	if policy == nil {
		policy = models.FreePolicy{}
	}
	return &taskServiceImpl{
		logger: logger,
		db:     db,
		policy: policy,
	}
}

const taskColumns = `id,
       title,
       description,
       status,
       total_minutes,
       user_id,
       assigned_to,
       created_at,
       updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := new(models.Task)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.TotalMinutes,
		&task.UserID,
		&task.AssignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, actor Actor, params CreateTaskParams) (*models.Task, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be blank", ErrInvalidPatch)
	}

	assignee := actor.UserID
	if params.AssignedTo != nil && *params.AssignedTo != actor.UserID {
		if !actor.IsAdmin {
			s.logger.Error().
				Str("user_id", actor.UserID).
				Msg("only admins can assign tasks to others")
			return nil, fmt.Errorf("%w: only admins can assign tasks to others", ErrForbidden)
		}
		if err := s.ensureUserExists(ctx, *params.AssignedTo); err != nil {
			return nil, err
		}
		assignee = *params.AssignedTo
	}

	now := time.Now().UTC()
	task := &models.Task{
		Title:       title,
		Description: params.Description,
		Status:      models.StatusTodo,
		UserID:      actor.UserID,
		AssignedTo:  &assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   title,
                   description,
                   status,
                   total_minutes,
                   user_id,
                   assigned_to,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err = s.db.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.TotalMinutes,
		task.UserID,
		task.AssignedTo,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Str("assigned_to", assignee).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, actor Actor, params ListTasksParams) ([]*models.Task, error) {
	query := `
SELECT ` + taskColumns + `
FROM tasks
WHERE (user_id = $1 OR assigned_to = $1)`
	args := []any{actor.UserID}
	if params.Status != nil {
		query += ` AND status = $2`
		args = append(args, *params.Status)
	}
	query += `
ORDER BY created_at DESC
`
	tasks, err := s.selectTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", actor.UserID).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) ListAllTasks(ctx context.Context, actor Actor) ([]*models.Task, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	const selectAllTasksQuery = `
SELECT ` + taskColumns + `
FROM tasks
ORDER BY created_at DESC
`
	tasks, err := s.selectTasks(ctx, selectAllTasksQuery)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Msg("listed all tasks")
	return tasks, nil
}

func (s *taskServiceImpl) selectTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, actor Actor, taskID string) (*models.Task, error) {
	return s.loadVisibleTask(ctx, actor, taskID)
}

// loadVisibleTask hides tasks the actor may not see behind ErrTaskNotFound.
func (s *taskServiceImpl) loadVisibleTask(ctx context.Context, actor Actor, taskID string) (*models.Task, error) {
	const selectTaskQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1
`
	task, err := scanTask(s.db.QueryRow(ctx, selectTaskQuery, taskID))
	if err != nil {
		if isNoRows(err) {
			s.logger.Error().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}

	if !actor.IsAdmin && !task.VisibleTo(actor.UserID) {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", actor.UserID).
			Msg("task is not visible to user")
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, actor Actor, taskID string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.loadVisibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		s.logger.Warn().
			Str("task_id", taskID).
			Msg("no fields to update")
		return task, nil
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if v, ok := patch.Title.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%w: title cannot be blank", ErrInvalidPatch)
		}
		add("title", v)
	} else if patch.Title.IsNull() {
		return nil, fmt.Errorf("%w: title cannot be null", ErrInvalidPatch)
	}
	if !patch.Description.IsZero() {
		add("description", patch.Description.Ptr())
	}
	if v, ok := patch.Status.Get(); ok && v != task.Status {
		if err = s.policy.Allow(task.Status, v, models.TriggerAPI); err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Msg("status transition denied")
			return nil, err
		}
		add("status", v)
	}
	if v, ok := patch.TotalMinutes.Get(); ok {
		if v < 0 {
			return nil, fmt.Errorf("%w: total_minutes cannot be negative", ErrInvalidPatch)
		}
		add("total_minutes", v)
	}
	if !patch.AssignedTo.IsZero() {
		assignee := patch.AssignedTo.Ptr()
		if assignee != nil && *assignee != actor.UserID {
			if !actor.IsAdmin {
				return nil, fmt.Errorf("%w: only admins can assign tasks to others", ErrForbidden)
			}
			if err = s.ensureUserExists(ctx, *assignee); err != nil {
				return nil, err
			}
		}
		add("assigned_to", assignee)
	}
	if len(sets) == 0 {
		return task, nil
	}

	return s.updateTask(ctx, taskID, sets, args)
}

func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, actor Actor, taskID string, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, models.ErrInvalidStatus
	}

	task, err := s.loadVisibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		s.logger.Debug().
			Str("task_id", taskID).
			Str("status", status.String()).
			Msg("status unchanged")
		return task, nil
	}

	err = s.policy.Allow(task.Status, status, models.TriggerAPI)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("status transition denied")
		return nil, err
	}

	return s.updateTask(ctx, taskID, []string{"status = $1"}, []any{status})
}

func (s *taskServiceImpl) AddTime(ctx context.Context, actor Actor, taskID string, minutes int) (*models.Task, error) {
	if minutes <= 0 || minutes > MaxMinutesPerEntry {
		return nil, ErrInvalidMinutes
	}

	_, err := s.loadVisibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	return s.updateTask(ctx, taskID, []string{"total_minutes = total_minutes + $1"}, []any{minutes})
}

func (s *taskServiceImpl) AssignTask(ctx context.Context, actor Actor, taskID string, assignee *string) (*models.Task, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	_, err := s.loadVisibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if assignee != nil {
		if err = s.ensureUserExists(ctx, *assignee); err != nil {
			return nil, err
		}
	}

	return s.updateTask(ctx, taskID, []string{"assigned_to = $1"}, []any{assignee})
}

// updateTask runs an UPDATE built from the given SET clauses, whose
// placeholders are numbered from $1, and refreshes updated_at.
func (s *taskServiceImpl) updateTask(ctx context.Context, taskID string, sets []string, args []any) (*models.Task, error) {
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, taskID)

	query := `
UPDATE tasks
SET ` + strings.Join(sets, ",\n    ") + `
WHERE id = $` + fmt.Sprint(len(args)) + `
RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			s.logger.Error().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Str("status", task.Status.String()).
		Int("total_minutes", task.TotalMinutes).
		Msg("updated task")

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor Actor, taskID string) error {
	task, err := s.loadVisibleTask(ctx, actor, taskID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && task.UserID != actor.UserID {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", actor.UserID).
			Msg("only the owner can delete a task")
		return fmt.Errorf("%w: only the owner can delete a task", ErrForbidden)
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.db.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", actor.UserID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ensureUserExists(ctx context.Context, userID string) error {
	const selectUserExistsQuery = `
SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
`
	var exists bool
	err := s.db.QueryRow(ctx, selectUserExistsQuery, userID).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to check user")
		return err
	}
	if !exists {
		s.logger.Error().
			Str("user_id", userID).
			Msg("assignee not found")
		return ErrUserNotFound
	}
	return nil
}
