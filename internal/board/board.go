package board

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/client"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/query"
)

// TaskAPI is the part of the API client the board drives.
type TaskAPI interface {
	ListTasks(ctx context.Context, status *models.Status) ([]*models.Task, error)
	CreateTask(ctx context.Context, req client.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.Status) (*models.Task, error)
	AddTime(ctx context.Context, id string, minutes int) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Column is one status lane of the board.
type Column struct {
	Status models.Status
	Tasks  []*models.Task
}

type Params struct {
	API    TaskAPI
	Cache  *query.Cache
	Policy models.TransitionPolicy

	// Notifier defaults to discarding notifications.
	Notifier Notifier
	Logger   zerolog.Logger
}

// Board turns user gestures into task mutations. It never edits cached data
// itself: a successful mutation invalidates the task keys and the next read
// refetches.
type Board struct {
	api      TaskAPI
	cache    *query.Cache
	policy   models.TransitionPolicy
	notifier Notifier
	logger   zerolog.Logger

	mu       sync.Mutex
	dragging *models.Task
}

func New(params Params) *Board {
	b := &Board{
		api:      params.API,
		cache:    params.Cache,
		policy:   params.Policy,
		notifier: params.Notifier,
		logger:   params.Logger,
	}
	if b.policy == nil {
		b.policy = models.FreePolicy{}
	}
	if b.notifier == nil {
		b.notifier = NotifierFunc(func(Notification) {})
	}
	return b
}

// Tasks returns the current user's tasks through the cache.
func (b *Board) Tasks(ctx context.Context) ([]*models.Task, error) {
	return query.Get(ctx, b.cache, query.KeyTasks, func(ctx context.Context) ([]*models.Task, error) {
		return b.api.ListTasks(ctx, nil)
	})
}

// Reload drops the cached task list and fetches it again.
func (b *Board) Reload(ctx context.Context) ([]*models.Task, error) {
	b.cache.Invalidate(query.KeyTasks)
	return b.Tasks(ctx)
}

// Columns groups the cached tasks by status, in board order.
func (b *Board) Columns(ctx context.Context) ([]Column, error) {
	tasks, err := b.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByStatus(tasks), nil
}

func GroupByStatus(tasks []*models.Task) []Column {
	columns := make([]Column, len(models.Statuses))
	index := make(map[models.Status]int, len(models.Statuses))
	for i, s := range models.Statuses {
		columns[i] = Column{Status: s}
		index[s] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return columns
}

// Advance moves the task one step along TODO -> IN_PROGRESS -> DONE -> TODO.
func (b *Board) Advance(ctx context.Context, task *models.Task) (*models.Task, error) {
	return b.setStatus(ctx, task, task.Status.Next(), models.TriggerAdvance)
}

func (b *Board) DragStart(task *models.Task) {
	b.mu.Lock()
	b.dragging = task
	b.mu.Unlock()
}

// Dragging returns the task being dragged, or nil.
func (b *Board) Dragging() *models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging
}

func (b *Board) CancelDrag() {
	b.DragStart(nil)
}

// Drop ends a drag over column. A nil column or the task's own column ends
// the drag without a request. The bool reports whether an update was sent.
func (b *Board) Drop(ctx context.Context, column *models.Status) (*models.Task, bool, error) {
	b.mu.Lock()
	task := b.dragging
	b.dragging = nil
	b.mu.Unlock()

	if task == nil || column == nil || *column == task.Status {
		return task, false, nil
	}

	updated, err := b.setStatus(ctx, task, *column, models.TriggerDrag)
	return updated, true, err
}

func (b *Board) setStatus(ctx context.Context, task *models.Task, to models.Status, trigger models.Trigger) (*models.Task, error) {
	if err := b.policy.Allow(task.Status, to, trigger); err != nil {
		b.fail(err, "status change refused", task.ID)
		return nil, err
	}

	updated, err := query.Mutate(ctx, b.cache, func(ctx context.Context) (*models.Task, error) {
		return b.api.UpdateTaskStatus(ctx, task.ID, to)
	}, query.TaskKeys...)
	if err != nil {
		b.fail(err, "failed to update task status", task.ID)
		return nil, err
	}

	b.logger.Info().
		Str("task_id", task.ID).
		Str("from", task.Status.String()).
		Str("to", to.String()).
		Str("trigger", string(trigger)).
		Msg("task status updated")
	b.notify(LevelSuccess, fmt.Sprintf("%q moved to %s", updated.Title, updated.Status))
	return updated, nil
}

// LogTime parses raw as a positive number of minutes and adds it to the task.
// Unparseable or non-positive input is rejected without a request.
func (b *Board) LogTime(ctx context.Context, taskID, raw string) (*models.Task, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || minutes <= 0 {
		verr := &client.ValidationError{Field: "minutes", Message: "must be a positive whole number"}
		b.fail(verr, "rejected time entry", taskID)
		return nil, verr
	}

	updated, err := query.Mutate(ctx, b.cache, func(ctx context.Context) (*models.Task, error) {
		return b.api.AddTime(ctx, taskID, minutes)
	}, query.TaskKeys...)
	if err != nil {
		b.fail(err, "failed to log time", taskID)
		return nil, err
	}

	b.logger.Info().Str("task_id", taskID).Int("minutes", minutes).Msg("time logged")
	b.notify(LevelSuccess, fmt.Sprintf("Logged %d min on %q", minutes, updated.Title))
	return updated, nil
}

func (b *Board) CreateTask(ctx context.Context, req client.CreateTaskRequest) (*models.Task, error) {
	created, err := query.Mutate(ctx, b.cache, func(ctx context.Context) (*models.Task, error) {
		return b.api.CreateTask(ctx, req)
	}, query.TaskKeys...)
	if err != nil {
		b.fail(err, "failed to create task", "")
		return nil, err
	}

	b.logger.Info().Str("task_id", created.ID).Msg("task created")
	b.notify(LevelSuccess, fmt.Sprintf("Created %q", created.Title))
	return created, nil
}

func (b *Board) UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) (*models.Task, error) {
	updated, err := query.Mutate(ctx, b.cache, func(ctx context.Context) (*models.Task, error) {
		return b.api.UpdateTask(ctx, taskID, patch)
	}, query.TaskKeys...)
	if err != nil {
		b.fail(err, "failed to update task", taskID)
		return nil, err
	}

	b.logger.Info().Str("task_id", taskID).Msg("task updated")
	b.notify(LevelSuccess, fmt.Sprintf("Updated %q", updated.Title))
	return updated, nil
}

func (b *Board) DeleteTask(ctx context.Context, taskID string) error {
	_, err := query.Mutate(ctx, b.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, b.api.DeleteTask(ctx, taskID)
	}, query.TaskKeys...)
	if err != nil {
		b.fail(err, "failed to delete task", taskID)
		return err
	}

	b.logger.Info().Str("task_id", taskID).Msg("task deleted")
	b.notify(LevelSuccess, "Task deleted")
	return nil
}

func (b *Board) fail(err error, msg, taskID string) {
	b.logger.Error().Err(err).Str("task_id", taskID).Msg(msg)
	b.notify(LevelError, err.Error())
}

func (b *Board) notify(level Level, msg string) {
	b.notifier.Notify(Notification{Level: level, Message: msg})
}
