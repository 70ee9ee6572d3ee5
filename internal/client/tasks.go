package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/adanyl0v/sprintsync/internal/models"
)

// MaxMinutesPerEntry mirrors the server's cap on a single time entry.
const MaxMinutesPerEntry = 1440

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context, status *models.Status) ([]*models.Task, error) {
	var query url.Values
	if status != nil {
		if !status.Valid() {
			return nil, &ValidationError{Field: "status", Message: models.ErrInvalidStatus.Error()}
		}
		query = url.Values{"status": {status.String()}}
	}

	var tasks []*models.Task
	err := c.doJSON(ctx, http.MethodGet, "/tasks", query, nil, &tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) ListAllTasks(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	err := c.doJSON(ctx, http.MethodGet, "/admin/tasks", nil, nil, &tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task := new(models.Task)
	err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	task := new(models.Task)
	err := c.doJSON(ctx, http.MethodPost, "/tasks", nil, req, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title.IsNull() {
		return nil, &ValidationError{Field: "title", Message: "cannot be null"}
	}
	if v, ok := patch.Title.Get(); ok && strings.TrimSpace(v) == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if v, ok := patch.TotalMinutes.Get(); ok && v < 0 {
		return nil, &ValidationError{Field: "total_minutes", Message: "must be at least 0"}
	}
	if v, ok := patch.Status.Get(); ok && !v.Valid() {
		return nil, &ValidationError{Field: "status", Message: models.ErrInvalidStatus.Error()}
	}

	task := new(models.Task)
	err := c.doJSON(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, patch, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: models.ErrInvalidStatus.Error()}
	}

	task := new(models.Task)
	err := c.doJSON(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", nil,
		map[string]models.Status{"status": status}, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AddTime logs minutes against a task. Out-of-range values fail locally.
func (c *Client) AddTime(ctx context.Context, id string, minutes int) (*models.Task, error) {
	if minutes <= 0 || minutes > MaxMinutesPerEntry {
		return nil, &ValidationError{Field: "minutes", Message: "must be between 1 and 1440"}
	}

	task := new(models.Task)
	err := c.doJSON(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/time", nil,
		map[string]int{"minutes": minutes}, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AssignTask sets the assignee, or clears it when assignee is nil.
func (c *Client) AssignTask(ctx context.Context, id string, assignee *string) (*models.Task, error) {
	task := new(models.Task)
	err := c.doJSON(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/assign", nil,
		map[string]*string{"assigned_to": assignee}, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}
