package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/sprintsync/internal/config"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

type memoryUsers struct {
	services.UserService
	byEmail map[string]*models.User
}

func (m *memoryUsers) CreateUser(_ context.Context, params services.CreateUserParams) (*models.User, error) {
	if _, ok := m.byEmail[params.Email]; ok {
		return nil, services.ErrUserAlreadyExists
	}
	user := &models.User{
		ID:       fmt.Sprintf("user-%d", len(m.byEmail)+1),
		Email:    params.Email,
		FullName: params.FullName,
		IsAdmin:  params.IsAdmin,
	}
	m.byEmail[params.Email] = user
	return user, nil
}

type memoryTasks struct {
	services.TaskService
	tasks map[string]*models.Task
	order []string
}

func (m *memoryTasks) CreateTask(_ context.Context, actor services.Actor, params services.CreateTaskParams) (*models.Task, error) {
	id := fmt.Sprintf("task-%d", len(m.tasks)+1)
	task := &models.Task{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
		Status:      models.StatusTodo,
		UserID:      actor.UserID,
	}
	m.tasks[id] = task
	m.order = append(m.order, id)
	return task, nil
}

func (m *memoryTasks) UpdateTask(_ context.Context, _ services.Actor, id string, patch models.TaskPatch) (*models.Task, error) {
	updated := patch.Apply(*m.tasks[id])
	m.tasks[id] = &updated
	return &updated, nil
}

func defaultSeedConfig() config.SeedConfig {
	return config.SeedConfig{
		Enabled:       true,
		AdminEmail:    "admin@sprintsync.com",
		AdminPassword: "admin123",
		AdminFullName: "Admin User",
		DemoEmail:     "demo@sprintsync.com",
		DemoPassword:  "demo123",
		DemoFullName:  "Demo User",
	}
}

func TestSeed(t *testing.T) {
	users := &memoryUsers{byEmail: map[string]*models.User{}}
	tasks := &memoryTasks{tasks: map[string]*models.Task{}}
	s := &seeder{logger: zerolog.Nop(), users: users, tasks: tasks}

	require.NoError(t, s.seed(context.Background(), defaultSeedConfig()))

	require.Len(t, users.byEmail, 2)
	assert.True(t, users.byEmail["admin@sprintsync.com"].IsAdmin)
	assert.False(t, users.byEmail["demo@sprintsync.com"].IsAdmin)

	require.Len(t, tasks.tasks, len(adminSeedTasks)+len(demoSeedTasks))
	first := tasks.tasks[tasks.order[0]]
	assert.Equal(t, "Set up CI/CD pipeline", first.Title)
	assert.Equal(t, models.StatusInProgress, first.Status)
	assert.Equal(t, 120, first.TotalMinutes)

	demoMinutes := 0
	demoID := users.byEmail["demo@sprintsync.com"].ID
	for _, task := range tasks.tasks {
		if task.UserID == demoID {
			demoMinutes += task.TotalMinutes
		}
	}
	assert.Equal(t, 405, demoMinutes)
}

func TestSeed_Idempotent(t *testing.T) {
	users := &memoryUsers{byEmail: map[string]*models.User{}}
	tasks := &memoryTasks{tasks: map[string]*models.Task{}}
	s := &seeder{logger: zerolog.Nop(), users: users, tasks: tasks}

	require.NoError(t, s.seed(context.Background(), defaultSeedConfig()))
	require.NoError(t, s.seed(context.Background(), defaultSeedConfig()))

	assert.Len(t, users.byEmail, 2)
	assert.Len(t, tasks.tasks, len(adminSeedTasks)+len(demoSeedTasks))
}
