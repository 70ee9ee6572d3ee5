package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/config"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

const seedTimeout = 30 * time.Second

type seedTask struct {
	title        string
	description  string
	status       models.Status
	totalMinutes int
}

var adminSeedTasks = []seedTask{
	{
		title:        "Set up CI/CD pipeline",
		description:  "Configure automated testing and deployment pipeline for the SprintSync project. Include unit tests, integration tests, and automated deployment to staging and production environments.",
		status:       models.StatusInProgress,
		totalMinutes: 120,
	},
	{
		title:       "Review Q4 team performance",
		description: "Conduct quarterly performance reviews for all team members. Prepare feedback, set goals for next quarter, and schedule one-on-one meetings.",
		status:      models.StatusTodo,
	},
	{
		title:        "Update project documentation",
		description:  "Review and update all project documentation including API docs, deployment guides, and team onboarding materials.",
		status:       models.StatusDone,
		totalMinutes: 180,
	},
}

var demoSeedTasks = []seedTask{
	{
		title:        "Implement user authentication",
		description:  "Build JWT-based authentication system with login, logout, and token refresh functionality. Include password hashing and security best practices.",
		status:       models.StatusDone,
		totalMinutes: 240,
	},
	{
		title:        "Design task management UI",
		description:  "Create responsive components for task listing, creation, and editing. Focus on clean UX and mobile-friendly design.",
		status:       models.StatusInProgress,
		totalMinutes: 90,
	},
	{
		title:       "Integrate OpenAI API",
		description: "Implement AI-powered task suggestions and daily planning features using OpenAI GPT-4 API.",
		status:      models.StatusTodo,
	},
	{
		title:       "Write unit tests",
		description: "Create comprehensive unit tests for all API endpoints and core business logic. Achieve minimum 80% code coverage.",
		status:      models.StatusTodo,
	},
	{
		title:        "Optimize database queries",
		description:  "Review and optimize slow database queries. Add proper indexes and implement query result caching where appropriate.",
		status:       models.StatusDone,
		totalMinutes: 75,
	},
}

type seeder struct {
	logger zerolog.Logger
	users  services.UserService
	tasks  services.TaskService
}

// seed creates the admin and demo accounts with their tasks. An account that
// already exists is left untouched together with its tasks.
func (s *seeder) seed(ctx context.Context, cfg config.SeedConfig) error {
	accounts := []struct {
		params services.CreateUserParams
		tasks  []seedTask
	}{
		{
			params: services.CreateUserParams{
				Email:    cfg.AdminEmail,
				Password: cfg.AdminPassword,
				FullName: cfg.AdminFullName,
				IsAdmin:  true,
			},
			tasks: adminSeedTasks,
		},
		{
			params: services.CreateUserParams{
				Email:    cfg.DemoEmail,
				Password: cfg.DemoPassword,
				FullName: cfg.DemoFullName,
			},
			tasks: demoSeedTasks,
		},
	}

	for _, account := range accounts {
		user, err := s.users.CreateUser(ctx, account.params)
		if err != nil {
			if errors.Is(err, services.ErrUserAlreadyExists) {
				s.logger.Info().
					Str("email", account.params.Email).
					Msg("seed user already exists, skipping")
				continue
			}
			return err
		}

		actor := services.Actor{UserID: user.ID, IsAdmin: user.IsAdmin}
		for _, st := range account.tasks {
			err = s.seedTask(ctx, actor, st)
			if err != nil {
				return err
			}
		}
		s.logger.Info().
			Str("user_id", user.ID).
			Int("tasks", len(account.tasks)).
			Msg("seeded user")
	}
	return nil
}

func (s *seeder) seedTask(ctx context.Context, actor services.Actor, st seedTask) error {
	description := st.description
	task, err := s.tasks.CreateTask(ctx, actor, services.CreateTaskParams{
		Title:       st.title,
		Description: &description,
	})
	if err != nil {
		return err
	}

	var patch models.TaskPatch
	if st.status != models.StatusTodo {
		patch.Status = models.Set(st.status)
	}
	if st.totalMinutes > 0 {
		patch.TotalMinutes = models.Set(st.totalMinutes)
	}
	if patch.Empty() {
		return nil
	}
	_, err = s.tasks.UpdateTask(ctx, actor, task.ID, patch)
	return err
}

func MustSeedDemoData() {
	cfg := config.Global()
	if !cfg.Seed.Enabled {
		return
	}

	logger := componentLogger("seed")
	s := &seeder{
		logger: logger,
		users:  services.NewUserService(logger, globalPostgresPool),
		// Seeded statuses are written directly, whatever policy the API enforces.
		tasks: services.NewTaskService(logger, globalPostgresPool, models.FreePolicy{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	err := s.seed(ctx, cfg.Seed)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to seed demo data")
		panic(err)
	}
	globalLogger.Info().Msg("seeded demo data")
}
