package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/sprintsync/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrCannotDeleteAdmin  = errors.New("cannot delete admin users")
	ErrTaskNotFound       = errors.New("task not found")
	ErrForbidden          = errors.New("not enough privileges")
	ErrNothingToUpdate    = errors.New("no fields to update")
	ErrInvalidPatch       = errors.New("invalid patch")
	ErrInvalidMinutes     = errors.New("minutes must be between 1 and 1440")
)

// MaxMinutesPerEntry caps a single time-log entry at one day.
const MaxMinutesPerEntry = 1440

// DB is the subset of *pgxpool.Pool the services use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type AuthService interface {
	// Register creates a regular user with the given credentials.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login checks the credentials and issues a signed access token.
	//
	// It returns ErrInvalidCredentials both for an unknown email and
	// for a wrong password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// IssueToken signs a fresh access token for an existing user.
	IssueToken(userID string) (*LoginResult, error)

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)

	// UpdateUser applies the present fields of the patch. Password is hashed.
	//
	// It returns ErrUserAlreadyExists if the new email belongs to someone else.
	UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error)

	// DeleteUser removes a user together with the tasks they own.
	//
	// It returns ErrCannotDeleteAdmin for admin accounts.
	DeleteUser(ctx context.Context, userID string) error
}

type TaskService interface {
	CreateTask(ctx context.Context, actor Actor, params CreateTaskParams) (*models.Task, error)

	// ListTasks returns the tasks the actor owns or is assigned, newest first.
	ListTasks(ctx context.Context, actor Actor, params ListTasksParams) ([]*models.Task, error)

	// ListAllTasks returns every task, newest first. Admin only.
	ListAllTasks(ctx context.Context, actor Actor) ([]*models.Task, error)

	GetTask(ctx context.Context, actor Actor, taskID string) (*models.Task, error)
	UpdateTask(ctx context.Context, actor Actor, taskID string, patch models.TaskPatch) (*models.Task, error)

	// UpdateTaskStatus sets the status directly, subject to the transition policy.
	UpdateTaskStatus(ctx context.Context, actor Actor, taskID string, status models.Status) (*models.Task, error)

	// AddTime adds minutes to the task's accumulated total.
	//
	// It returns ErrInvalidMinutes unless 0 < minutes <= MaxMinutesPerEntry.
	AddTime(ctx context.Context, actor Actor, taskID string, minutes int) (*models.Task, error)

	// AssignTask sets or clears the assignee. Admin only.
	AssignTask(ctx context.Context, actor Actor, taskID string, assignee *string) (*models.Task, error)

	DeleteTask(ctx context.Context, actor Actor, taskID string) error
}

type AIService interface {
	SuggestDescription(ctx context.Context, title string, context *string) *models.DescriptionSuggestion
	DailyPlan(ctx context.Context, user *models.User, tasks []*models.Task) *models.DailyPlan
}

type StatsService interface {
	UserSummary(ctx context.Context, userID string) (*models.UserSummary, error)
	TopUsers(ctx context.Context) ([]*models.UserStats, error)
	RecentActivity(ctx context.Context, userID string) (*models.RecentActivity, error)
}

type RegisterParams struct {
	Email    string
	Password string
	FullName string
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	User                 *models.User
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

type CreateUserParams struct {
	Email    string
	Password string
	FullName string
	IsAdmin  bool
}

type CreateTaskParams struct {
	Title       string
	Description *string
	AssignedTo  *string
}

type ListTasksParams struct {
	Status *models.Status
}
