package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	db     DB
}

func NewUserService(
	logger zerolog.Logger,
	db DB,
) UserService {
	return &userServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := selectUser(ctx, s.db, "id", userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn().
				Str("user_id", userID).
				Msg("user not found")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("selected user by id")
	return user, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	const selectUsersQuery = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at
`
	rows, err := s.db.Query(ctx, selectUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := new(models.User)
		err = rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.IsAdmin,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user")
			return nil, err
		}
		users = append(users, user)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(users)).
		Msg("listed users")
	return users, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	user, err := insertUser(ctx, s.db, params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Bool("is_admin", user.IsAdmin).
		Msg("created user")
	return user, nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return s.GetUserByID(ctx, userID)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if v, ok := patch.Email.Get(); ok {
		add("email", normalizeEmail(v))
	}
	if v, ok := patch.FullName.Get(); ok {
		add("full_name", strings.TrimSpace(v))
	}
	if v, ok := patch.Password.Get(); ok {
		hash, err := argon2id.CreateHash(v, argon2id.DefaultParams)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to hash password")
			return nil, err
		}
		add("password_hash", hash)
	}
	if v, ok := patch.IsAdmin.Get(); ok {
		add("is_admin", v)
	}
	if len(sets) == 0 {
		// Only explicit nulls were sent and no user column is nullable.
		return nil, ErrNothingToUpdate
	}
	add("updated_at", time.Now().UTC())
	args = append(args, userID)

	query := `
UPDATE users
SET ` + strings.Join(sets, ",\n    ") + `
WHERE id = $` + fmt.Sprint(len(args)) + `
RETURNING ` + userColumns

	user := new(models.User)
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.IsAdmin,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}
		if isNoRows(err) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to update user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("updated user")
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		s.logger.Error().
			Str("user_id", userID).
			Msg("refusing to delete admin user")
		return ErrCannotDeleteAdmin
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const unassignTasksQuery = `
UPDATE tasks
SET assigned_to = NULL,
    updated_at = $1
WHERE assigned_to = $2
`
	tag, err := tx.Exec(ctx, unassignTasksQuery, time.Now().UTC(), userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to unassign tasks")
		return err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("unassigned tasks")

	const deleteTasksQuery = `
DELETE FROM tasks
WHERE user_id = $1
`
	tag, err = tx.Exec(ctx, deleteTasksQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete owned tasks")
		return err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted owned tasks")

	const deleteUserQuery = `
DELETE FROM users
WHERE id = $1
`
	tag, err = tx.Exec(ctx, deleteUserQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("deleted user")
	return nil
}
