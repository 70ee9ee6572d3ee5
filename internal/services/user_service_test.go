package services

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/sprintsync/internal/models"
)

func TestUserService_DeleteUser(t *testing.T) {
	mock := newMockPool(t)
	svc := NewUserService(zerolog.Nop(), mock)

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs("user-2").
		WillReturnRows(userRow("user-2", "demo@sprintsync.com", false, "hash"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks\s+SET assigned_to = NULL`).
		WithArgs(pgxmock.AnyArg(), "user-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs("user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec("DELETE FROM users").
		WithArgs("user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := svc.DeleteUser(context.Background(), "user-2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_DeleteUser_RefusesAdmin(t *testing.T) {
	mock := newMockPool(t)
	svc := NewUserService(zerolog.Nop(), mock)

	mock.ExpectQuery("FROM users").
		WithArgs("admin-1").
		WillReturnRows(userRow("admin-1", "admin@sprintsync.com", true, "hash"))

	err := svc.DeleteUser(context.Background(), "admin-1")
	assert.ErrorIs(t, err, ErrCannotDeleteAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateUser(t *testing.T) {
	mock := newMockPool(t)
	svc := NewUserService(zerolog.Nop(), mock)

	mock.ExpectQuery(`UPDATE users\s+SET full_name = \$1,\s+updated_at = \$2\s+WHERE id = \$3`).
		WithArgs("Demo Person", pgxmock.AnyArg(), "user-2").
		WillReturnRows(userRow("user-2", "demo@sprintsync.com", false, "hash"))

	user, err := svc.UpdateUser(context.Background(), "user-2", models.UserPatch{
		FullName: models.Set(" Demo Person "),
	})
	require.NoError(t, err)
	assert.Equal(t, "user-2", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateUser_EmailTaken(t *testing.T) {
	mock := newMockPool(t)
	svc := NewUserService(zerolog.Nop(), mock)

	mock.ExpectQuery("UPDATE users").
		WithArgs("admin@sprintsync.com", pgxmock.AnyArg(), "user-2").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := svc.UpdateUser(context.Background(), "user-2", models.UserPatch{
		Email: models.Set("Admin@sprintsync.com"),
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserService_UpdateUser_OnlyNulls(t *testing.T) {
	mock := newMockPool(t)
	svc := NewUserService(zerolog.Nop(), mock)

	_, err := svc.UpdateUser(context.Background(), "user-2", models.UserPatch{
		FullName: models.Null[string](),
	})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ListUsers(t *testing.T) {
	mock := newMockPool(t)
	svc := NewUserService(zerolog.Nop(), mock)

	mock.ExpectQuery(`FROM users\s+ORDER BY created_at`).
		WillReturnRows(userRow("admin-1", "admin@sprintsync.com", true, "hash"))

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}
