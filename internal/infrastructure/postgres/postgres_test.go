package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var userCols = []string{"id", "email", "password_hash", "name", "profile_picture", "is_email_verified", "last_login", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ann@example.com", "hash", "Ann", "", false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	u := &entity.User{Email: "  Ann@Example.com ", Password: "hash", Name: "Ann"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ann@example.com", "hash", "Ann", "", false).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &entity.User{Email: "ann@example.com", Password: "hash", Name: "Ann"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("ann@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u-1", "ann@example.com", "hash", "Ann", "", true, nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, u.IsEmailVerified)
	assert.Nil(t, u.LastLogin)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Updates(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE users SET is_email_verified = TRUE").
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("new-hash", "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(at, "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users").
		WithArgs("Ann B", "https://img", pgxmock.AnyArg(), "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SetVerified(ctx, "u-1"))
	require.NoError(t, repo.UpdatePassword(ctx, "u-1", "new-hash"))
	require.NoError(t, repo.UpdateLastLogin(ctx, "u-1", at))

	err := repo.Update(ctx, &entity.User{ID: "u-1", Name: "Ann B", ProfilePicture: "https://img"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ExecError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("h", "u-1").
		WillReturnError(errors.New("conn reset"))

	err := repo.UpdatePassword(context.Background(), "u-1", "h")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

var tokenCols = []string{"id", "user_id", "token", "purpose", "expires_at", "created_at"}

func TestVerificationRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	mock.ExpectQuery("INSERT INTO verification_tokens").
		WithArgs("u-1", "tok", "reset-password", exp).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("v-1", now))

	v := &entity.VerificationToken{UserID: "u-1", Token: "tok", Purpose: entity.PurposeResetPassword, ExpiresAt: exp}
	require.NoError(t, repo.Create(context.Background(), v))
	assert.Equal(t, "v-1", v.ID)
}

func TestVerificationRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)
	exp := time.Now().Add(time.Hour)

	mock.ExpectQuery("INSERT INTO verification_tokens").
		WithArgs("u-1", "tok", "email-verification", exp).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "verification_tokens_user_purpose_key"})

	v := &entity.VerificationToken{UserID: "u-1", Token: "tok", Purpose: entity.PurposeEmailVerification, ExpiresAt: exp}
	assert.ErrorIs(t, repo.Create(context.Background(), v), repository.ErrDuplicate)
}

func TestVerificationRepository_Find(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM verification_tokens WHERE user_id = \\$1 AND purpose = \\$2").
		WithArgs("u-1", "email-verification").
		WillReturnRows(pgxmock.NewRows(tokenCols).AddRow("v-1", "u-1", "tok", "email-verification", now, now))
	mock.ExpectQuery("SELECT (.+) FROM verification_tokens WHERE user_id = \\$1 AND token = \\$2").
		WithArgs("u-1", "other").
		WillReturnError(pgx.ErrNoRows)

	v, err := repo.FindByUserAndPurpose(ctx, "u-1", entity.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, entity.PurposeEmailVerification, v.Purpose)
	assert.Equal(t, "tok", v.Token)

	_, err = repo.FindByUserAndToken(ctx, "u-1", "other")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVerificationRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)

	mock.ExpectExec("DELETE FROM verification_tokens").
		WithArgs("v-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), "v-1"))
}

func TestVerificationRepository_Consume(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM verification_tokens").
		WithArgs("v-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM verification_tokens").
		WithArgs("v-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM verification_tokens").
		WithArgs("v-2").
		WillReturnError(errors.New("conn reset"))

	ok, err := repo.Consume(ctx, "v-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "v-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Consume(ctx, "v-2")
	assert.ErrorContains(t, err, "consume verification token")
}
