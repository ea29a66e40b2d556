package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"biblioteca_backend/internals/constants"
	authHelper "biblioteca_backend/internals/features/users/auth/helper"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var userCols = []string{
	"user_id", "user_name", "user_email", "user_password", "user_full_name",
	"user_roles", "user_google_id", "user_is_active", "user_registered_at", "user_updated_at",
}

var testSettings = helperAuth.TokenSettings{Secret: "test-secret", Issuer: "biblioteca", Audience: "biblioteca-clients", TTL: time.Hour}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	svc := NewService(db)
	svc.Settings = func() helperAuth.TokenSettings { return testSettings }
	svc.Google = nil
	return svc, mock
}

func userRow(id uuid.UUID, name, password string, active bool) *sqlmock.Rows {
	hash, _ := authHelper.HashPassword(password)
	return sqlmock.NewRows(userCols).AddRow(
		id.String(), name, name+"@example.com", hash, "Nombre "+name,
		"{Lector}", nil, active, time.Now(), time.Now(),
	)
}

func TestRegisterAssignsReaderRole(t *testing.T) {
	svc, mock := newMockService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE LOWER\(user_name\) = \$1 OR LOWER\(user_email\) = \$2`).
		WithArgs("ana", "ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "users" .* RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_roles"}).AddRow(id.String(), "{Lector}"))

	u, err := svc.Register(context.Background(), RegisterInput{
		UserName: " ana ", Email: "Ana@Example.com", Password: "secreto1", FullName: "Ana Pérez",
	})
	require.NoError(t, err)
	assert.Equal(t, id, u.UserID)
	assert.True(t, u.HasRole(constants.RoleReader))
	assert.False(t, u.HasRole(constants.RoleAdministrator))
	assert.NotEqual(t, "secreto1", u.UserPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicate(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := svc.Register(context.Background(), RegisterInput{UserName: "ana", Email: "a@b.c", Password: "secreto1"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 400, helper.StatusFromError(err))
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.Register(context.Background(), RegisterInput{UserName: "ana", Email: "a@b.c", Password: "123"})
	assert.Equal(t, 400, helper.StatusFromError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginIssuesToken(t *testing.T) {
	svc, mock := newMockService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(user_name\) = \$1 OR LOWER\(user_email\) = \$2`).
		WithArgs("lector1", "lector1", 1).
		WillReturnRows(userRow(id, "lector1", "secreto1", true))

	res, err := svc.Login(context.Background(), "Lector1", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, "lector1", res.UserName)
	assert.Equal(t, []string{"Lector"}, res.Roles)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.Expiration, time.Minute)

	claims, err := helperAuth.ParseAccessToken(testSettings, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "lector1", claims.UniqueName)
}

func TestLoginFailures(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows(userCols))
		_, err := svc.Login(context.Background(), "nadie", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("wrong password", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRow(uuid.New(), "ana", "secreto1", true))
		_, err := svc.Login(context.Background(), "ana", "otra")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 401, helper.StatusFromError(err))
	})
	t.Run("inactive", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRow(uuid.New(), "ana", "secreto1", false))
		_, err := svc.Login(context.Background(), "ana", "secreto1")
		assert.ErrorIs(t, err, ErrUserInactive)
		assert.Equal(t, 401, helper.StatusFromError(err))
	})
}

type fakeGoogle struct {
	ident *GoogleIdentity
	err   error
}

func (f fakeGoogle) Verify(string) (*GoogleIdentity, error) { return f.ident, f.err }

func TestLoginGoogleCreatesReader(t *testing.T) {
	svc, mock := newMockService(t)
	svc.Google = fakeGoogle{ident: &GoogleIdentity{Sub: "1234567890", Email: "Maria@Gmail.com", Name: "María"}}
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE user_google_id = \$1`).WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(user_name\) = \$1`).WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(`INSERT INTO "users" .* RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_roles"}).AddRow(id.String(), "{Lector}"))

	res, err := svc.LoginGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "maria_34567890", res.UserName)
	assert.Equal(t, []string{"Lector"}, res.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginGoogleRejectsBadToken(t *testing.T) {
	svc, _ := newMockService(t)
	svc.Google = fakeGoogle{err: errors.New("bad signature")}

	_, err := svc.LoginGoogle(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)
}

func TestLoginGoogleDisabled(t *testing.T) {
	svc, _ := newMockService(t)
	_, err := svc.LoginGoogle(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	svc, mock := newMockService(t)
	raw, _, err := helperAuth.IssueAccessToken(testSettings, uuid.New(), "ana", []string{"Lector"}, time.Now())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO token_blacklist`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Logout(context.Background(), raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutInvalidToken(t *testing.T) {
	svc, _ := newMockService(t)
	err := svc.Logout(context.Background(), "not-a-jwt")
	assert.Equal(t, 401, helper.StatusFromError(err))
}
