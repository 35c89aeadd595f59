package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulacrm/backend/pkg/auth"
	apperrors "github.com/doulacrm/backend/pkg/errors"
)

var userColumns = []string{"id", "org_id", "name", "email", "password_hash", "profile_id", "is_active"}

func expectUserByEmail(mock sqlmock.Sqlmock, email, passwordHash, profileID string, active bool) {
	rows := sqlmock.NewRows(userColumns).
		AddRow("user-1", "org-1", "Ada", email, passwordHash, profileID, active)
	mock.ExpectQuery(`SELECT (.+) FROM _System_User WHERE email = \? LIMIT 1`).
		WithArgs(email).
		WillReturnRows(rows)
}

func TestAuthService_Login(t *testing.T) {
	mock, sm := newMockServices(t)

	hash, err := auth.HashPassword("Sunflower42!")
	require.NoError(t, err)
	expectUserByEmail(mock, "ada@doulacrm.local", hash, "system_admin", true)

	result, err := sm.Auth.Login(context.Background(), "  Ada@DoulaCRM.local ", "Sunflower42!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-1", result.User.ID)
	assert.True(t, result.User.IsSystemAdmin)

	claims, err := auth.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "org-1", claims.User.OrgID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mock, sm := newMockServices(t)

	hash, err := auth.HashPassword("Sunflower42!")
	require.NoError(t, err)
	expectUserByEmail(mock, "ada@doulacrm.local", hash, "standard_user", true)

	_, err = sm.Auth.Login(context.Background(), "ada@doulacrm.local", "wrong")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	mock, sm := newMockServices(t)

	mock.ExpectQuery(`SELECT (.+) FROM _System_User WHERE email = \? LIMIT 1`).
		WithArgs("ghost@doulacrm.local").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := sm.Auth.Login(context.Background(), "ghost@doulacrm.local", "whatever")
	assert.True(t, apperrors.IsUnauthorized(err), "unknown email must look like a bad password, got %v", err)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	mock, sm := newMockServices(t)

	hash, err := auth.HashPassword("Sunflower42!")
	require.NoError(t, err)
	expectUserByEmail(mock, "ada@doulacrm.local", hash, "standard_user", false)

	_, err = sm.Auth.Login(context.Background(), "ada@doulacrm.local", "Sunflower42!")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthService_Login_MissingCredentials(t *testing.T) {
	_, sm := newMockServices(t)

	_, err := sm.Auth.Login(context.Background(), "", "secret")
	assert.True(t, apperrors.IsValidation(err))

	_, err = sm.Auth.Login(context.Background(), "ada@doulacrm.local", "")
	assert.True(t, apperrors.IsValidation(err))
}
