package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulacrm/backend/pkg/models"
)

var permColumns = []string{"profile_id", "object_id", "field_id", "is_visible", "is_editable"}

func TestPermissionRepository_GetForProfileAndObject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPermissionRepository(db)

	rows := sqlmock.NewRows(permColumns).
		AddRow("standard_user", "obj-1", "field-1", true, true).
		AddRow("standard_user", "obj-1", "field-2", true, false)
	mock.ExpectQuery(`SELECT (.+) FROM _System_FieldPerms WHERE profile_id = \? AND object_id = \?`).
		WithArgs("standard_user", "obj-1").
		WillReturnRows(rows)

	perms, err := repo.GetForProfileAndObject(context.Background(), "standard_user", "obj-1")
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.True(t, perms[0].IsEditable)
	assert.False(t, perms[1].IsEditable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepository_GetMissingTupleReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPermissionRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM _System_FieldPerms WHERE profile_id = \? AND field_id = \?`).
		WithArgs("standard_user", "field-unknown").
		WillReturnRows(sqlmock.NewRows(permColumns))

	perm, err := repo.Get(context.Background(), "standard_user", "field-unknown")
	require.NoError(t, err)
	assert.Nil(t, perm)
}

func TestPermissionRepository_UpsertWritesBothFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPermissionRepository(db)

	mock.ExpectExec("INSERT INTO _System_FieldPerms").
		WithArgs("standard_user", "obj-1", "field-1", true, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), db,
		models.NewFieldPermission("standard_user", "obj-1", "field-1", true, false))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepository_DeleteForField(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPermissionRepository(db)

	mock.ExpectExec(`DELETE FROM _System_FieldPerms WHERE field_id = \?`).
		WithArgs("field-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteForField(context.Background(), db, "field-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
