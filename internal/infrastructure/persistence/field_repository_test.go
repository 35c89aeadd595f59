package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/doulacrm/backend/pkg/constants"
	apperrors "github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/models"
)

func fieldRows() *sqlmock.Rows {
	return sqlmock.NewRows(fieldColumns)
}

func addFieldRow(rows *sqlmock.Rows, id, apiName string, dataType constants.FieldDataType, order int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "obj-1", apiName, apiName, string(dataType), `{}`,
		false, false, true, false,
		false, false, false, false, true,
		nil, nil, order,
		now, now,
	)
}

func TestFieldRepository_GetForObject_Ordered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	rows := fieldRows()
	addFieldRow(rows, "fld-1", "name", constants.FieldTypeText, 1)
	addFieldRow(rows, "fld-2", "due_date__c", constants.FieldTypeDate, 2)
	addFieldRow(rows, "fld-3", "status__c", constants.FieldTypePicklist, 3)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE object_id = ? ORDER BY display_order ASC",
		fieldColumnList(), constants.TableField)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("obj-1").WillReturnRows(rows)

	fields, err := repo.GetForObject(context.Background(), "obj-1")
	assert.NoError(t, err)
	assert.Len(t, fields, 3)
	for i, f := range fields {
		assert.Equal(t, i+1, f.DisplayOrder)
	}
}

func TestFieldRepository_ExistsByAPIName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE object_id = ? AND api_name = ?)", constants.TableField)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("obj-1", "due_date__c").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByAPIName(context.Background(), "obj-1", "due_date__c")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestFieldRepository_Insert_DuplicateAPIName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	mock.ExpectExec("INSERT INTO "+constants.TableField).
		WillReturnError(fmt.Errorf("Error 1062 (23000): Duplicate entry 'obj-1-due_date__c' for key 'uq_field_api_name'"))

	field := &models.FieldDefinition{
		ID: "fld-9", ObjectID: "obj-1", APIName: "due_date__c",
		Label: "Due Date", DataType: constants.FieldTypeDate, DisplayOrder: 4,
	}
	err = repo.Insert(context.Background(), db, field)
	assert.True(t, apperrors.IsConflict(err), "duplicate key must map to ConflictError, got %v", err)
}

func TestFieldRepository_ConfigRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	rows := fieldRows()
	now := time.Now()
	rows.AddRow(
		"fld-1", "obj-1", "partner__c", "Partner", string(constants.FieldTypeLookup),
		`{"lookup":{"related_object_id":"obj-2","related_object_api_name":"referral_partner","related_display_field":"name"}}`,
		false, false, true, false,
		false, false, false, false, true,
		nil, nil, 5,
		now, now,
	)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", fieldColumnList(), constants.TableField)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("fld-1").WillReturnRows(rows)

	field, err := repo.GetByID(context.Background(), "fld-1")
	assert.NoError(t, err)
	assert.NotNil(t, field)
	assert.NotNil(t, field.Config.Lookup)
	assert.Equal(t, "obj-2", field.Config.Lookup.RelatedObjectID)
	assert.Equal(t, "referral_partner", field.Config.Lookup.RelatedObjectAPIName)
}

func TestFieldRepository_CountForObject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE object_id = ?", constants.TableField)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("obj-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForObject(context.Background(), "obj-1")
	assert.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestFieldRepository_Update_TouchesOnlyMutableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	help := "Pick the planned location"
	field := &models.FieldDefinition{
		ID: "fld-2", ObjectID: "obj-1", APIName: "birth_location__c",
		Label: "Birth Location", DataType: constants.FieldTypePicklist,
		HelpText: &help, IsRequired: true, IsVisible: true,
		IsSensitive: false, IsAudited: true, DisplayOrder: 3,
	}

	// The parameter list carries only the mutable columns; api_name,
	// data_type and config stay out of the statement entirely.
	mock.ExpectExec("UPDATE "+constants.TableField+" SET").
		WithArgs(
			"Birth Location", &help, nil,
			true, true, false, true,
			3, "fld-2",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), db, field)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldRepository_Update_MissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFieldRepository(db)

	mock.ExpectExec("UPDATE " + constants.TableField + " SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), db, &models.FieldDefinition{ID: "fld-gone", Label: "Gone"})
	assert.True(t, apperrors.IsNotFound(err), "updating an absent field must map to NotFoundError, got %v", err)
}
