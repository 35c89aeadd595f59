package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulacrm/backend/internal/domain/wizard"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
)

func birthPlanDraft() wizard.ObjectDraft {
	return wizard.ObjectDraft{
		Label: "Birth Plan",
		Fields: []wizard.FieldDraft{
			{DataType: constants.FieldTypeDate, Label: "Due Date"},
			{
				DataType:       constants.FieldTypePicklist,
				Label:          "Status",
				PicklistValues: []string{"Draft", "Final"},
				DefaultValue:   "Draft",
			},
		},
	}
}

func TestMetadataService_CreateCustomObject(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("org-1", "birth_plan__c").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO _System_Object").WillReturnResult(sqlmock.NewResult(0, 1))
	// Name field plus the two drafted fields
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO _System_Field ").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	// Picklist values of the status field
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO _System_PicklistValue").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	// Default grants: admin and standard profile per field
	for i := 0; i < 6; i++ {
		mock.ExpectExec("INSERT INTO _System_FieldPerms").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO _System_AuditLog").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	obj, err := sm.Metadata.CreateCustomObject(context.Background(), admin, birthPlanDraft())
	require.NoError(t, err)

	assert.Equal(t, "birth_plan__c", obj.APIName)
	assert.Equal(t, "Birth Plans", obj.PluralLabel)
	assert.Equal(t, constants.SharingModelPrivate, obj.SharingModel)
	require.Len(t, obj.Fields, 3)
	assert.True(t, obj.Fields[0].IsNameField)
	assert.Equal(t, "due_date__c", obj.Fields[1].APIName)
	assert.Equal(t, 2, obj.Fields[1].DisplayOrder)
	require.Len(t, obj.Fields[2].PicklistValues, 2)
	assert.True(t, obj.Fields[2].PicklistValues[0].IsDefault)
	assert.False(t, obj.Fields[2].PicklistValues[1].IsDefault)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataService_CreateCustomObject_RollsBackOnFailure(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO _System_Object").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO _System_Field ").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO _System_Field ").WillReturnError(fmt.Errorf("connection lost"))
	mock.ExpectRollback()

	_, err := sm.Metadata.CreateCustomObject(context.Background(), admin, birthPlanDraft())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "a failed field insert must roll back everything")
}

func TestMetadataService_CreateCustomObject_ConflictingAPIName(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("org-1", "birth_plan__c").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := sm.Metadata.CreateCustomObject(context.Background(), admin, birthPlanDraft())
	assert.True(t, errors.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "a taken api name must prevent any write")
}

func TestMetadataService_CreateCustomObject_ValidatesBeforeWriting(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	draft := birthPlanDraft()
	draft.Label = ""

	_, err := sm.Metadata.CreateCustomObject(context.Background(), admin, draft)
	assert.True(t, errors.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "an invalid draft must not touch the database")
}

func TestMetadataService_CreateCustomObject_RequiresAdmin(t *testing.T) {
	mock, sm := newMockServices(t)

	_, err := sm.Metadata.CreateCustomObject(context.Background(), standardUser(), birthPlanDraft())
	assert.True(t, errors.IsPermission(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataService_CreateCustomObject_RejectsBadFormula(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	draft := birthPlanDraft()
	draft.Fields = append(draft.Fields, wizard.FieldDraft{
		DataType: constants.FieldTypeFormula,
		Label:    "Days Left",
		Config: fieldtypes.Config{Formula: &fieldtypes.FormulaConfig{
			Expression: "unknown_field__c * 2",
			ReturnType: constants.FieldTypeNumber,
		}},
	})

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := sm.Metadata.CreateCustomObject(context.Background(), admin, draft)
	assert.True(t, errors.IsValidation(err), "formula referencing unknown fields must fail before any write")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataService_CreateField(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	expectOrgLoad(mock, "obj-1", "birth_plan__c")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO _System_Field ").WillReturnResult(sqlmock.NewResult(0, 1))
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO _System_FieldPerms").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO _System_AuditLog").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	field, err := sm.Metadata.CreateField(context.Background(), admin, "birth_plan__c", wizard.FieldDraft{
		DataType: constants.FieldTypeText,
		Label:    "Hospital",
	})
	require.NoError(t, err)

	assert.Equal(t, "hospital__c", field.APIName)
	assert.Equal(t, 2, field.DisplayOrder, "display order appends after existing fields")
	assert.NotNil(t, field.Config.Text)
	assert.Equal(t, fieldtypes.DefaultTextMaxLength, field.Config.Text.MaxLength)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataService_CreateField_DuplicateName(t *testing.T) {
	mock, sm := newMockServices(t)
	admin := adminUser()

	expectOrgLoadWithField(mock, "obj-1", "birth_plan__c", "hospital__c")

	_, err := sm.Metadata.CreateField(context.Background(), admin, "birth_plan__c", wizard.FieldDraft{
		DataType: constants.FieldTypeText,
		Label:    "Hospital",
	})
	assert.True(t, errors.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "a duplicate field name must prevent any write")
}
