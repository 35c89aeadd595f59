package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

// newMockServices wires the full service graph over a sqlmock connection
func newMockServices(t *testing.T) (sqlmock.Sqlmock, *ServiceManager) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	return mock, NewServiceManager(database.NewFromDB(db))
}

// adminUser returns a system administrator session for testing
func adminUser() *models.UserSession {
	return &models.UserSession{
		ID:            "user-admin",
		OrgID:         "org-1",
		Name:          "Admin User",
		ProfileID:     constants.ProfileSystemAdmin,
		IsSystemAdmin: true,
	}
}

// standardUser returns a non-admin session for testing
func standardUser() *models.UserSession {
	return &models.UserSession{
		ID:        "user-std",
		OrgID:     "org-1",
		Name:      "Standard User",
		ProfileID: constants.ProfileStandardUser,
	}
}

var testObjectColumns = []string{
	"id", "org_id", "api_name", "label", "plural_label",
	"description", "icon", "color", "sharing_model",
	"has_activities", "has_notes", "has_attachments", "has_record_types",
	"is_standard", "is_active", "created_date", "last_modified_date",
}

var testFieldColumns = []string{
	"id", "object_id", "api_name", "label", "data_type", "config",
	"is_required", "is_unique", "is_visible", "is_read_only",
	"is_standard", "is_name_field", "is_sensitive", "is_audited", "is_active",
	"help_text", "description", "display_order", "created_date", "last_modified_date",
}

// expectOrgLoad primes the queries the metadata cache runs on first access
// for an org holding one custom object with its standard name field.
func expectOrgLoad(mock sqlmock.Sqlmock, objectID, objectAPIName string) {
	expectOrgLoadWithField(mock, objectID, objectAPIName, "")
}

// expectOrgLoadWithField additionally seeds one custom text field
func expectOrgLoadWithField(mock sqlmock.Sqlmock, objectID, objectAPIName, fieldAPIName string) {
	now := time.Now()

	objRows := sqlmock.NewRows(testObjectColumns).AddRow(
		objectID, "org-1", objectAPIName, "Birth Plan", "Birth Plans",
		nil, "box", nil, string(constants.SharingModelPrivate),
		false, true, true, false,
		false, true, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM _System_Object WHERE org_id = \\?").
		WithArgs("org-1").WillReturnRows(objRows)

	fieldRows := sqlmock.NewRows(testFieldColumns).AddRow(
		"field-name", objectID, "name", "Birth Plan Name", string(constants.FieldTypeText), `{"text":{"max_length":255}}`,
		true, false, true, false,
		true, true, false, false, true,
		nil, nil, 1, now, now,
	)
	if fieldAPIName != "" {
		fieldRows.AddRow(
			"field-2", objectID, fieldAPIName, "Custom Field", string(constants.FieldTypeText), `{"text":{"max_length":255}}`,
			false, false, true, false,
			false, false, false, false, true,
			nil, nil, 2, now, now,
		)
	}
	mock.ExpectQuery("SELECT (.+) FROM _System_Field WHERE object_id = \\?").
		WithArgs(objectID).WillReturnRows(fieldRows)
}

// expectOrgLoadWithPicklist seeds a picklist field "status__c" holding one
// value per entry of values; the first value is flagged default.
func expectOrgLoadWithPicklist(mock sqlmock.Sqlmock, objectID, objectAPIName string, values ...string) {
	now := time.Now()

	objRows := sqlmock.NewRows(testObjectColumns).AddRow(
		objectID, "org-1", objectAPIName, "Birth Plan", "Birth Plans",
		nil, "box", nil, string(constants.SharingModelPrivate),
		false, true, true, false,
		false, true, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM _System_Object WHERE org_id = \\?").
		WithArgs("org-1").WillReturnRows(objRows)

	fieldRows := sqlmock.NewRows(testFieldColumns).
		AddRow(
			"field-name", objectID, "name", "Birth Plan Name", string(constants.FieldTypeText), `{"text":{"max_length":255}}`,
			true, false, true, false,
			true, true, false, false, true,
			nil, nil, 1, now, now,
		).
		AddRow(
			"field-status", objectID, "status__c", "Status", string(constants.FieldTypePicklist), `{}`,
			false, false, true, false,
			false, false, false, false, true,
			nil, nil, 2, now, now,
		)
	mock.ExpectQuery("SELECT (.+) FROM _System_Field WHERE object_id = \\?").
		WithArgs(objectID).WillReturnRows(fieldRows)

	valueRows := sqlmock.NewRows([]string{
		"id", "field_id", "value", "label", "display_order",
		"is_default", "is_active", "color", "controlling_field_id", "controlling_values",
	})
	for i, v := range values {
		valueRows.AddRow("pv-"+v, "field-status", v, v, i+1, i == 0, true, nil, nil, nil)
	}
	mock.ExpectQuery("SELECT (.+) FROM _System_PicklistValue WHERE field_id = \\?").
		WithArgs("field-status").WillReturnRows(valueRows)
}
