package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/doulacrm/backend/pkg/errors"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

// ObjectRepository persists ObjectDefinition rows
type ObjectRepository struct {
	db *sql.DB
}

// NewObjectRepository creates a new ObjectRepository
func NewObjectRepository(db *sql.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

var objectColumns = []string{
	"id",
	"org_id",
	"api_name",
	"label",
	"plural_label",
	"description",
	"icon",
	"color",
	"sharing_model",
	"has_activities",
	"has_notes",
	"has_attachments",
	"has_record_types",
	"is_standard",
	"is_active",
	"created_date",
	"last_modified_date",
}

func objectColumnList() string {
	return strings.Join(objectColumns, ", ")
}

func scanObject(row interface{ Scan(dest ...interface{}) error }) (*models.ObjectDefinition, error) {
	var obj models.ObjectDefinition
	var description, color sql.NullString
	err := row.Scan(
		&obj.ID, &obj.OrgID, &obj.APIName, &obj.Label, &obj.PluralLabel,
		&description, &obj.Icon, &color, &obj.SharingModel,
		&obj.HasActivities, &obj.HasNotes, &obj.HasAttachments, &obj.HasRecordTypes,
		&obj.IsStandard, &obj.IsActive,
		&obj.CreatedDate, &obj.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		obj.Description = &description.String
	}
	if color.Valid {
		obj.Color = &color.String
	}
	obj.Fields = make([]models.FieldDefinition, 0)
	return &obj, nil
}

// Insert persists a new object definition through the given executor
func (r *ObjectRepository) Insert(ctx context.Context, exec Executor, obj *models.ObjectDefinition) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableObject, objectColumnList())

	_, err := exec.ExecContext(ctx, query,
		obj.ID, obj.OrgID, obj.APIName, obj.Label, obj.PluralLabel,
		obj.Description, obj.Icon, obj.Color, obj.SharingModel,
		obj.HasActivities, obj.HasNotes, obj.HasAttachments, obj.HasRecordTypes,
		obj.IsStandard, obj.IsActive,
	)
	if isDuplicateKey(err) {
		return apperrors.NewConflictError("Object", "api_name", obj.APIName)
	}
	if err != nil {
		return fmt.Errorf("failed to insert object definition: %w", err)
	}
	return nil
}

// GetByID returns one object definition without its fields, or nil when absent
func (r *ObjectRepository) GetByID(ctx context.Context, id string) (*models.ObjectDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", objectColumnList(), constants.TableObject)
	obj, err := scanObject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan object: %w", err)
	}
	return obj, nil
}

// GetByAPIName returns one object definition scoped to an organization
func (r *ObjectRepository) GetByAPIName(ctx context.Context, orgID, apiName string) (*models.ObjectDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE org_id = ? AND api_name = ?", objectColumnList(), constants.TableObject)
	obj, err := scanObject(r.db.QueryRowContext(ctx, query, orgID, strings.ToLower(apiName)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan object: %w", err)
	}
	return obj, nil
}

// ExistsByAPIName reports whether an api name is taken within an organization
func (r *ObjectRepository) ExistsByAPIName(ctx context.Context, orgID, apiName string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE org_id = ? AND api_name = ?)", constants.TableObject)
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, orgID, strings.ToLower(apiName)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check object api name: %w", err)
	}
	return exists, nil
}

// List returns all object definitions for an organization, standard first then
// by label
func (r *ObjectRepository) List(ctx context.Context, orgID string) ([]*models.ObjectDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE org_id = ? ORDER BY is_standard DESC, label ASC",
		objectColumnList(), constants.TableObject)

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var objects []*models.ObjectDefinition
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan object row: %w", err)
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

// UpdateSettings persists the mutable settings of an object definition.
// api_name and is_standard are deliberately not part of the statement.
func (r *ObjectRepository) UpdateSettings(ctx context.Context, exec Executor, obj *models.ObjectDefinition) error {
	query := fmt.Sprintf(`UPDATE %s SET
		label = ?, plural_label = ?, description = ?, icon = ?, color = ?,
		sharing_model = ?, has_activities = ?, has_notes = ?, has_attachments = ?,
		has_record_types = ?, last_modified_date = NOW()
		WHERE id = ?`, constants.TableObject)

	result, err := exec.ExecContext(ctx, query,
		obj.Label, obj.PluralLabel, obj.Description, obj.Icon, obj.Color,
		obj.SharingModel, obj.HasActivities, obj.HasNotes, obj.HasAttachments,
		obj.HasRecordTypes, obj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update object settings: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Object", obj.ID)
	}
	return nil
}

// SetActive flips the is_active flag, the documented deletion path
func (r *ObjectRepository) SetActive(ctx context.Context, exec Executor, id string, active bool) error {
	query := fmt.Sprintf("UPDATE %s SET is_active = ?, last_modified_date = NOW() WHERE id = ?", constants.TableObject)
	result, err := exec.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update object active flag: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Object", id)
	}
	return nil
}
