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

// FieldRepository persists FieldDefinition rows
type FieldRepository struct {
	db *sql.DB
}

// NewFieldRepository creates a new FieldRepository
func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

var fieldColumns = []string{
	"id",
	"object_id",
	"api_name",
	"label",
	"data_type",
	"config",
	"is_required",
	"is_unique",
	"is_visible",
	"is_read_only",
	"is_standard",
	"is_name_field",
	"is_sensitive",
	"is_audited",
	"is_active",
	"help_text",
	"description",
	"display_order",
	"created_date",
	"last_modified_date",
}

func fieldColumnList() string {
	return strings.Join(fieldColumns, ", ")
}

func scanField(row interface{ Scan(dest ...interface{}) error }) (*models.FieldDefinition, error) {
	var f models.FieldDefinition
	var helpText, description sql.NullString
	err := row.Scan(
		&f.ID, &f.ObjectID, &f.APIName, &f.Label, &f.DataType, &f.Config,
		&f.IsRequired, &f.IsUnique, &f.IsVisible, &f.IsReadOnly,
		&f.IsStandard, &f.IsNameField, &f.IsSensitive, &f.IsAudited, &f.IsActive,
		&helpText, &description, &f.DisplayOrder,
		&f.CreatedDate, &f.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	if helpText.Valid {
		f.HelpText = &helpText.String
	}
	if description.Valid {
		f.Description = &description.String
	}
	return &f, nil
}

// Insert persists a new field definition through the given executor
func (r *FieldRepository) Insert(ctx context.Context, exec Executor, field *models.FieldDefinition) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableField, fieldColumnList())

	_, err := exec.ExecContext(ctx, query,
		field.ID, field.ObjectID, field.APIName, field.Label, field.DataType, field.Config,
		field.IsRequired, field.IsUnique, field.IsVisible, field.IsReadOnly,
		field.IsStandard, field.IsNameField, field.IsSensitive, field.IsAudited, field.IsActive,
		field.HelpText, field.Description, field.DisplayOrder,
	)
	if isDuplicateKey(err) {
		return apperrors.NewConflictError("Field", "api_name", field.APIName)
	}
	if err != nil {
		return fmt.Errorf("failed to insert field definition: %w", err)
	}
	return nil
}

// GetByID returns one field definition, or nil when absent
func (r *FieldRepository) GetByID(ctx context.Context, id string) (*models.FieldDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", fieldColumnList(), constants.TableField)
	field, err := scanField(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan field: %w", err)
	}
	return field, nil
}

// GetForObject returns the ordered field definitions of one object
func (r *FieldRepository) GetForObject(ctx context.Context, objectID string) ([]models.FieldDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE object_id = ? ORDER BY display_order ASC",
		fieldColumnList(), constants.TableField)

	rows, err := r.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	var fields []models.FieldDefinition
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan field row: %w", err)
		}
		fields = append(fields, *f)
	}
	return fields, rows.Err()
}

// ExistsByAPIName reports whether an api name is taken on an object
func (r *FieldRepository) ExistsByAPIName(ctx context.Context, objectID, apiName string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE object_id = ? AND api_name = ?)", constants.TableField)
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, objectID, strings.ToLower(apiName)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check field api name: %w", err)
	}
	return exists, nil
}

// CountForObject returns the number of fields on an object
func (r *FieldRepository) CountForObject(ctx context.Context, objectID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE object_id = ?", constants.TableField)
	var count int
	if err := r.db.QueryRowContext(ctx, query, objectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fields: %w", err)
	}
	return count, nil
}

// Update persists the mutable properties of a field definition.
// data_type, api_name and config are deliberately not part of the statement.
func (r *FieldRepository) Update(ctx context.Context, exec Executor, field *models.FieldDefinition) error {
	query := fmt.Sprintf(`UPDATE %s SET
		label = ?, help_text = ?, description = ?,
		is_required = ?, is_visible = ?, is_sensitive = ?, is_audited = ?,
		display_order = ?, last_modified_date = NOW()
		WHERE id = ?`, constants.TableField)

	result, err := exec.ExecContext(ctx, query,
		field.Label, field.HelpText, field.Description,
		field.IsRequired, field.IsVisible, field.IsSensitive, field.IsAudited,
		field.DisplayOrder, field.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update field definition: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Field", field.ID)
	}
	return nil
}

// SetActive flips the is_active flag on a field
func (r *FieldRepository) SetActive(ctx context.Context, exec Executor, id string, active bool) error {
	query := fmt.Sprintf("UPDATE %s SET is_active = ?, last_modified_date = NOW() WHERE id = ?", constants.TableField)
	result, err := exec.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update field active flag: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Field", id)
	}
	return nil
}
