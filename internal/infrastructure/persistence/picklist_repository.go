package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/doulacrm/backend/pkg/errors"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

// PicklistRepository persists PicklistValue rows
type PicklistRepository struct {
	db *sql.DB
}

// NewPicklistRepository creates a new PicklistRepository
func NewPicklistRepository(db *sql.DB) *PicklistRepository {
	return &PicklistRepository{db: db}
}

var picklistColumns = []string{
	"id",
	"field_id",
	"value",
	"label",
	"display_order",
	"is_default",
	"is_active",
	"color",
	"controlling_field_id",
	"controlling_values",
}

func picklistColumnList() string {
	return strings.Join(picklistColumns, ", ")
}

func scanPicklistValue(row interface{ Scan(dest ...interface{}) error }) (*models.PicklistValue, error) {
	var v models.PicklistValue
	var color, controllingFieldID, controllingValues sql.NullString
	err := row.Scan(
		&v.ID, &v.FieldID, &v.Value, &v.Label, &v.DisplayOrder,
		&v.IsDefault, &v.IsActive, &color, &controllingFieldID, &controllingValues,
	)
	if err != nil {
		return nil, err
	}
	if color.Valid {
		v.Color = &color.String
	}
	if controllingFieldID.Valid {
		v.ControllingFieldID = &controllingFieldID.String
	}
	if controllingValues.Valid && controllingValues.String != "" {
		if err := json.Unmarshal([]byte(controllingValues.String), &v.ControllingValues); err != nil {
			log.Printf("⚠️ Failed to unmarshal controlling values for picklist value %s: %v", v.ID, err)
		}
	}
	return &v, nil
}

// Insert persists a new picklist value through the given executor
func (r *PicklistRepository) Insert(ctx context.Context, exec Executor, value *models.PicklistValue) error {
	var controllingValues interface{}
	if len(value.ControllingValues) > 0 {
		data, err := json.Marshal(value.ControllingValues)
		if err != nil {
			return fmt.Errorf("failed to marshal controlling values: %w", err)
		}
		controllingValues = string(data)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TablePicklistValue, picklistColumnList())

	_, err := exec.ExecContext(ctx, query,
		value.ID, value.FieldID, value.Value, value.Label, value.DisplayOrder,
		value.IsDefault, value.IsActive, value.Color, value.ControllingFieldID, controllingValues,
	)
	if isDuplicateKey(err) {
		return apperrors.NewConflictError("Picklist value", "value", value.Value)
	}
	if err != nil {
		return fmt.Errorf("failed to insert picklist value: %w", err)
	}
	return nil
}

// GetForField returns the ordered picklist values of one field
func (r *PicklistRepository) GetForField(ctx context.Context, fieldID string) ([]models.PicklistValue, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE field_id = ? ORDER BY display_order ASC",
		picklistColumnList(), constants.TablePicklistValue)

	rows, err := r.db.QueryContext(ctx, query, fieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to query picklist values: %w", err)
	}
	defer rows.Close()

	var values []models.PicklistValue
	for rows.Next() {
		v, err := scanPicklistValue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan picklist value row: %w", err)
		}
		values = append(values, *v)
	}
	return values, rows.Err()
}

// Update persists label, order, active flag and color of a picklist value
func (r *PicklistRepository) Update(ctx context.Context, exec Executor, value *models.PicklistValue) error {
	query := fmt.Sprintf(`UPDATE %s SET label = ?, display_order = ?, is_active = ?, color = ? WHERE id = ?`,
		constants.TablePicklistValue)

	result, err := exec.ExecContext(ctx, query,
		value.Label, value.DisplayOrder, value.IsActive, value.Color, value.ID)
	if err != nil {
		return fmt.Errorf("failed to update picklist value: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Picklist value", value.ID)
	}
	return nil
}

// ClearDefaults unsets the default flag on every value of a field.
// Setting a new default runs this first so at most one default survives.
func (r *PicklistRepository) ClearDefaults(ctx context.Context, exec Executor, fieldID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_default = FALSE WHERE field_id = ?", constants.TablePicklistValue)
	if _, err := exec.ExecContext(ctx, query, fieldID); err != nil {
		return fmt.Errorf("failed to clear picklist defaults: %w", err)
	}
	return nil
}

// SetDefault marks one value as the default
func (r *PicklistRepository) SetDefault(ctx context.Context, exec Executor, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_default = TRUE WHERE id = ?", constants.TablePicklistValue)
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to set picklist default: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Picklist value", id)
	}
	return nil
}

// Delete removes a picklist value
func (r *PicklistRepository) Delete(ctx context.Context, exec Executor, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TablePicklistValue)
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete picklist value: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("Picklist value", id)
	}
	return nil
}
