package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

// PermissionRepository persists per-profile field permission tuples
type PermissionRepository struct {
	db *sql.DB
}

// NewPermissionRepository creates a new PermissionRepository
func NewPermissionRepository(db *sql.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// GetForProfileAndObject returns the field permission tuples of one profile
// on one object
func (r *PermissionRepository) GetForProfileAndObject(ctx context.Context, profileID, objectID string) ([]models.FieldPermission, error) {
	query := fmt.Sprintf(`
		SELECT profile_id, object_id, field_id, is_visible, is_editable
		FROM %s
		WHERE profile_id = ? AND object_id = ?
	`, constants.TableFieldPerms)

	rows, err := r.db.QueryContext(ctx, query, profileID, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query field permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.FieldPermission
	for rows.Next() {
		var p models.FieldPermission
		if err := rows.Scan(&p.ProfileID, &p.ObjectID, &p.FieldID, &p.IsVisible, &p.IsEditable); err != nil {
			return nil, fmt.Errorf("failed to scan field permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Get returns one field permission tuple, or nil when no row exists
func (r *PermissionRepository) Get(ctx context.Context, profileID, fieldID string) (*models.FieldPermission, error) {
	query := fmt.Sprintf(`
		SELECT profile_id, object_id, field_id, is_visible, is_editable
		FROM %s
		WHERE profile_id = ? AND field_id = ?
		LIMIT 1
	`, constants.TableFieldPerms)

	var p models.FieldPermission
	err := r.db.QueryRowContext(ctx, query, profileID, fieldID).Scan(
		&p.ProfileID, &p.ObjectID, &p.FieldID, &p.IsVisible, &p.IsEditable)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load field permission: %w", err)
	}
	return &p, nil
}

// Upsert writes one field permission tuple through the given executor
func (r *PermissionRepository) Upsert(ctx context.Context, exec Executor, perm models.FieldPermission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (profile_id, object_id, field_id, is_visible, is_editable)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE is_visible = VALUES(is_visible), is_editable = VALUES(is_editable)
	`, constants.TableFieldPerms)

	if _, err := exec.ExecContext(ctx, query,
		perm.ProfileID, perm.ObjectID, perm.FieldID, perm.IsVisible, perm.IsEditable); err != nil {
		return fmt.Errorf("failed to upsert field permission: %w", err)
	}
	return nil
}

// DeleteForField removes all permission tuples of one field
func (r *PermissionRepository) DeleteForField(ctx context.Context, exec Executor, fieldID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE field_id = ?", constants.TableFieldPerms)
	if _, err := exec.ExecContext(ctx, query, fieldID); err != nil {
		return fmt.Errorf("failed to delete field permissions: %w", err)
	}
	return nil
}
