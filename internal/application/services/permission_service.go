package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doulacrm/backend/internal/infrastructure/persistence"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/models"
)

// PermissionService resolves and manages per-profile field permissions
type PermissionService struct {
	repo      *persistence.PermissionRepository
	txManager *persistence.TransactionManager

	// Set after construction to break the circular dependency with metadata
	metadata *MetadataService
	audit    *AuditService
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(repo *persistence.PermissionRepository, txManager *persistence.TransactionManager) *PermissionService {
	return &PermissionService{repo: repo, txManager: txManager}
}

// SetMetadataService sets the metadata dependency (break circular dependency)
func (ps *PermissionService) SetMetadataService(ms *MetadataService) {
	ps.metadata = ms
}

// SetAuditService sets the audit dependency
func (ps *PermissionService) SetAuditService(as *AuditService) {
	ps.audit = as
}

// GetMatrix resolves the full permission matrix of one profile on one
// object. Every field of the object gets a tuple; fields without a stored
// row default to hidden. Super-user profiles see and edit everything, with
// read-only fields staying non-editable.
func (ps *PermissionService) GetMatrix(ctx context.Context, user *models.UserSession, profileID, objectAPIName string) (*models.PermissionMatrix, error) {
	if !user.IsSystemAdmin && !user.IsSuperUser() && user.ProfileID != profileID {
		return nil, errors.NewPermissionError("read", "field permissions")
	}

	obj, err := ps.metadata.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return nil, err
	}

	matrix := &models.PermissionMatrix{ProfileID: profileID, ObjectID: obj.ID}

	if constants.IsSuperUser(profileID) {
		for _, f := range obj.Fields {
			matrix.Permissions = append(matrix.Permissions,
				models.NewFieldPermission(profileID, obj.ID, f.ID, true, !f.IsReadOnly))
		}
		return matrix, nil
	}

	stored, err := ps.repo.GetForProfileAndObject(ctx, profileID, obj.ID)
	if err != nil {
		return nil, err
	}
	byField := make(map[string]models.FieldPermission, len(stored))
	for _, p := range stored {
		byField[p.FieldID] = p
	}

	for _, f := range obj.Fields {
		p, ok := byField[f.ID]
		if !ok {
			p = models.FieldPermission{ProfileID: profileID, ObjectID: obj.ID, FieldID: f.ID}
		}
		if f.IsReadOnly {
			p.SetEditable(false)
		}
		p.Normalize()
		matrix.Permissions = append(matrix.Permissions, p)
	}
	return matrix, nil
}

// SetFieldPermission writes one permission tuple. Only system administrators
// can change permissions, and the editable-implies-visible invariant is
// re-applied before the write.
func (ps *PermissionService) SetFieldPermission(ctx context.Context, user *models.UserSession, perm models.FieldPermission) error {
	if !user.IsSystemAdmin && !user.IsSuperUser() {
		return errors.NewPermissionError("edit", "field permissions")
	}
	if perm.ProfileID == "" || perm.ObjectID == "" || perm.FieldID == "" {
		return errors.NewValidationError("permission", "profile_id, object_id and field_id are required")
	}
	perm.Normalize()

	return ps.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ps.repo.Upsert(ctx, tx, perm); err != nil {
			return err
		}
		return ps.audit.Record(ctx, tx, user, constants.AuditActionUpdate,
			constants.AuditEntityPermission, perm.FieldID, map[string]interface{}{
				"profile_id":  perm.ProfileID,
				"is_visible":  perm.IsVisible,
				"is_editable": perm.IsEditable,
			})
	})
}

// SetObjectPermissions bulk-applies a visibility and/or editability flag to
// every field of an object for one profile, atomically.
func (ps *PermissionService) SetObjectPermissions(ctx context.Context, user *models.UserSession, profileID, objectAPIName string, visible, editable *bool) error {
	if !user.IsSystemAdmin && !user.IsSuperUser() {
		return errors.NewPermissionError("edit", "field permissions")
	}
	if visible == nil && editable == nil {
		return errors.NewValidationError("permission", "nothing to change")
	}

	matrix, err := ps.GetMatrix(ctx, user, profileID, objectAPIName)
	if err != nil {
		return err
	}
	if visible != nil {
		matrix.SetAllVisible(*visible)
	}
	if editable != nil {
		matrix.SetAllEditable(*editable)
	}

	return ps.txManager.WithTransaction(func(tx *sql.Tx) error {
		for _, p := range matrix.Permissions {
			if err := ps.repo.Upsert(ctx, tx, p); err != nil {
				return err
			}
		}
		return ps.audit.Record(ctx, tx, user, constants.AuditActionUpdate,
			constants.AuditEntityPermission, matrix.ObjectID, map[string]interface{}{
				"profile_id": profileID,
				"bulk":       true,
				"fields":     len(matrix.Permissions),
			})
	})
}

// EffectiveFields filters an object's fields down to what the user's profile
// can see, marking non-editable fields read-only. System administrators see
// the full field list.
func (ps *PermissionService) EffectiveFields(ctx context.Context, user *models.UserSession, obj *models.ObjectDefinition) ([]models.FieldDefinition, error) {
	if user.IsSystemAdmin || user.IsSuperUser() {
		return obj.Fields, nil
	}

	stored, err := ps.repo.GetForProfileAndObject(ctx, user.ProfileID, obj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve field permissions: %w", err)
	}
	byField := make(map[string]models.FieldPermission, len(stored))
	for _, p := range stored {
		byField[p.FieldID] = p
	}

	var visible []models.FieldDefinition
	for _, f := range obj.Fields {
		p, ok := byField[f.ID]
		if !ok || !p.IsVisible {
			continue
		}
		if !p.IsEditable {
			f.IsReadOnly = true
		}
		visible = append(visible, f)
	}
	return visible, nil
}

// grantDefaultPermissions gives the builtin profiles access to a batch of
// newly created fields, inside the caller's transaction. Administrators get
// full access, standard users get visibility with editability on writable
// fields.
func (ps *PermissionService) grantDefaultPermissions(ctx context.Context, exec persistence.Executor, objectID string, fields []models.FieldDefinition) error {
	for _, f := range fields {
		editable := !f.IsReadOnly
		grants := []models.FieldPermission{
			models.NewFieldPermission(constants.ProfileSystemAdmin, objectID, f.ID, true, editable),
			models.NewFieldPermission(constants.ProfileStandardUser, objectID, f.ID, !f.IsSensitive, editable && !f.IsSensitive),
		}
		for _, g := range grants {
			if err := ps.repo.Upsert(ctx, exec, g); err != nil {
				return fmt.Errorf("failed to grant default permission for field %s: %w", f.APIName, err)
			}
		}
	}
	return nil
}
