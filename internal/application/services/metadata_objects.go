package services

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"github.com/doulacrm/backend/internal/domain/wizard"
	"github.com/doulacrm/backend/pkg/apiname"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/models"
	"github.com/doulacrm/backend/pkg/utils"
)

// ==================== Object CRUD Methods ====================

// CreateCustomObject atomically creates a custom object from a completed
// wizard draft: the object row, its standard Name field, every initial
// custom field with its picklist values, default permissions for the builtin
// profiles, and an audit entry. Nothing is written unless the whole draft
// validates.
func (ms *MetadataService) CreateCustomObject(ctx context.Context, user *models.UserSession, draft wizard.ObjectDraft) (*models.ObjectDefinition, error) {
	if err := requireMetadataAdmin(user); err != nil {
		return nil, err
	}

	obj, fields, err := ms.buildObjectFromDraft(ctx, user.OrgID, draft)
	if err != nil {
		return nil, err
	}

	err = ms.txManager.WithRetry(func(tx *sql.Tx) error {
		if err := ms.objects.Insert(ctx, tx, obj); err != nil {
			return err
		}
		for i := range fields {
			if err := ms.fields.Insert(ctx, tx, &fields[i]); err != nil {
				return err
			}
			for j := range fields[i].PicklistValues {
				if err := ms.picklists.Insert(ctx, tx, &fields[i].PicklistValues[j]); err != nil {
					return err
				}
			}
		}
		if err := ms.permissionSvc.grantDefaultPermissions(ctx, tx, obj.ID, fields); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionCreate,
			constants.AuditEntityObject, obj.ID, map[string]interface{}{
				"api_name": obj.APIName,
				"label":    obj.Label,
				"fields":   len(fields),
			})
	}, 3)
	if err != nil {
		return nil, err
	}

	obj.Fields = fields
	ms.InvalidateOrg(user.OrgID)
	log.Printf("✅ Created custom object %s with %d fields", obj.APIName, len(fields))
	return obj, nil
}

// buildObjectFromDraft validates a wizard draft in full and materializes the
// object and field rows to insert. It performs every check before any write
// happens.
func (ms *MetadataService) buildObjectFromDraft(ctx context.Context, orgID string, draft wizard.ObjectDraft) (*models.ObjectDefinition, []models.FieldDefinition, error) {
	if strings.TrimSpace(draft.Label) == "" {
		return nil, nil, errors.NewValidationError("label", "label is required")
	}
	if draft.PluralLabel == "" {
		draft.PluralLabel = apiname.Pluralize(draft.Label)
	}
	if draft.APIName == "" {
		draft.APIName = apiname.Generate(draft.Label)
	}
	if err := apiname.Validate(draft.APIName); err != nil {
		return nil, nil, errors.NewValidationError("api_name", err.Error())
	}
	if draft.SharingModel == "" {
		draft.SharingModel = constants.SharingModelPrivate
	}
	if !constants.IsValidSharingModel(draft.SharingModel) {
		return nil, nil, errors.NewValidationError("sharing_model", "unknown sharing model")
	}

	fullName := strings.ToLower(apiname.WithCustomSuffix(draft.APIName))
	exists, err := ms.objects.ExistsByAPIName(ctx, orgID, fullName)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, errors.NewConflictError("Object", "api_name", fullName)
	}

	obj := &models.ObjectDefinition{
		ID:             utils.GenerateID(),
		OrgID:          orgID,
		APIName:        fullName,
		Label:          draft.Label,
		PluralLabel:    draft.PluralLabel,
		SharingModel:   draft.SharingModel,
		HasActivities:  draft.HasActivities,
		HasNotes:       draft.HasNotes,
		HasAttachments: draft.HasAttachments,
		HasRecordTypes: draft.HasRecordTypes,
		Icon:           draft.Icon,
		IsActive:       true,
	}
	if draft.Description != "" {
		obj.Description = &draft.Description
	}
	if draft.Color != "" {
		obj.Color = &draft.Color
	}

	fields := []models.FieldDefinition{nameField(obj)}

	resolved := make([]models.FieldDefinition, 0, len(draft.Fields))
	seen := map[string]bool{strings.ToLower(fields[0].APIName): true}
	for i, fd := range draft.Fields {
		field, err := ms.buildFieldFromDraft(obj.ID, fd, i+2)
		if err != nil {
			return nil, nil, err
		}
		key := strings.ToLower(field.APIName)
		if seen[key] {
			return nil, nil, errors.NewConflictError("Field", "api_name", field.APIName)
		}
		seen[key] = true
		resolved = append(resolved, *field)
	}

	// Formula drafts may reference sibling draft fields, so compile them
	// against the full field environment.
	all := append(fields, resolved...)
	env := sampleFormulaEnv(all)
	for _, f := range resolved {
		if err := ms.validateFormulaField(f, env); err != nil {
			return nil, nil, err
		}
	}

	return obj, all, nil
}

// nameField builds the standard Name field every object carries
func nameField(obj *models.ObjectDefinition) models.FieldDefinition {
	return models.FieldDefinition{
		ID:           utils.GenerateID(),
		ObjectID:     obj.ID,
		APIName:      "name",
		Label:        obj.Label + " Name",
		DataType:     constants.FieldTypeText,
		Config:       defaultTextConfig(),
		IsRequired:   true,
		IsVisible:    true,
		IsStandard:   true,
		IsNameField:  true,
		IsActive:     true,
		DisplayOrder: 1,
	}
}

// ObjectSettingsUpdate carries the mutable settings of an object. Nil fields
// are left unchanged; api_name and is_standard cannot be changed at all.
type ObjectSettingsUpdate struct {
	Label          *string                 `json:"label,omitempty"`
	PluralLabel    *string                 `json:"plural_label,omitempty"`
	Description    *string                 `json:"description,omitempty"`
	Icon           *string                 `json:"icon,omitempty"`
	Color          *string                 `json:"color,omitempty"`
	SharingModel   *constants.SharingModel `json:"sharing_model,omitempty"`
	HasActivities  *bool                   `json:"has_activities,omitempty"`
	HasNotes       *bool                   `json:"has_notes,omitempty"`
	HasAttachments *bool                   `json:"has_attachments,omitempty"`
	HasRecordTypes *bool                   `json:"has_record_types,omitempty"`
}

// UpdateObjectSettings applies mutable settings to an existing object
func (ms *MetadataService) UpdateObjectSettings(ctx context.Context, user *models.UserSession, objectAPIName string, update ObjectSettingsUpdate) (*models.ObjectDefinition, error) {
	if err := requireMetadataAdmin(user); err != nil {
		return nil, err
	}

	cached, err := ms.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return nil, err
	}
	obj := *cached

	if update.Label != nil {
		if strings.TrimSpace(*update.Label) == "" {
			return nil, errors.NewValidationError("label", "label cannot be blank")
		}
		obj.Label = *update.Label
	}
	if update.PluralLabel != nil {
		if strings.TrimSpace(*update.PluralLabel) == "" {
			return nil, errors.NewValidationError("plural_label", "plural label cannot be blank")
		}
		obj.PluralLabel = *update.PluralLabel
	}
	if update.Description != nil {
		obj.Description = update.Description
	}
	if update.Icon != nil {
		obj.Icon = *update.Icon
	}
	if update.Color != nil {
		obj.Color = update.Color
	}
	if update.SharingModel != nil {
		if !constants.IsValidSharingModel(*update.SharingModel) {
			return nil, errors.NewValidationError("sharing_model", "unknown sharing model")
		}
		obj.SharingModel = *update.SharingModel
	}
	if update.HasActivities != nil {
		obj.HasActivities = *update.HasActivities
	}
	if update.HasNotes != nil {
		obj.HasNotes = *update.HasNotes
	}
	if update.HasAttachments != nil {
		obj.HasAttachments = *update.HasAttachments
	}
	if update.HasRecordTypes != nil {
		obj.HasRecordTypes = *update.HasRecordTypes
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.objects.UpdateSettings(ctx, tx, &obj); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionUpdate,
			constants.AuditEntityObject, obj.ID, update)
	})
	if err != nil {
		return nil, err
	}

	ms.InvalidateOrg(user.OrgID)
	return &obj, nil
}

// DeactivateObject soft-deletes a custom object. Standard objects cannot be
// deactivated. Definitions and data are preserved for reactivation.
func (ms *MetadataService) DeactivateObject(ctx context.Context, user *models.UserSession, objectAPIName string) error {
	return ms.setObjectActive(ctx, user, objectAPIName, false)
}

// ReactivateObject restores a previously deactivated custom object
func (ms *MetadataService) ReactivateObject(ctx context.Context, user *models.UserSession, objectAPIName string) error {
	return ms.setObjectActive(ctx, user, objectAPIName, true)
}

func (ms *MetadataService) setObjectActive(ctx context.Context, user *models.UserSession, objectAPIName string, active bool) error {
	if err := requireMetadataAdmin(user); err != nil {
		return err
	}

	obj, err := ms.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return err
	}
	if obj.IsStandard {
		return errors.NewValidationError("api_name", "standard objects cannot be deactivated")
	}

	action := constants.AuditActionDeactivate
	if active {
		action = constants.AuditActionUpdate
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.objects.SetActive(ctx, tx, obj.ID, active); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, action,
			constants.AuditEntityObject, obj.ID, map[string]interface{}{
				"api_name":  obj.APIName,
				"is_active": active,
			})
	})
	if err != nil {
		return err
	}

	ms.InvalidateOrg(user.OrgID)
	return nil
}

// requireMetadataAdmin gates metadata mutation to system administrators
func requireMetadataAdmin(user *models.UserSession) error {
	if user == nil {
		return errors.NewUnauthorizedError("authentication required")
	}
	if !user.IsSystemAdmin && !user.IsSuperUser() {
		return errors.NewPermissionError("manage", "metadata")
	}
	return nil
}
