package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/doulacrm/backend/internal/domain/wizard"
	"github.com/doulacrm/backend/pkg/apiname"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
	"github.com/doulacrm/backend/pkg/models"
	"github.com/doulacrm/backend/pkg/utils"
)

// ==================== Field CRUD Methods ====================

// CreateField atomically adds a field to an existing object: the field row,
// its picklist values, default permissions for the builtin profiles, and an
// audit entry. The draft validates in full before any write.
func (ms *MetadataService) CreateField(ctx context.Context, user *models.UserSession, objectAPIName string, draft wizard.FieldDraft) (*models.FieldDefinition, error) {
	if err := requireMetadataAdmin(user); err != nil {
		return nil, err
	}

	obj, err := ms.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return nil, err
	}

	field, err := ms.buildFieldFromDraft(obj.ID, draft, len(obj.Fields)+1)
	if err != nil {
		return nil, err
	}

	for _, f := range obj.Fields {
		if strings.EqualFold(f.APIName, field.APIName) {
			return nil, errors.NewConflictError("Field", "api_name", field.APIName)
		}
	}

	env := sampleFormulaEnv(obj.Fields)
	if err := ms.validateFormulaField(*field, env); err != nil {
		return nil, err
	}

	err = ms.txManager.WithRetry(func(tx *sql.Tx) error {
		if err := ms.fields.Insert(ctx, tx, field); err != nil {
			return err
		}
		for i := range field.PicklistValues {
			if err := ms.picklists.Insert(ctx, tx, &field.PicklistValues[i]); err != nil {
				return err
			}
		}
		if err := ms.permissionSvc.grantDefaultPermissions(ctx, tx, obj.ID, []models.FieldDefinition{*field}); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionCreate,
			constants.AuditEntityField, field.ID, map[string]interface{}{
				"object":    obj.APIName,
				"api_name":  field.APIName,
				"data_type": field.DataType,
			})
	}, 3)
	if err != nil {
		return nil, err
	}

	ms.InvalidateOrg(user.OrgID)
	log.Printf("✅ Created field %s.%s (%s)", obj.APIName, field.APIName, field.DataType)
	return field, nil
}

// buildFieldFromDraft validates one field draft and materializes the row to
// insert, including picklist value rows.
func (ms *MetadataService) buildFieldFromDraft(objectID string, draft wizard.FieldDraft, displayOrder int) (*models.FieldDefinition, error) {
	registry := fieldtypes.GetRegistry()
	def, ok := registry.Get(draft.DataType)
	if !ok {
		return nil, errors.NewValidationError("data_type", fmt.Sprintf("unknown field data type '%s'", draft.DataType))
	}
	if strings.TrimSpace(draft.Label) == "" {
		return nil, errors.NewValidationError("label", "label is required")
	}

	name := draft.APIName
	if name == "" {
		name = apiname.Generate(draft.Label)
	}
	if err := apiname.Validate(name); err != nil {
		return nil, errors.NewValidationError("api_name", err.Error())
	}

	if err := registry.ValidateConfig(draft.DataType, draft.Config, draft.PicklistValues); err != nil {
		return nil, err
	}

	field := &models.FieldDefinition{
		ID:           utils.GenerateID(),
		ObjectID:     objectID,
		APIName:      strings.ToLower(apiname.WithCustomSuffix(name)),
		Label:        draft.Label,
		DataType:     draft.DataType,
		Config:       registry.NormalizeConfig(draft.DataType, draft.Config),
		IsRequired:   draft.IsRequired && !def.AlwaysReadOnly,
		IsUnique:     draft.IsUnique && def.SupportsUnique,
		IsVisible:    true,
		IsReadOnly:   def.AlwaysReadOnly,
		IsActive:     true,
		DisplayOrder: displayOrder,
	}
	if draft.HelpText != "" {
		field.HelpText = &draft.HelpText
	}
	if draft.Description != "" {
		field.Description = &draft.Description
	}

	if fieldtypes.IsPicklist(draft.DataType) {
		order := 0
		for _, raw := range draft.PicklistValues {
			value := strings.TrimSpace(raw)
			if value == "" {
				continue
			}
			order++
			field.PicklistValues = append(field.PicklistValues, models.PicklistValue{
				ID:           utils.GenerateID(),
				FieldID:      field.ID,
				Value:        value,
				Label:        value,
				DisplayOrder: order,
				IsDefault:    draft.DefaultValue != "" && strings.EqualFold(value, draft.DefaultValue),
				IsActive:     true,
			})
		}
	}

	return field, nil
}

// validateFormulaField compile-checks a formula field's expression against
// the sample environment of its sibling fields
func (ms *MetadataService) validateFormulaField(field models.FieldDefinition, env map[string]interface{}) error {
	if field.DataType != constants.FieldTypeFormula {
		return nil
	}
	if field.Config.Formula == nil {
		return errors.NewValidationError("formula", "formula fields require a formula expression")
	}
	if err := ms.formulas.Validate(field.Config.Formula.Expression, env); err != nil {
		return errors.NewValidationError("formula", fmt.Sprintf("invalid formula syntax: %v", err))
	}
	return nil
}

func defaultTextConfig() fieldtypes.Config {
	return fieldtypes.Config{Text: &fieldtypes.TextConfig{MaxLength: fieldtypes.DefaultTextMaxLength}}
}

// FieldSettingsUpdate carries the mutable settings of a field. Nil fields
// are left unchanged; data_type, api_name and the type config cannot be
// changed after creation.
type FieldSettingsUpdate struct {
	Label        *string `json:"label,omitempty"`
	HelpText     *string `json:"help_text,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsRequired   *bool   `json:"is_required,omitempty"`
	IsVisible    *bool   `json:"is_visible,omitempty"`
	IsSensitive  *bool   `json:"is_sensitive,omitempty"`
	IsAudited    *bool   `json:"is_audited,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// UpdateFieldSettings applies mutable settings to an existing field
func (ms *MetadataService) UpdateFieldSettings(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName string, update FieldSettingsUpdate) (*models.FieldDefinition, error) {
	if err := requireMetadataAdmin(user); err != nil {
		return nil, err
	}

	obj, err := ms.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return nil, err
	}
	current, err := findField(obj, fieldAPIName)
	if err != nil {
		return nil, err
	}
	field := *current

	if update.Label != nil {
		if strings.TrimSpace(*update.Label) == "" {
			return nil, errors.NewValidationError("label", "label cannot be blank")
		}
		field.Label = *update.Label
	}
	if update.HelpText != nil {
		field.HelpText = update.HelpText
	}
	if update.Description != nil {
		field.Description = update.Description
	}
	if update.IsRequired != nil {
		if *update.IsRequired && field.IsReadOnly {
			return nil, errors.NewValidationError("is_required", "read-only fields cannot be required")
		}
		field.IsRequired = *update.IsRequired
	}
	if update.IsVisible != nil {
		field.IsVisible = *update.IsVisible
	}
	if update.IsSensitive != nil {
		field.IsSensitive = *update.IsSensitive
	}
	if update.IsAudited != nil {
		field.IsAudited = *update.IsAudited
	}
	if update.DisplayOrder != nil {
		if *update.DisplayOrder < 1 {
			return nil, errors.NewValidationError("display_order", "display order must be positive")
		}
		field.DisplayOrder = *update.DisplayOrder
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.fields.Update(ctx, tx, &field); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionUpdate,
			constants.AuditEntityField, field.ID, update)
	})
	if err != nil {
		return nil, err
	}

	ms.InvalidateOrg(user.OrgID)
	return &field, nil
}

// DeactivateField soft-deletes a custom field. Standard fields and the name
// field cannot be deactivated.
func (ms *MetadataService) DeactivateField(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName string) error {
	return ms.setFieldActive(ctx, user, objectAPIName, fieldAPIName, false)
}

// ReactivateField restores a previously deactivated field
func (ms *MetadataService) ReactivateField(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName string) error {
	return ms.setFieldActive(ctx, user, objectAPIName, fieldAPIName, true)
}

func (ms *MetadataService) setFieldActive(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName string, active bool) error {
	if err := requireMetadataAdmin(user); err != nil {
		return err
	}

	obj, err := ms.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return err
	}
	field, err := findField(obj, fieldAPIName)
	if err != nil {
		return err
	}
	if field.IsStandard || field.IsNameField {
		return errors.NewValidationError("api_name", "standard fields cannot be deactivated")
	}

	action := constants.AuditActionDeactivate
	if active {
		action = constants.AuditActionUpdate
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.fields.SetActive(ctx, tx, field.ID, active); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, action,
			constants.AuditEntityField, field.ID, map[string]interface{}{
				"object":    obj.APIName,
				"api_name":  field.APIName,
				"is_active": active,
			})
	})
	if err != nil {
		return err
	}

	ms.InvalidateOrg(user.OrgID)
	return nil
}

// findField locates a field on an object by api name
func findField(obj *models.ObjectDefinition, fieldAPIName string) (*models.FieldDefinition, error) {
	for i := range obj.Fields {
		if strings.EqualFold(obj.Fields[i].APIName, fieldAPIName) {
			return &obj.Fields[i], nil
		}
	}
	return nil, errors.NewNotFoundError("Field", fieldAPIName)
}
