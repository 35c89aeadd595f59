package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
	"github.com/doulacrm/backend/pkg/models"
	"github.com/doulacrm/backend/pkg/utils"
)

// ==================== Picklist Value Methods ====================

// AddPicklistValue appends a value to a picklist field
func (ms *MetadataService) AddPicklistValue(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName, value, label string) (*models.PicklistValue, error) {
	field, obj, err := ms.resolvePicklistField(ctx, user, objectAPIName, fieldAPIName)
	if err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.NewValidationError("value", "value cannot be blank")
	}
	if label == "" {
		label = value
	}
	for _, v := range field.PicklistValues {
		if strings.EqualFold(v.Value, value) {
			return nil, errors.NewConflictError("Picklist value", "value", value)
		}
	}

	pv := &models.PicklistValue{
		ID:           utils.GenerateID(),
		FieldID:      field.ID,
		Value:        value,
		Label:        label,
		DisplayOrder: len(field.PicklistValues) + 1,
		IsActive:     true,
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.picklists.Insert(ctx, tx, pv); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionCreate,
			constants.AuditEntityPicklistValue, pv.ID, map[string]interface{}{
				"object": obj.APIName,
				"field":  field.APIName,
				"value":  pv.Value,
			})
	})
	if err != nil {
		return nil, err
	}

	ms.InvalidateOrg(user.OrgID)
	return pv, nil
}

// PicklistValueUpdate carries the mutable properties of a picklist value.
// The stored value token itself cannot change once created.
type PicklistValueUpdate struct {
	Label        *string `json:"label,omitempty"`
	Color        *string `json:"color,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// UpdatePicklistValue applies mutable properties to an existing value
func (ms *MetadataService) UpdatePicklistValue(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName, valueID string, update PicklistValueUpdate) (*models.PicklistValue, error) {
	field, obj, err := ms.resolvePicklistField(ctx, user, objectAPIName, fieldAPIName)
	if err != nil {
		return nil, err
	}
	current, err := findPicklistValue(field, valueID)
	if err != nil {
		return nil, err
	}
	pv := *current

	if update.Label != nil {
		if strings.TrimSpace(*update.Label) == "" {
			return nil, errors.NewValidationError("label", "label cannot be blank")
		}
		pv.Label = *update.Label
	}
	if update.Color != nil {
		pv.Color = update.Color
	}
	if update.IsActive != nil {
		if !*update.IsActive && activeValueCount(field) <= 1 && pv.IsActive {
			return nil, errors.NewValidationError("is_active", "a picklist must keep at least one active value")
		}
		pv.IsActive = *update.IsActive
	}
	if update.DisplayOrder != nil {
		if *update.DisplayOrder < 1 {
			return nil, errors.NewValidationError("display_order", "display order must be positive")
		}
		pv.DisplayOrder = *update.DisplayOrder
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.picklists.Update(ctx, tx, &pv); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionUpdate,
			constants.AuditEntityPicklistValue, pv.ID, map[string]interface{}{
				"object": obj.APIName,
				"field":  field.APIName,
				"value":  pv.Value,
			})
	})
	if err != nil {
		return nil, err
	}

	ms.InvalidateOrg(user.OrgID)
	return &pv, nil
}

// SetDefaultPicklistValue marks one value as the field's default. Any
// previous default is cleared in the same transaction, so at most one value
// is ever flagged.
func (ms *MetadataService) SetDefaultPicklistValue(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName, valueID string) error {
	field, obj, err := ms.resolvePicklistField(ctx, user, objectAPIName, fieldAPIName)
	if err != nil {
		return err
	}
	pv, err := findPicklistValue(field, valueID)
	if err != nil {
		return err
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.picklists.ClearDefaults(ctx, tx, field.ID); err != nil {
			return err
		}
		if err := ms.picklists.SetDefault(ctx, tx, pv.ID); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionUpdate,
			constants.AuditEntityPicklistValue, pv.ID, map[string]interface{}{
				"object":  obj.APIName,
				"field":   field.APIName,
				"value":   pv.Value,
				"default": true,
			})
	})
	if err != nil {
		return err
	}

	ms.InvalidateOrg(user.OrgID)
	return nil
}

// RemovePicklistValue deletes a value outright. The last remaining value of
// a field cannot be removed.
func (ms *MetadataService) RemovePicklistValue(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName, valueID string) error {
	field, obj, err := ms.resolvePicklistField(ctx, user, objectAPIName, fieldAPIName)
	if err != nil {
		return err
	}
	pv, err := findPicklistValue(field, valueID)
	if err != nil {
		return err
	}
	if len(field.PicklistValues) <= 1 {
		return errors.NewValidationError("value", "a picklist must keep at least one value")
	}

	err = ms.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := ms.picklists.Delete(ctx, tx, pv.ID); err != nil {
			return err
		}
		return ms.auditSvc.Record(ctx, tx, user, constants.AuditActionDelete,
			constants.AuditEntityPicklistValue, pv.ID, map[string]interface{}{
				"object": obj.APIName,
				"field":  field.APIName,
				"value":  pv.Value,
			})
	})
	if err != nil {
		return err
	}

	ms.InvalidateOrg(user.OrgID)
	return nil
}

// resolvePicklistField loads an object and one of its picklist fields,
// gating on metadata admin rights
func (ms *MetadataService) resolvePicklistField(ctx context.Context, user *models.UserSession, objectAPIName, fieldAPIName string) (*models.FieldDefinition, *models.ObjectDefinition, error) {
	if err := requireMetadataAdmin(user); err != nil {
		return nil, nil, err
	}
	obj, err := ms.GetObject(ctx, user.OrgID, objectAPIName)
	if err != nil {
		return nil, nil, err
	}
	field, err := findField(obj, fieldAPIName)
	if err != nil {
		return nil, nil, err
	}
	if !fieldtypes.IsPicklist(field.DataType) {
		return nil, nil, errors.NewValidationError("data_type", "field is not a picklist")
	}
	return field, obj, nil
}

func findPicklistValue(field *models.FieldDefinition, valueID string) (*models.PicklistValue, error) {
	for i := range field.PicklistValues {
		if field.PicklistValues[i].ID == valueID {
			return &field.PicklistValues[i], nil
		}
	}
	return nil, errors.NewNotFoundError("Picklist value", valueID)
}

func activeValueCount(field *models.FieldDefinition) int {
	count := 0
	for _, v := range field.PicklistValues {
		if v.IsActive {
			count++
		}
	}
	return count
}
