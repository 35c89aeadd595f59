package services

import (
	"context"
	"database/sql"

	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
	"github.com/doulacrm/backend/pkg/models"
	"github.com/doulacrm/backend/pkg/utils"
)

// SeedStandardObject inserts a pre-built standard object with its fields,
// picklist values and default permissions. Used by bootstrap only; runtime
// object creation goes through CreateCustomObject. Returns false when the
// object already exists, in which case nothing is written.
func (ms *MetadataService) SeedStandardObject(ctx context.Context, def *models.ObjectDefinition) (bool, error) {
	exists, err := ms.objects.ExistsByAPIName(ctx, def.OrgID, def.APIName)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if def.NameField() == nil {
		return false, errors.NewValidationError("fields", "object definition is missing a name field")
	}

	if def.ID == "" {
		def.ID = utils.GenerateID()
	}
	def.IsStandard = true
	def.IsActive = true

	fields := def.Fields
	for i := range fields {
		f := &fields[i]
		if f.ID == "" {
			f.ID = utils.GenerateID()
		}
		f.ObjectID = def.ID
		f.IsStandard = true
		f.IsActive = true
		f.IsVisible = true
		if f.DisplayOrder == 0 {
			f.DisplayOrder = i + 1
		}
		f.Config = fieldtypes.GetRegistry().NormalizeConfig(f.DataType, f.Config)
		for j := range f.PicklistValues {
			v := &f.PicklistValues[j]
			if v.ID == "" {
				v.ID = utils.GenerateID()
			}
			v.FieldID = f.ID
			v.IsActive = true
			if v.DisplayOrder == 0 {
				v.DisplayOrder = j + 1
			}
			if v.Label == "" {
				v.Label = v.Value
			}
		}
	}

	err = ms.txManager.WithRetry(func(tx *sql.Tx) error {
		if err := ms.objects.Insert(ctx, tx, def); err != nil {
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
		return ms.permissionSvc.grantDefaultPermissions(ctx, tx, def.ID, fields)
	}, 3)
	if err != nil {
		return false, err
	}

	ms.InvalidateOrg(def.OrgID)
	return true, nil
}
