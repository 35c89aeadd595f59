package models

import (
	"time"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/fieldtypes"
)

// FieldDataType is defined in pkg/constants
type FieldDataType = constants.FieldDataType

// SharingModel is defined in pkg/constants
type SharingModel = constants.SharingModel

// ObjectDefinition is the metadata record describing one entity in the
// custom-object system.
type ObjectDefinition struct {
	ID             string       `json:"id,omitempty"`
	OrgID          string       `json:"org_id,omitempty"`
	APIName        string       `json:"api_name"`
	Label          string       `json:"label"`
	PluralLabel    string       `json:"plural_label"`
	Description    *string      `json:"description,omitempty"`
	Icon           string       `json:"icon,omitempty"`
	Color          *string      `json:"color,omitempty"`
	SharingModel   SharingModel `json:"sharing_model"`
	HasActivities  bool         `json:"has_activities"`
	HasNotes       bool         `json:"has_notes"`
	HasAttachments bool         `json:"has_attachments"`
	HasRecordTypes bool         `json:"has_record_types"`
	IsStandard     bool         `json:"is_standard"`
	IsActive       bool         `json:"is_active"`

	Fields []FieldDefinition `json:"fields,omitempty"`

	CreatedDate      time.Time `json:"created_date,omitempty"`
	LastModifiedDate time.Time `json:"last_modified_date,omitempty"`
}

// IsCustom reports whether the object was user-created
func (o *ObjectDefinition) IsCustom() bool {
	return !o.IsStandard
}

// NameField returns the object's name field, or nil if none is flagged
func (o *ObjectDefinition) NameField() *FieldDefinition {
	for i := range o.Fields {
		if o.Fields[i].IsNameField {
			return &o.Fields[i]
		}
	}
	return nil
}

// FieldDefinition is the metadata record describing one attribute of an
// ObjectDefinition.
type FieldDefinition struct {
	ID           string            `json:"id,omitempty"`
	ObjectID     string            `json:"object_id,omitempty"`
	APIName      string            `json:"api_name"`
	Label        string            `json:"label"`
	DataType     FieldDataType     `json:"data_type"`
	Config       fieldtypes.Config `json:"config"`
	IsRequired   bool              `json:"is_required"`
	IsUnique     bool              `json:"is_unique"`
	IsVisible    bool              `json:"is_visible"`
	IsReadOnly   bool              `json:"is_read_only"`
	IsStandard   bool              `json:"is_standard"`
	IsNameField  bool              `json:"is_name_field"`
	IsSensitive  bool              `json:"is_sensitive"`
	IsAudited    bool              `json:"is_audited"`
	IsActive     bool              `json:"is_active"`
	HelpText     *string           `json:"help_text,omitempty"`
	Description  *string           `json:"description,omitempty"`
	DisplayOrder int               `json:"display_order"`

	PicklistValues []PicklistValue `json:"picklist_values,omitempty"`

	CreatedDate      time.Time `json:"created_date,omitempty"`
	LastModifiedDate time.Time `json:"last_modified_date,omitempty"`
}

// PicklistValue is one selectable value of a picklist or multipicklist field
type PicklistValue struct {
	ID                string   `json:"id,omitempty"`
	FieldID           string   `json:"field_id,omitempty"`
	Value             string   `json:"value"`
	Label             string   `json:"label"`
	DisplayOrder      int      `json:"display_order"`
	IsDefault         bool     `json:"is_default"`
	IsActive          bool     `json:"is_active"`
	Color             *string  `json:"color,omitempty"`
	ControllingFieldID *string `json:"controlling_field_id,omitempty"`
	ControllingValues []string `json:"controlling_values,omitempty"`
}

// AuditEntry is one append-only record of a metadata mutation
type AuditEntry struct {
	ID         string                `json:"id"`
	OrgID      string                `json:"org_id"`
	ActorID    string                `json:"actor_id"`
	Action     constants.AuditAction `json:"action"`
	EntityType string                `json:"entity_type"`
	EntityID   string                `json:"entity_id"`
	Detail     *string               `json:"detail,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}
