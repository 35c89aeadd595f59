package fieldtypes

import (
	"fmt"
	"strings"
	"sync"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
)

// ConfigKind identifies which Config variant a field type expects
type ConfigKind string

const (
	ConfigKindNone       ConfigKind = "none"
	ConfigKindText       ConfigKind = "text"
	ConfigKindNumber     ConfigKind = "number"
	ConfigKindPicklist   ConfigKind = "picklist"
	ConfigKindLookup     ConfigKind = "lookup"
	ConfigKindFormula    ConfigKind = "formula"
	ConfigKindAutoNumber ConfigKind = "auto_number"
)

// Shape limits for type-specific configuration
const (
	DefaultTextMaxLength = 255
	MaxTextLength        = 255
	MaxTextAreaLength    = 32000
	MaxNumberPrecision   = 18
)

// TypeDefinition describes one supported field data type
type TypeDefinition struct {
	Label            string     `json:"label"`
	Description      string     `json:"description"`
	Icon             string     `json:"icon"`
	ConfigKind       ConfigKind `json:"config_kind"`
	SupportsRequired bool       `json:"supports_required"`
	SupportsUnique   bool       `json:"supports_unique"`
	SupportsDefault  bool       `json:"supports_default"`
	AlwaysReadOnly   bool       `json:"always_read_only"`
}

// Registry holds the closed set of field type definitions
type Registry struct {
	types map[constants.FieldDataType]TypeDefinition
	mu    sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field type registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{types: builtinTypes()}
	})
	return defaultRegistry
}

func builtinTypes() map[constants.FieldDataType]TypeDefinition {
	return map[constants.FieldDataType]TypeDefinition{
		constants.FieldTypeText: {
			Label:            "Text",
			Description:      "A single line of text, up to 255 characters",
			Icon:             "type",
			ConfigKind:       ConfigKindText,
			SupportsRequired: true,
			SupportsUnique:   true,
			SupportsDefault:  true,
		},
		constants.FieldTypeTextArea: {
			Label:            "Text Area",
			Description:      "Multiple lines of text, up to 32,000 characters",
			Icon:             "align-left",
			ConfigKind:       ConfigKindText,
			SupportsRequired: true,
			SupportsDefault:  true,
		},
		constants.FieldTypeRichText: {
			Label:            "Rich Text",
			Description:      "Formatted text with embedded styling",
			Icon:             "file-text",
			ConfigKind:       ConfigKindText,
			SupportsRequired: true,
		},
		constants.FieldTypeNumber: {
			Label:            "Number",
			Description:      "A numeric value with configurable precision and scale",
			Icon:             "hash",
			ConfigKind:       ConfigKindNumber,
			SupportsRequired: true,
			SupportsUnique:   true,
			SupportsDefault:  true,
		},
		constants.FieldTypeCurrency: {
			Label:            "Currency",
			Description:      "A monetary amount in the organization currency",
			Icon:             "dollar-sign",
			ConfigKind:       ConfigKindNumber,
			SupportsRequired: true,
			SupportsDefault:  true,
		},
		constants.FieldTypePercent: {
			Label:            "Percent",
			Description:      "A percentage value",
			Icon:             "percent",
			ConfigKind:       ConfigKindNumber,
			SupportsRequired: true,
			SupportsDefault:  true,
		},
		constants.FieldTypeDate: {
			Label:            "Date",
			Description:      "A calendar date without time of day",
			Icon:             "calendar",
			ConfigKind:       ConfigKindNone,
			SupportsRequired: true,
			SupportsDefault:  true,
		},
		constants.FieldTypeDateTime: {
			Label:            "Date/Time",
			Description:      "A calendar date with time of day",
			Icon:             "clock",
			ConfigKind:       ConfigKindNone,
			SupportsRequired: true,
			SupportsDefault:  true,
		},
		constants.FieldTypeCheckbox: {
			Label:           "Checkbox",
			Description:     "A true/false value",
			Icon:            "check-square",
			ConfigKind:      ConfigKindNone,
			SupportsDefault: true,
		},
		constants.FieldTypePicklist: {
			Label:            "Picklist",
			Description:      "A single selection from a defined list of values",
			Icon:             "list",
			ConfigKind:       ConfigKindPicklist,
			SupportsRequired: true,
			SupportsDefault:  true,
		},
		constants.FieldTypeMultiPicklist: {
			Label:            "Multi-Select Picklist",
			Description:      "Multiple selections from a defined list of values",
			Icon:             "list-checks",
			ConfigKind:       ConfigKindPicklist,
			SupportsRequired: true,
		},
		constants.FieldTypeLookup: {
			Label:            "Lookup",
			Description:      "A reference to a record of another object",
			Icon:             "link",
			ConfigKind:       ConfigKindLookup,
			SupportsRequired: true,
		},
		constants.FieldTypeMasterDetail: {
			Label:            "Master-Detail",
			Description:      "A required parent reference that owns this record",
			Icon:             "git-branch",
			ConfigKind:       ConfigKindLookup,
			SupportsRequired: true,
		},
		constants.FieldTypeEmail: {
			Label:            "Email",
			Description:      "An email address",
			Icon:             "mail",
			ConfigKind:       ConfigKindNone,
			SupportsRequired: true,
			SupportsUnique:   true,
		},
		constants.FieldTypePhone: {
			Label:            "Phone",
			Description:      "A phone number",
			Icon:             "phone",
			ConfigKind:       ConfigKindNone,
			SupportsRequired: true,
		},
		constants.FieldTypeURL: {
			Label:            "URL",
			Description:      "A web address",
			Icon:             "globe",
			ConfigKind:       ConfigKindNone,
			SupportsRequired: true,
		},
		constants.FieldTypeFormula: {
			Label:          "Formula",
			Description:    "A read-only value computed from other fields",
			Icon:           "function-square",
			ConfigKind:     ConfigKindFormula,
			AlwaysReadOnly: true,
		},
		constants.FieldTypeAutoNumber: {
			Label:          "Auto Number",
			Description:    "A system-generated sequential record identifier",
			Icon:           "list-ordered",
			ConfigKind:     ConfigKindAutoNumber,
			AlwaysReadOnly: true,
		},
	}
}

// Get returns a type definition by data type
func (r *Registry) Get(dataType constants.FieldDataType) (TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[dataType]
	return def, ok
}

// IsReadOnly returns whether fields of this type are always read-only
func (r *Registry) IsReadOnly(dataType constants.FieldDataType) bool {
	def, ok := r.Get(dataType)
	return ok && def.AlwaysReadOnly
}

// IsPicklist reports whether dataType carries picklist values
func IsPicklist(dataType constants.FieldDataType) bool {
	return dataType == constants.FieldTypePicklist || dataType == constants.FieldTypeMultiPicklist
}

// IsRelationship reports whether dataType references another object
func IsRelationship(dataType constants.FieldDataType) bool {
	return dataType == constants.FieldTypeLookup || dataType == constants.FieldTypeMasterDetail
}

// TypeWithName includes the data type token in the definition, for API listings
type TypeWithName struct {
	Name string `json:"name"`
	TypeDefinition
}

// GetAll returns all registered field types sorted by the canonical enum order
func (r *Registry) GetAll() []TypeWithName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]TypeWithName, 0, len(r.types))
	for _, name := range constants.GetAllFieldDataTypes() {
		if def, ok := r.types[constants.FieldDataType(name)]; ok {
			result = append(result, TypeWithName{Name: name, TypeDefinition: def})
		}
	}
	return result
}

// NormalizeConfig fills in defaults for a config so the stored payload is
// always complete for its data type.
func (r *Registry) NormalizeConfig(dataType constants.FieldDataType, cfg Config) Config {
	switch dataType {
	case constants.FieldTypeText, constants.FieldTypeTextArea, constants.FieldTypeRichText:
		if cfg.Text == nil {
			cfg.Text = &TextConfig{MaxLength: DefaultTextMaxLength}
		}
		if cfg.Text.MaxLength == 0 {
			cfg.Text.MaxLength = DefaultTextMaxLength
		}
	case constants.FieldTypeNumber, constants.FieldTypeCurrency, constants.FieldTypePercent:
		if cfg.Number == nil {
			cfg.Number = &NumberConfig{Precision: MaxNumberPrecision, Scale: 2}
		}
	case constants.FieldTypePicklist, constants.FieldTypeMultiPicklist:
		if cfg.Picklist == nil {
			cfg.Picklist = &PicklistConfig{}
		}
	case constants.FieldTypeAutoNumber:
		if cfg.AutoNumber == nil {
			cfg.AutoNumber = &AutoNumberConfig{DisplayFormat: "{0}", StartingNumber: 1}
		}
		if cfg.AutoNumber.DisplayFormat == "" {
			cfg.AutoNumber.DisplayFormat = "{0}"
		}
		if cfg.AutoNumber.StartingNumber == 0 {
			cfg.AutoNumber.StartingNumber = 1
		}
	}
	return cfg
}

// ValidateConfig checks a type-specific config payload against the shape rules
// for the given data type. picklistValues carries the raw values submitted for
// picklist fields; other types ignore it.
func (r *Registry) ValidateConfig(dataType constants.FieldDataType, cfg Config, picklistValues []string) error {
	def, ok := r.Get(dataType)
	if !ok {
		return errors.NewValidationError("data_type", fmt.Sprintf("unknown field data type '%s'", dataType))
	}

	switch def.ConfigKind {
	case ConfigKindText:
		limit := MaxTextLength
		if dataType == constants.FieldTypeTextArea || dataType == constants.FieldTypeRichText {
			limit = MaxTextAreaLength
		}
		if cfg.Text != nil {
			if cfg.Text.MaxLength < 0 {
				return errors.NewValidationError("max_length", "max length cannot be negative")
			}
			if cfg.Text.MaxLength > limit {
				return errors.NewValidationError("max_length", fmt.Sprintf("max length cannot exceed %d for %s fields", limit, dataType))
			}
		}

	case ConfigKindNumber:
		if cfg.Number != nil {
			if cfg.Number.Precision < 1 || cfg.Number.Precision > MaxNumberPrecision {
				return errors.NewValidationError("precision", fmt.Sprintf("precision must be between 1 and %d", MaxNumberPrecision))
			}
			if cfg.Number.Scale < 0 || cfg.Number.Scale > cfg.Number.Precision {
				return errors.NewValidationError("scale", "scale must be between 0 and precision")
			}
		}

	case ConfigKindPicklist:
		nonBlank := 0
		for _, v := range picklistValues {
			if strings.TrimSpace(v) != "" {
				nonBlank++
			}
		}
		if nonBlank == 0 {
			return errors.NewValidationError("values", "picklist fields require at least one non-blank value")
		}

	case ConfigKindLookup:
		if cfg.Lookup == nil || cfg.Lookup.RelatedObjectID == "" {
			return errors.NewValidationError("related_object_id", "lookup fields require a related object")
		}
		if cfg.Lookup.RelatedObjectAPIName == "" {
			return errors.NewValidationError("related_object_api_name", "lookup fields require the related object api name")
		}
		if cfg.Lookup.RelatedDisplayField == "" {
			return errors.NewValidationError("related_display_field", "lookup fields require a display field")
		}

	case ConfigKindFormula:
		if cfg.Formula == nil || strings.TrimSpace(cfg.Formula.Expression) == "" {
			return errors.NewValidationError("expression", "formula fields require a formula expression")
		}
		if cfg.Formula.ReturnType == "" {
			return errors.NewValidationError("return_type", "formula fields require a return type")
		}
		if _, ok := r.Get(cfg.Formula.ReturnType); !ok {
			return errors.NewValidationError("return_type", fmt.Sprintf("unknown formula return type '%s'", cfg.Formula.ReturnType))
		}

	case ConfigKindAutoNumber:
		if cfg.AutoNumber != nil && cfg.AutoNumber.StartingNumber < 0 {
			return errors.NewValidationError("starting_number", "starting number cannot be negative")
		}
	}

	return nil
}
