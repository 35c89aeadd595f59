package fieldtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/doulacrm/backend/pkg/constants"
)

// TextConfig configures text, textarea and rich_text fields
type TextConfig struct {
	MaxLength int `json:"max_length"`
}

// NumberConfig configures number, currency and percent fields
type NumberConfig struct {
	Precision int `json:"precision"`
	Scale     int `json:"scale"`
}

// PicklistConfig configures picklist and multipicklist fields
type PicklistConfig struct {
	AllowBlank bool `json:"allow_blank"`
}

// LookupConfig configures lookup and master_detail fields
type LookupConfig struct {
	RelatedObjectID      string `json:"related_object_id"`
	RelatedObjectAPIName string `json:"related_object_api_name"`
	RelatedDisplayField  string `json:"related_display_field"`
}

// FormulaConfig configures formula fields
type FormulaConfig struct {
	Expression string                  `json:"expression"`
	ReturnType constants.FieldDataType `json:"return_type"`
}

// AutoNumberConfig configures auto_number fields
type AutoNumberConfig struct {
	DisplayFormat  string `json:"display_format"`
	StartingNumber int    `json:"starting_number"`
}

// Config is the type-specific configuration payload of a field definition.
// Exactly one variant should be set, matching the field's data type.
type Config struct {
	Text       *TextConfig       `json:"text,omitempty"`
	Number     *NumberConfig     `json:"number,omitempty"`
	Picklist   *PicklistConfig   `json:"picklist,omitempty"`
	Lookup     *LookupConfig     `json:"lookup,omitempty"`
	Formula    *FormulaConfig    `json:"formula,omitempty"`
	AutoNumber *AutoNumberConfig `json:"auto_number,omitempty"`
}

// IsZero reports whether no variant is set
func (c Config) IsZero() bool {
	return c.Text == nil && c.Number == nil && c.Picklist == nil &&
		c.Lookup == nil && c.Formula == nil && c.AutoNumber == nil
}

// Value implements driver.Valuer so a Config can be stored in a JSON column
func (c Config) Value() (driver.Value, error) {
	if c.IsZero() {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for reading a Config back from a JSON column
func (c *Config) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Config{}
		return nil
	case []byte:
		if len(v) == 0 {
			*c = Config{}
			return nil
		}
		return json.Unmarshal(v, c)
	case string:
		if v == "" {
			*c = Config{}
			return nil
		}
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into fieldtypes.Config", src)
	}
}
