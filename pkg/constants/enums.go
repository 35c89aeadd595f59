package constants

// FieldDataType represents the data type of a field definition
type FieldDataType string

const (
	FieldTypeText          FieldDataType = "text"
	FieldTypeTextArea      FieldDataType = "textarea"
	FieldTypeRichText      FieldDataType = "rich_text"
	FieldTypeNumber        FieldDataType = "number"
	FieldTypeCurrency      FieldDataType = "currency"
	FieldTypePercent       FieldDataType = "percent"
	FieldTypeDate          FieldDataType = "date"
	FieldTypeDateTime      FieldDataType = "datetime"
	FieldTypeCheckbox      FieldDataType = "checkbox"
	FieldTypePicklist      FieldDataType = "picklist"
	FieldTypeMultiPicklist FieldDataType = "multipicklist"
	FieldTypeLookup        FieldDataType = "lookup"
	FieldTypeMasterDetail  FieldDataType = "master_detail"
	FieldTypeEmail         FieldDataType = "email"
	FieldTypePhone         FieldDataType = "phone"
	FieldTypeURL           FieldDataType = "url"
	FieldTypeFormula       FieldDataType = "formula"
	FieldTypeAutoNumber    FieldDataType = "auto_number"
)

// GetAllFieldDataTypes returns all valid field data types as a slice of strings
func GetAllFieldDataTypes() []string {
	return []string{
		string(FieldTypeText),
		string(FieldTypeTextArea),
		string(FieldTypeRichText),
		string(FieldTypeNumber),
		string(FieldTypeCurrency),
		string(FieldTypePercent),
		string(FieldTypeDate),
		string(FieldTypeDateTime),
		string(FieldTypeCheckbox),
		string(FieldTypePicklist),
		string(FieldTypeMultiPicklist),
		string(FieldTypeLookup),
		string(FieldTypeMasterDetail),
		string(FieldTypeEmail),
		string(FieldTypePhone),
		string(FieldTypeURL),
		string(FieldTypeFormula),
		string(FieldTypeAutoNumber),
	}
}

// SharingModel represents object-level default cross-user access
type SharingModel string

const (
	SharingModelPrivate    SharingModel = "private"
	SharingModelRead       SharingModel = "read"
	SharingModelReadWrite  SharingModel = "read_write"
	SharingModelFullAccess SharingModel = "full_access"
)

// IsValidSharingModel reports whether s is a known sharing model
func IsValidSharingModel(s SharingModel) bool {
	switch s {
	case SharingModelPrivate, SharingModelRead, SharingModelReadWrite, SharingModelFullAccess:
		return true
	}
	return false
}

// AuditAction represents the kind of mutation recorded in the audit log
type AuditAction string

const (
	AuditActionCreate     AuditAction = "create"
	AuditActionUpdate     AuditAction = "update"
	AuditActionDelete     AuditAction = "delete"
	AuditActionDeactivate AuditAction = "deactivate"
)

// Entity kinds recorded in the audit log
const (
	AuditEntityObject        = "object"
	AuditEntityField         = "field"
	AuditEntityPicklistValue = "picklist_value"
	AuditEntityPermission    = "permission"
)
