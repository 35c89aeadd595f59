package constants

import "strings"

// SystemTablePrefix is the prefix for all metadata tables
const SystemTablePrefix = "_System_"

// Metadata table names
const (
	TableObject        = "_System_Object"
	TableField         = "_System_Field"
	TablePicklistValue = "_System_PicklistValue"
	TableFieldPerms    = "_System_FieldPerms"
	TableAuditLog      = "_System_AuditLog"
	TableUser          = "_System_User"
	TableProfile       = "_System_Profile"
)

// Custom entity suffix, appended to user-created object and field api names
const CustomSuffix = "__c"

// IsSystemTable checks if a table name is a system table
func IsSystemTable(tableName string) bool {
	return strings.HasPrefix(tableName, SystemTablePrefix)
}

// Common column names shared across metadata tables
const (
	ColID               = "id"
	ColOrgID            = "org_id"
	ColObjectID         = "object_id"
	ColFieldID          = "field_id"
	ColAPIName          = "api_name"
	ColLabel            = "label"
	ColPluralLabel      = "plural_label"
	ColDescription      = "description"
	ColIsActive         = "is_active"
	ColIsStandard       = "is_standard"
	ColDisplayOrder     = "display_order"
	ColCreatedDate      = "created_date"
	ColLastModifiedDate = "last_modified_date"
)
