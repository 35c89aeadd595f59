package constants

// DefaultOrgID is the organization used by single-tenant deployments and
// bootstrap seeding
const DefaultOrgID = "org-default"

// Profile IDs for the built-in permission profiles
const (
	ProfileSystemAdmin  = "system_admin"
	ProfileStandardUser = "standard_user"
)

// IsSystemAdmin checks if a profile ID is the system admin profile
func IsSystemAdmin(profileID string) bool {
	return profileID == ProfileSystemAdmin
}

// IsSuperUser checks if a profile ID has super user privileges
func IsSuperUser(profileID string) bool {
	return profileID == ProfileSystemAdmin
}

// Permission operations
const (
	PermRead   = "read"
	PermCreate = "create"
	PermEdit   = "edit"
	PermDelete = "delete"
)
