package models

import (
	"github.com/doulacrm/backend/pkg/constants"
)

// UserSession represents an authenticated user session
type UserSession struct {
	ID            string  `json:"id"`
	OrgID         string  `json:"org_id"`
	Name          string  `json:"name"`
	Email         *string `json:"email,omitempty"`
	ProfileID     string  `json:"profile_id"`
	IsSystemAdmin bool    `json:"is_system_admin"`
}

// IsSuperUser checks if the user has super user privileges
func (u *UserSession) IsSuperUser() bool {
	return constants.IsSuperUser(u.ProfileID)
}

// Profile represents a permission profile
type Profile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsSuperUser bool    `json:"is_super_user,omitempty"`
}

// User is a stored account row, used by bootstrap and the auth service
type User struct {
	ID           string `json:"id"`
	OrgID        string `json:"org_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	ProfileID    string `json:"profile_id"`
	IsActive     bool   `json:"is_active"`
}
