package services

import (
	"context"
	"log"
	"strings"

	"github.com/doulacrm/backend/internal/infrastructure/persistence"
	"github.com/doulacrm/backend/pkg/auth"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/models"
)

// AuthService handles login and session issuance
type AuthService struct {
	users *persistence.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(users *persistence.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// LoginResult carries the issued token and the session it encodes
type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserSession `json:"user"`
}

// Login verifies credentials and issues a signed session token. Invalid
// email, wrong password and deactivated accounts all return the same
// unauthorized error.
func (as *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.NewValidationError("credentials", "email and password are required")
	}

	user, err := as.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	session := models.UserSession{
		ID:            user.ID,
		OrgID:         user.OrgID,
		Name:          user.Name,
		Email:         &user.Email,
		ProfileID:     user.ProfileID,
		IsSystemAdmin: constants.IsSuperUser(user.ProfileID),
	}

	token, err := auth.GenerateToken(session)
	if err != nil {
		return nil, errors.NewInternalError("failed to issue session token", err)
	}

	log.Printf("✅ User %s logged in", user.Email)
	return &LoginResult{Token: token, User: session}, nil
}
