package bootstrap

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/internal/infrastructure/persistence"
	"github.com/doulacrm/backend/pkg/auth"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
	"github.com/doulacrm/backend/pkg/utils"
)

//go:embed system_data.json
var systemDataJSON []byte

type systemData struct {
	Profiles []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		IsSuperUser bool   `json:"is_super_user"`
	} `json:"profiles"`
	Users []struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		ProfileID string `json:"profile_id"`
	} `json:"users"`
}

// InitializeSystemData ensures the builtin profiles and the seeded admin
// account exist. Must run before the server accepts requests.
func InitializeSystemData(db *database.Connection) error {
	log.Println("🔧 Initializing system data...")

	var data systemData
	if err := json.Unmarshal(systemDataJSON, &data); err != nil {
		return fmt.Errorf("failed to parse system_data.json: %w", err)
	}

	ctx := context.Background()
	users := persistence.NewUserRepository(db.DB())

	for _, p := range data.Profiles {
		description := p.Description
		profile := models.Profile{
			ID:          p.ID,
			Name:        p.Name,
			Description: &description,
			IsActive:    true,
			IsSuperUser: p.IsSuperUser,
		}
		if err := users.UpsertProfile(ctx, db.DB(), profile); err != nil {
			return err
		}
	}
	log.Printf("   ✅ Ensured %d builtin profiles", len(data.Profiles))

	for _, u := range data.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if !auth.IsValidEmail(email) {
			return fmt.Errorf("seed user %q has an invalid email address", u.Name)
		}
		if err := auth.ValidatePasswordStrength(u.Password); err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
		exists, err := users.CheckUserExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		user := &models.User{
			ID:           utils.GenerateID(),
			OrgID:        constants.DefaultOrgID,
			Name:         u.Name,
			Email:        email,
			PasswordHash: hash,
			ProfileID:    u.ProfileID,
			IsActive:     true,
		}
		if err := users.Insert(ctx, db.DB(), user); err != nil {
			return err
		}
		log.Printf("   ✅ Seeded user %s (%s)", email, u.ProfileID)
	}
	return nil
}
