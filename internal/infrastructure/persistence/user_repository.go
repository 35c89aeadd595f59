package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

// UserRepository persists account rows
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns one active user by email, or nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, org_id, name, email, password_hash, profile_id, is_active
		FROM %s WHERE email = ? LIMIT 1
	`, constants.TableUser)

	var u models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.OrgID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfileID, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// CheckUserExistsByEmail reports whether an account exists for an email
func (r *UserRepository) CheckUserExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE email = ?)", constants.TableUser)
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return exists, nil
}

// UpsertProfile ensures a builtin permission profile row exists
func (r *UserRepository) UpsertProfile(ctx context.Context, exec Executor, profile models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, is_active, is_super_user)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description), is_active = VALUES(is_active)
	`, constants.TableProfile)

	if _, err := exec.ExecContext(ctx, query,
		profile.ID, profile.Name, profile.Description, profile.IsActive, profile.IsSuperUser); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// Insert persists a new account row
func (r *UserRepository) Insert(ctx context.Context, exec Executor, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, org_id, name, email, password_hash, profile_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, constants.TableUser)

	if _, err := exec.ExecContext(ctx, query,
		user.ID, user.OrgID, user.Name, user.Email, user.PasswordHash, user.ProfileID, user.IsActive); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
