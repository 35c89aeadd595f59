package bootstrap

import (
	"fmt"
	"log"

	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/pkg/constants"
)

// Metadata table DDL. Definitions are stored as rows; no per-object physical
// tables are created.
var systemTableDDL = []struct {
	name string
	ddl  string
}{
	{constants.TableObject, `
		CREATE TABLE IF NOT EXISTS ` + constants.TableObject + ` (
			id VARCHAR(64) PRIMARY KEY,
			org_id VARCHAR(64) NOT NULL,
			api_name VARCHAR(100) NOT NULL,
			label VARCHAR(255) NOT NULL,
			plural_label VARCHAR(255) NOT NULL,
			description TEXT,
			icon VARCHAR(64) NOT NULL DEFAULT '',
			color VARCHAR(16),
			sharing_model VARCHAR(32) NOT NULL DEFAULT 'private',
			has_activities BOOLEAN NOT NULL DEFAULT FALSE,
			has_notes BOOLEAN NOT NULL DEFAULT FALSE,
			has_attachments BOOLEAN NOT NULL DEFAULT FALSE,
			has_record_types BOOLEAN NOT NULL DEFAULT FALSE,
			is_standard BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_modified_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_org_api_name (org_id, api_name)
		)`},
	{constants.TableField, `
		CREATE TABLE IF NOT EXISTS ` + constants.TableField + ` (
			id VARCHAR(64) PRIMARY KEY,
			object_id VARCHAR(64) NOT NULL,
			api_name VARCHAR(100) NOT NULL,
			label VARCHAR(255) NOT NULL,
			data_type VARCHAR(32) NOT NULL,
			config JSON,
			is_required BOOLEAN NOT NULL DEFAULT FALSE,
			is_unique BOOLEAN NOT NULL DEFAULT FALSE,
			is_visible BOOLEAN NOT NULL DEFAULT TRUE,
			is_read_only BOOLEAN NOT NULL DEFAULT FALSE,
			is_standard BOOLEAN NOT NULL DEFAULT FALSE,
			is_name_field BOOLEAN NOT NULL DEFAULT FALSE,
			is_sensitive BOOLEAN NOT NULL DEFAULT FALSE,
			is_audited BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			help_text TEXT,
			description TEXT,
			display_order INT NOT NULL DEFAULT 0,
			created_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_modified_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_object_api_name (object_id, api_name),
			KEY idx_object (object_id)
		)`},
	{constants.TablePicklistValue, `
		CREATE TABLE IF NOT EXISTS ` + constants.TablePicklistValue + ` (
			id VARCHAR(64) PRIMARY KEY,
			field_id VARCHAR(64) NOT NULL,
			value VARCHAR(255) NOT NULL,
			label VARCHAR(255) NOT NULL,
			display_order INT NOT NULL DEFAULT 0,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			color VARCHAR(16),
			controlling_field_id VARCHAR(64),
			controlling_values JSON,
			UNIQUE KEY uniq_field_value (field_id, value)
		)`},
	{constants.TableFieldPerms, `
		CREATE TABLE IF NOT EXISTS ` + constants.TableFieldPerms + ` (
			profile_id VARCHAR(64) NOT NULL,
			object_id VARCHAR(64) NOT NULL,
			field_id VARCHAR(64) NOT NULL,
			is_visible BOOLEAN NOT NULL DEFAULT FALSE,
			is_editable BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (profile_id, field_id),
			KEY idx_profile_object (profile_id, object_id)
		)`},
	{constants.TableAuditLog, `
		CREATE TABLE IF NOT EXISTS ` + constants.TableAuditLog + ` (
			id CHAR(26) PRIMARY KEY,
			org_id VARCHAR(64) NOT NULL,
			actor_id VARCHAR(64) NOT NULL,
			action VARCHAR(32) NOT NULL,
			entity_type VARCHAR(32) NOT NULL,
			entity_id VARCHAR(64) NOT NULL,
			detail JSON,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_org_entity (org_id, entity_type),
			KEY idx_created (created_at)
		)`},
	{constants.TableProfile, `
		CREATE TABLE IF NOT EXISTS ` + constants.TableProfile + ` (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_super_user BOOLEAN NOT NULL DEFAULT FALSE
		)`},
	{constants.TableUser, `
		CREATE TABLE IF NOT EXISTS ` + constants.TableUser + ` (
			id VARCHAR(64) PRIMARY KEY,
			org_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			profile_id VARCHAR(64) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE KEY uniq_email (email)
		)`},
}

// InitializeSchema creates the metadata tables if they do not exist yet
func InitializeSchema(db *database.Connection) error {
	log.Println("🔧 Initializing metadata schema...")

	for _, table := range systemTableDDL {
		if _, err := db.DB().Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", table.name, err)
		}
	}

	log.Printf("✅ Metadata schema ready (%d tables)", len(systemTableDDL))
	return nil
}
