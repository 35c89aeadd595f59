package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

// AuditRepository persists the append-only audit log
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends one audit entry
func (r *AuditRepository) Insert(ctx context.Context, exec Executor, entry *models.AuditEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, org_id, actor_id, action, entity_type, entity_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, constants.TableAuditLog)

	if _, err := exec.ExecContext(ctx, query,
		entry.ID, entry.OrgID, entry.ActorID, entry.Action,
		entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// List returns recent audit entries for an organization, newest first.
// entityType filters by entity kind when non-empty.
func (r *AuditRepository) List(ctx context.Context, orgID, entityType string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > constants.DefaultMaxLimit {
		limit = constants.DefaultLimit
	}

	query := fmt.Sprintf(`
		SELECT id, org_id, actor_id, action, entity_type, entity_id, detail, created_at
		FROM %s
		WHERE org_id = ?
	`, constants.TableAuditLog)
	args := []interface{}{orgID}

	if entityType != "" {
		query += " AND entity_type = ?"
		args = append(args, entityType)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.OrgID, &e.ActorID, &e.Action,
			&e.EntityType, &e.EntityID, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if detail.Valid {
			e.Detail = &detail.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteOlderThan prunes audit entries created before the cutoff and returns
// the number of rows removed
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE created_at < ?", constants.TableAuditLog)
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit log: %w", err)
	}
	return result.RowsAffected()
}
