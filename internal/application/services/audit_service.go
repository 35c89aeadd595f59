package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/doulacrm/backend/internal/infrastructure/persistence"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/models"
)

// AuditService appends and queries the metadata change log. Entry ids are
// ULIDs so the primary key orders entries by creation time.
type AuditService struct {
	repo *persistence.AuditRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(repo *persistence.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends one audit entry through the given executor, so callers can
// write it inside the same transaction as the change it describes. detail is
// JSON-marshaled when non-nil.
func (as *AuditService) Record(ctx context.Context, exec persistence.Executor, user *models.UserSession, action constants.AuditAction, entityType, entityID string, detail interface{}) error {
	entry := &models.AuditEntry{
		ID:         ulid.Make().String(),
		OrgID:      user.OrgID,
		ActorID:    user.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if detail != nil {
		data, err := json.Marshal(detail)
		if err != nil {
			log.Printf("⚠️ Failed to marshal audit detail for %s %s: %v", entityType, entityID, err)
		} else {
			s := string(data)
			entry.Detail = &s
		}
	}
	return as.repo.Insert(ctx, exec, entry)
}

// List returns recent audit entries for the caller's organization, newest
// first. Only system administrators can read the audit log.
func (as *AuditService) List(ctx context.Context, user *models.UserSession, entityType string, limit int) ([]models.AuditEntry, error) {
	if !user.IsSystemAdmin && !user.IsSuperUser() {
		return nil, errors.NewPermissionError("read", "audit log")
	}
	return as.repo.List(ctx, user.OrgID, entityType, limit)
}

// PruneOlderThan removes audit entries created before the cutoff
func (as *AuditService) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return as.repo.DeleteOlderThan(ctx, cutoff)
}
