package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/internal/infrastructure/persistence"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
	"github.com/doulacrm/backend/pkg/formula"
	"github.com/doulacrm/backend/pkg/models"
)

// MetadataService manages object and field definitions with a per-org cache
type MetadataService struct {
	db        *database.Connection
	txManager *persistence.TransactionManager
	objects   *persistence.ObjectRepository
	fields    *persistence.FieldRepository
	picklists *persistence.PicklistRepository
	formulas  *formula.Engine

	mu sync.RWMutex
	// Cache, keyed by org id. Objects carry their fields and picklist values.
	orgObjects map[string][]*models.ObjectDefinition
	orgByName  map[string]map[string]*models.ObjectDefinition

	// Dependencies
	permissionSvc *PermissionService
	auditSvc      *AuditService
}

// NewMetadataService creates a new MetadataService
func NewMetadataService(db *database.Connection, txManager *persistence.TransactionManager) *MetadataService {
	return &MetadataService{
		db:         db,
		txManager:  txManager,
		objects:    persistence.NewObjectRepository(db.DB()),
		fields:     persistence.NewFieldRepository(db.DB()),
		picklists:  persistence.NewPicklistRepository(db.DB()),
		formulas:   formula.NewEngine(),
		orgObjects: make(map[string][]*models.ObjectDefinition),
		orgByName:  make(map[string]map[string]*models.ObjectDefinition),
	}
}

// SetPermissionService sets the permission service dependency (break circular dependency)
func (ms *MetadataService) SetPermissionService(ps *PermissionService) {
	ms.permissionSvc = ps
}

// SetAuditService sets the audit service dependency
func (ms *MetadataService) SetAuditService(as *AuditService) {
	ms.auditSvc = as
}

// ListObjects returns all object definitions of an organization, standard
// objects first, loading the cache on first use.
func (ms *MetadataService) ListObjects(ctx context.Context, orgID string) ([]*models.ObjectDefinition, error) {
	if err := ms.ensureOrgLoaded(ctx, orgID); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.orgObjects[orgID], nil
}

// GetObject returns one object definition with its fields and picklist
// values, or a NotFoundError.
func (ms *MetadataService) GetObject(ctx context.Context, orgID, apiName string) (*models.ObjectDefinition, error) {
	if err := ms.ensureOrgLoaded(ctx, orgID); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	obj, ok := ms.orgByName[orgID][strings.ToLower(apiName)]
	if !ok {
		return nil, errors.NewNotFoundError("Object", apiName)
	}
	return obj, nil
}

// ObjectAPINames returns the lowercase api names currently taken in an
// organization, for collision checks in creation workflows.
func (ms *MetadataService) ObjectAPINames(ctx context.Context, orgID string) ([]string, error) {
	objs, err := ms.ListObjects(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(objs))
	for _, o := range objs {
		names = append(names, strings.ToLower(o.APIName))
	}
	return names, nil
}

// RefreshOrg drops and reloads the cache of one organization
func (ms *MetadataService) RefreshOrg(ctx context.Context, orgID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.loadOrgLocked(ctx, orgID)
}

// InvalidateOrg drops the cached metadata of one organization so the next
// read reloads it
func (ms *MetadataService) InvalidateOrg(orgID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.orgObjects, orgID)
	delete(ms.orgByName, orgID)
}

// ensureOrgLoaded loads an org's metadata on first access (double-checked locking)
func (ms *MetadataService) ensureOrgLoaded(ctx context.Context, orgID string) error {
	ms.mu.RLock()
	_, loaded := ms.orgByName[orgID]
	ms.mu.RUnlock()
	if loaded {
		return nil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, loaded := ms.orgByName[orgID]; loaded {
		return nil
	}
	return ms.loadOrgLocked(ctx, orgID)
}

// loadOrgLocked reloads one org's metadata assuming the write lock is held
func (ms *MetadataService) loadOrgLocked(ctx context.Context, orgID string) error {
	log.Printf("🔄 Loading metadata for org %s...", orgID)

	objs, err := ms.objects.List(ctx, orgID)
	if err != nil {
		return err
	}

	byName := make(map[string]*models.ObjectDefinition, len(objs))
	for _, obj := range objs {
		fields, err := ms.fields.GetForObject(ctx, obj.ID)
		if err != nil {
			return err
		}
		for i := range fields {
			if fieldtypes.IsPicklist(fields[i].DataType) {
				values, err := ms.picklists.GetForField(ctx, fields[i].ID)
				if err != nil {
					return err
				}
				fields[i].PicklistValues = values
			}
		}
		obj.Fields = fields
		byName[strings.ToLower(obj.APIName)] = obj
	}

	ms.orgObjects[orgID] = objs
	ms.orgByName[orgID] = byName

	log.Printf("✅ Metadata loaded for org %s: %d objects", orgID, len(objs))
	return nil
}

// sampleFormulaEnv builds a typed sample environment from an object's fields
// so formula expressions can be compile-checked against them.
func sampleFormulaEnv(fields []models.FieldDefinition) map[string]interface{} {
	env := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		switch f.DataType {
		case constants.FieldTypeNumber, constants.FieldTypeCurrency, constants.FieldTypePercent:
			env[f.APIName] = 0.0
		case constants.FieldTypeCheckbox:
			env[f.APIName] = false
		default:
			env[f.APIName] = ""
		}
	}
	return env
}
