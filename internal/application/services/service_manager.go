package services

import (
	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/internal/infrastructure/persistence"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	TxManager   *persistence.TransactionManager
	Metadata    *MetadataService
	Permissions *PermissionService
	Audit       *AuditService
	Retention   *RetentionService
	Auth        *AuthService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection) *ServiceManager {
	sm := &ServiceManager{db: db}

	// Initialize services in dependency order
	sm.TxManager = persistence.NewTransactionManager(db)
	sm.Audit = NewAuditService(persistence.NewAuditRepository(db.DB()))
	sm.Retention = NewRetentionService(sm.Audit)

	sm.Metadata = NewMetadataService(db, sm.TxManager)
	sm.Permissions = NewPermissionService(persistence.NewPermissionRepository(db.DB()), sm.TxManager)

	// Metadata and permissions reference each other
	sm.Metadata.SetPermissionService(sm.Permissions)
	sm.Metadata.SetAuditService(sm.Audit)
	sm.Permissions.SetMetadataService(sm.Metadata)
	sm.Permissions.SetAuditService(sm.Audit)

	sm.Auth = NewAuthService(persistence.NewUserRepository(db.DB()))

	return sm
}

// Start launches background jobs
func (sm *ServiceManager) Start() error {
	return sm.Retention.Start()
}

// Stop halts background jobs
func (sm *ServiceManager) Stop() {
	sm.Retention.Stop()
}
