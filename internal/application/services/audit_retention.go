package services

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultRetentionDays  = 365
	defaultPruneSchedule  = "0 3 * * *"
	envAuditRetentionDays = "AUDIT_RETENTION_DAYS"
	envAuditPruneSchedule = "AUDIT_PRUNE_SCHEDULE"
)

// RetentionService prunes expired audit entries on a cron schedule
type RetentionService struct {
	audit         *AuditService
	cron          *cron.Cron
	retentionDays int
	schedule      string
	mu            sync.Mutex
	running       bool
}

// NewRetentionService creates a retention service configured from the
// environment. AUDIT_RETENTION_DAYS sets how long entries are kept and
// AUDIT_PRUNE_SCHEDULE overrides the nightly cron expression.
func NewRetentionService(audit *AuditService) *RetentionService {
	days := defaultRetentionDays
	if v := os.Getenv(envAuditRetentionDays); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		} else {
			log.Printf("⚠️ Invalid %s value '%s', using default %d", envAuditRetentionDays, v, defaultRetentionDays)
		}
	}

	schedule := os.Getenv(envAuditPruneSchedule)
	if schedule == "" {
		schedule = defaultPruneSchedule
	}

	return &RetentionService{
		audit:         audit,
		cron:          cron.New(),
		retentionDays: days,
		schedule:      schedule,
	}
}

// Start schedules the nightly prune job
func (rs *RetentionService) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.running {
		return nil
	}

	if _, err := rs.cron.AddFunc(rs.schedule, rs.prune); err != nil {
		return err
	}
	rs.cron.Start()
	rs.running = true
	log.Printf("⏰ Audit retention started: keeping %d days, schedule '%s'", rs.retentionDays, rs.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running prune to finish
func (rs *RetentionService) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if !rs.running {
		return
	}
	ctx := rs.cron.Stop()
	<-ctx.Done()
	rs.running = false
	log.Println("⏰ Audit retention stopped")
}

func (rs *RetentionService) prune() {
	cutoff := time.Now().UTC().AddDate(0, 0, -rs.retentionDays)
	removed, err := rs.audit.PruneOlderThan(context.Background(), cutoff)
	if err != nil {
		log.Printf("⚠️ Audit prune failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ Audit prune removed %d entries older than %s", removed, cutoff.Format("2006-01-02"))
	}
}
