package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultBackupIntervalHours = 24

// statusRefresher rewrites the cached status column of one equipment table
type statusRefresher interface {
	RefreshStatuses(ctx context.Context) (int, error)
}

// WorkerService periodically recomputes cached equipment statuses, takes the
// automatic settings backups and prunes old backups
type WorkerService struct {
	clock
	refreshers      map[string]statusRefresher
	settingsService *SettingsService
	backupService   *BackupService
	retentionDays   int
	interval        time.Duration
	log             *zap.Logger

	mu         sync.Mutex
	lastBackup time.Time
}

// NewWorkerService builds the worker. backupService may be nil to disable
// automatic backups and pruning.
func NewWorkerService(
	ppmService *PPMService,
	ocmService *OCMService,
	settingsService *SettingsService,
	backupService *BackupService,
	retentionDays int,
	interval time.Duration,
	log *zap.Logger,
) *WorkerService {
	return &WorkerService{
		refreshers: map[string]statusRefresher{
			"ppm": ppmService,
			"ocm": ocmService,
		},
		settingsService: settingsService,
		backupService:   backupService,
		retentionDays:   retentionDays,
		interval:        interval,
		log:             log,
	}
}

// Start runs one pass immediately and then one per interval until ctx is cancelled
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Status refresh worker started", zap.Duration("interval", w.interval))
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Status refresh worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce refreshes every table; a failing table does not stop the others
func (w *WorkerService) RunOnce(ctx context.Context) map[string]int {
	changed := make(map[string]int, len(w.refreshers))
	for kind, refresher := range w.refreshers {
		n, err := refresher.RefreshStatuses(ctx)
		if err != nil {
			w.log.Error("Status refresh failed", zap.String("type", kind), zap.Error(err))
			continue
		}
		changed[kind] = n
		if n > 0 {
			w.log.Info("Cached statuses refreshed", zap.String("type", kind), zap.Int("changed", n))
		}
	}

	if w.backupService != nil {
		if _, err := w.AutomaticBackup(ctx); err != nil {
			w.log.Error("Automatic backup failed", zap.Error(err))
		}
		if _, err := w.backupService.Prune(ctx, w.retentionDays); err != nil {
			w.log.Error("Backup pruning failed", zap.Error(err))
		}
	}
	return changed
}

// AutomaticBackup writes a settings backup when automatic backups are
// enabled and the interval has elapsed since the last one. It returns nil
// when no backup was due. Backups are only checked once per worker pass.
func (w *WorkerService) AutomaticBackup(ctx context.Context) (*BackupInfo, error) {
	if w.backupService == nil || w.settingsService == nil {
		return nil, nil
	}
	setting, err := w.settingsService.Get()
	if err != nil {
		return nil, err
	}
	if !setting.AutomaticBackupEnabled {
		return nil, nil
	}
	hours := setting.AutomaticBackupIntervalHours
	if hours <= 0 {
		hours = defaultBackupIntervalHours
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.current()
	if w.lastBackup.IsZero() {
		w.lastBackup = w.newestSettingsBackup(now)
	}
	if !w.lastBackup.IsZero() && now.Sub(w.lastBackup) < time.Duration(hours)*time.Hour {
		return nil, nil
	}

	info, err := w.backupService.Create(ctx, BackupSettings, 0)
	if err != nil {
		return nil, err
	}
	w.lastBackup = now
	return info, nil
}

// newestSettingsBackup finds the last settings backup on disk so that a
// restart does not immediately take another one. Times ahead of now are
// clamped to now.
func (w *WorkerService) newestSettingsBackup(now time.Time) time.Time {
	backups, err := w.backupService.List()
	if err != nil {
		w.log.Warn("Failed to list backups", zap.Error(err))
		return time.Time{}
	}
	for _, b := range backups {
		if b.Kind != BackupSettings {
			continue
		}
		if b.CreatedAt.After(now) {
			return now
		}
		return b.CreatedAt
	}
	return time.Time{}
}
