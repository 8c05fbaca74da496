package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	BackupFull     = "full"
	BackupSettings = "settings"

	backupMarker = "_backup_"
)

// ObjectStore is the subset of the MinIO client used for off-site copies
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Snapshot is the content of a backup file
type Snapshot struct {
	Kind      string                  `json:"kind"`
	CreatedAt time.Time               `json:"created_at"`
	PPM       []models.PPMEquipment   `json:"ppm,omitempty"`
	OCM       []models.OCMEquipment   `json:"ocm,omitempty"`
	Trainings []models.TrainingRecord `json:"trainings,omitempty"`
	Settings  *models.Setting         `json:"settings"`
}

type BackupInfo struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Uploaded  bool      `json:"uploaded"`
}

type BackupService struct {
	ppmRepo         *repository.PPMRepository
	ocmRepo         *repository.OCMRepository
	trainingRepo    *repository.TrainingRepository
	settingsService *SettingsService
	store           ObjectStore
	bucket          string
	dir             string
	audit           auditor
	log             *zap.Logger
	now             func() time.Time
}

// NewBackupService writes backups to dir. store may be nil to keep backups local only.
func NewBackupService(
	ppmRepo *repository.PPMRepository,
	ocmRepo *repository.OCMRepository,
	trainingRepo *repository.TrainingRepository,
	settingsService *SettingsService,
	auditRepo *repository.AuditRepository,
	store ObjectStore,
	bucket string,
	dir string,
	log *zap.Logger,
) *BackupService {
	return &BackupService{
		ppmRepo:         ppmRepo,
		ocmRepo:         ocmRepo,
		trainingRepo:    trainingRepo,
		settingsService: settingsService,
		store:           store,
		bucket:          bucket,
		dir:             dir,
		audit:           auditor{repo: auditRepo, log: log},
		log:             log,
		now:             time.Now,
	}
}

// Create writes a full or settings-only snapshot and uploads it when object storage is configured
func (s *BackupService) Create(ctx context.Context, kind string, userID uint) (*BackupInfo, error) {
	if kind == "" {
		kind = BackupFull
	}
	if kind != BackupFull && kind != BackupSettings {
		return nil, invalidInput("unknown backup type %q", kind)
	}

	snap, err := s.snapshot(kind)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := fmt.Sprintf("%s%s%s_%s.json", kind, backupMarker, snap.CreatedAt.Format("20060102_150405"), uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	info := &BackupInfo{Name: name, Kind: kind, Size: int64(len(data)), CreatedAt: snap.CreatedAt}
	if s.store != nil {
		_, err := s.store.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/json",
		})
		if err != nil {
			s.log.Warn("Backup upload failed; local copy kept", zap.String("name", name), zap.Error(err))
		} else {
			info.Uploaded = true
		}
	}

	s.audit.record(userID, "backup_create", "Created %s backup %s", kind, name)
	s.log.Info("Backup created", zap.String("name", name), zap.Bool("uploaded", info.Uploaded))

	return info, nil
}

func (s *BackupService) snapshot(kind string) (*Snapshot, error) {
	setting, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Kind: kind, CreatedAt: s.now().UTC(), Settings: setting}
	if kind == BackupSettings {
		return snap, nil
	}

	if snap.PPM, err = s.ppmRepo.All(); err != nil {
		return nil, fmt.Errorf("failed to read PPM equipment: %w", err)
	}
	if snap.OCM, err = s.ocmRepo.All(); err != nil {
		return nil, fmt.Errorf("failed to read OCM equipment: %w", err)
	}
	if snap.Trainings, err = s.trainingRepo.All(); err != nil {
		return nil, fmt.Errorf("failed to read training records: %w", err)
	}
	return snap, nil
}

// List returns the local backups, newest first
func (s *BackupService) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		kind, ok := backupKind(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{Name: entry.Name(), Kind: kind, Size: fi.Size(), CreatedAt: fi.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Delete removes a backup by file name
func (s *BackupService) Delete(ctx context.Context, name string, userID uint) error {
	if _, ok := backupKind(name); !ok || filepath.Base(name) != name {
		return invalidInput("invalid backup name %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	s.removeRemote(ctx, name)

	s.audit.record(userID, "backup_delete", "Deleted backup %s", name)
	return nil
}

// Prune deletes backups older than maxAgeDays and returns how many were removed
func (s *BackupService) Prune(ctx context.Context, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		return 0, nil
	}
	backups, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -maxAgeDays)
	removed := 0
	for _, b := range backups {
		if !b.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, b.Name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("Failed to prune backup", zap.String("name", b.Name), zap.Error(err))
			continue
		}
		s.removeRemote(ctx, b.Name)
		removed++
	}

	if removed > 0 {
		s.log.Info("Old backups pruned", zap.Int("removed", removed), zap.Int("max_age_days", maxAgeDays))
	}
	return removed, nil
}

func (s *BackupService) removeRemote(ctx context.Context, name string) {
	if s.store == nil {
		return
	}
	if err := s.store.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		s.log.Warn("Failed to remove uploaded backup", zap.String("name", name), zap.Error(err))
	}
}

// backupKind extracts the kind prefix from a backup file name
func backupKind(name string) (string, bool) {
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	kind, _, ok := strings.Cut(name, backupMarker)
	if !ok || (kind != BackupFull && kind != BackupSettings) {
		return "", false
	}
	return kind, true
}
