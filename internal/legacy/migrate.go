package legacy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hospital-equipment-tracker/internal/service"

	"go.uber.org/zap"
)

const (
	PPMFile      = "ppm.json"
	OCMFile      = "ocm.json"
	TrainingFile = "training.json"
	SettingsFile = "settings.json"
)

// Counts is the outcome for one legacy file
type Counts struct {
	Created int
	Updated int
	Failed  int
}

// Report maps file names to their counts. Missing files are absent.
type Report map[string]*Counts

// Migrator upserts legacy records through the services so that the usual
// validation, quarter chaining and audit logging apply.
type Migrator struct {
	ppmService      *service.PPMService
	ocmService      *service.OCMService
	trainingService *service.TrainingService
	settingsService *service.SettingsService
	log             *zap.Logger
}

func NewMigrator(
	ppmService *service.PPMService,
	ocmService *service.OCMService,
	trainingService *service.TrainingService,
	settingsService *service.SettingsService,
	log *zap.Logger,
) *Migrator {
	return &Migrator{
		ppmService:      ppmService,
		ocmService:      ocmService,
		trainingService: trainingService,
		settingsService: settingsService,
		log:             log,
	}
}

// Run migrates every legacy file found in dir. Per-entry failures are logged
// and counted; only unreadable files abort the run.
func (m *Migrator) Run(dir string) (Report, error) {
	report := Report{}

	steps := []struct {
		file string
		run  func(io.Reader) (*Counts, error)
	}{
		{PPMFile, m.migratePPM},
		{OCMFile, m.migrateOCM},
		{TrainingFile, m.migrateTraining},
		{SettingsFile, m.migrateSettings},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			m.log.Info("Legacy file not found, skipping", zap.String("file", path))
			continue
		}
		if err != nil {
			return report, fmt.Errorf("open %s: %w", path, err)
		}

		counts, err := step.run(f)
		f.Close()
		if err != nil {
			return report, fmt.Errorf("migrate %s: %w", path, err)
		}
		report[step.file] = counts
		m.log.Info("Legacy file migrated",
			zap.String("file", path),
			zap.Int("created", counts.Created),
			zap.Int("updated", counts.Updated),
			zap.Int("failed", counts.Failed),
		)
	}
	return report, nil
}

func (m *Migrator) migratePPM(r io.Reader) (*Counts, error) {
	entries, err := ReadPPM(r)
	if err != nil {
		return nil, err
	}
	return upsertAll(m.log, PPMFile, entries, func(in service.PPMInput) (string, bool, error) {
		created, err := m.ppmService.Upsert(in, 0)
		return in.Serial, created, err
	}), nil
}

func (m *Migrator) migrateOCM(r io.Reader) (*Counts, error) {
	entries, err := ReadOCM(r)
	if err != nil {
		return nil, err
	}
	return upsertAll(m.log, OCMFile, entries, func(in service.OCMInput) (string, bool, error) {
		created, err := m.ocmService.Upsert(in, 0)
		return in.Serial, created, err
	}), nil
}

func (m *Migrator) migrateTraining(r io.Reader) (*Counts, error) {
	entries, err := ReadTraining(r)
	if err != nil {
		return nil, err
	}
	return upsertAll(m.log, TrainingFile, entries, func(in service.TrainingInput) (string, bool, error) {
		created, err := m.trainingService.Upsert(in, 0)
		return in.EmployeeID, created, err
	}), nil
}

func (m *Migrator) migrateSettings(r io.Reader) (*Counts, error) {
	base, err := m.settingsService.Get()
	if err != nil {
		return nil, err
	}
	in, err := ReadSettings(r, *base)
	if err != nil {
		return nil, err
	}
	if _, err := m.settingsService.Update(in, 0); err != nil {
		m.log.Warn("Legacy settings rejected", zap.Error(err))
		return &Counts{Failed: 1}, nil
	}
	return &Counts{Updated: 1}, nil
}

func upsertAll[T any](log *zap.Logger, file string, entries []Entry[T], upsert func(T) (string, bool, error)) *Counts {
	counts := &Counts{}
	for _, e := range entries {
		if e.Err != nil {
			counts.Failed++
			log.Warn("Legacy entry unreadable", zap.String("file", file), zap.Int("index", e.Index), zap.Error(e.Err))
			continue
		}
		key, created, err := upsert(e.Input)
		if err != nil {
			counts.Failed++
			log.Warn("Legacy entry rejected",
				zap.String("file", file),
				zap.Int("index", e.Index),
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		if created {
			counts.Created++
		} else {
			counts.Updated++
		}
	}
	return counts
}
