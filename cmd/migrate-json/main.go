package main

import (
	"flag"
	"fmt"
	"os"

	"hospital-equipment-tracker/internal/config"
	"hospital-equipment-tracker/internal/database"
	"hospital-equipment-tracker/internal/legacy"
	"hospital-equipment-tracker/internal/logger"
	"hospital-equipment-tracker/internal/repository"
	"hospital-equipment-tracker/internal/service"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "data", "Directory holding ppm.json, ocm.json, training.json and settings.json")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	auditRepo := repository.NewAuditRepo(db)
	settingsService := service.NewSettingsService(repository.NewSettingsRepo(db), auditRepo, cfg.Jobs.ReminderDays, log)
	migrator := legacy.NewMigrator(
		service.NewPPMService(repository.NewPPMRepo(db), auditRepo, log),
		service.NewOCMService(repository.NewOCMRepo(db), auditRepo, log),
		service.NewTrainingService(repository.NewTrainingRepo(db), auditRepo, log),
		settingsService,
		log,
	)

	report, err := migrator.Run(*dir)
	if err != nil {
		log.Fatal("Legacy migration failed", zap.Error(err))
	}

	failed := 0
	for file, counts := range report {
		fmt.Printf("%-14s created=%d updated=%d failed=%d\n", file, counts.Created, counts.Updated, counts.Failed)
		failed += counts.Failed
	}
	if failed > 0 {
		os.Exit(2)
	}
}
