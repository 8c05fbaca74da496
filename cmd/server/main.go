package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-equipment-tracker/internal/cache"
	"hospital-equipment-tracker/internal/config"
	"hospital-equipment-tracker/internal/database"
	"hospital-equipment-tracker/internal/handler"
	"hospital-equipment-tracker/internal/logger"
	"hospital-equipment-tracker/internal/notify"
	"hospital-equipment-tracker/internal/repository"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/internal/storage"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// 2. Logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("Configuration loaded", zap.String("db_driver", cfg.Database.Driver))

	// 3. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 4. Database
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 5. Repositories
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	ppmRepo := repository.NewPPMRepo(db)
	ocmRepo := repository.NewOCMRepo(db)
	trainingRepo := repository.NewTrainingRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	// 6. Optional infrastructure. Each one is disabled when unconfigured.
	var (
		sentStore service.SentStore
		locker    service.Locker
		notifier  service.Notifier
		objects   service.ObjectStore
	)

	rdb, err := cache.Connect(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, reminders run without dedupe or lock", zap.Error(err))
	} else if rdb != nil {
		defer rdb.Close()
		store := cache.NewStore(rdb, log)
		sentStore, locker = store, store
	}

	if email := notify.NewEmailNotifier(cfg.SMTP, log); email != nil {
		notifier = email
	} else {
		log.Info("SMTP not configured, email reminders disabled")
	}

	minioClient, err := storage.NewClient(cfg.Storage, log)
	if err != nil {
		log.Warn("Object storage unavailable, backups stay local", zap.Error(err))
	} else if minioClient != nil {
		if err := storage.EnsureBucket(ctx, minioClient, cfg.Storage.Bucket, log); err != nil {
			log.Warn("Object storage bucket unavailable, backups stay local", zap.Error(err))
		} else {
			objects = minioClient
		}
	}

	// 7. Services
	authService := service.NewAuthService(userRepo, auditRepo, log)
	userService := service.NewUserService(userRepo, auditRepo, log)
	ppmService := service.NewPPMService(ppmRepo, auditRepo, log)
	ocmService := service.NewOCMService(ocmRepo, auditRepo, log)
	trainingService := service.NewTrainingService(trainingRepo, auditRepo, log)
	settingsService := service.NewSettingsService(settingsRepo, auditRepo, cfg.Jobs.ReminderDays, log)
	reminderService := service.NewReminderService(
		ppmService, ocmService, settingsService,
		notifier, sentStore, locker,
		auditRepo, cfg.Jobs.ReminderInterval, log,
	)
	backupService := service.NewBackupService(
		ppmRepo, ocmRepo, trainingRepo, settingsService, auditRepo,
		objects, cfg.Storage.Bucket, cfg.Backup.Dir, log,
	)
	workerService := service.NewWorkerService(
		ppmService, ocmService, settingsService, backupService,
		cfg.Backup.RetentionDays, cfg.Jobs.StatusRefreshInterval, log,
	)

	// 8. Background jobs stop with ctx
	go reminderService.Start(ctx)
	go workerService.Start(ctx)

	// 9. Router
	gin.SetMode(cfg.Server.GinMode)
	router := handler.NewRouter(cfg.CORS, log, sqlDB.PingContext, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.JWT.RefreshTokenExpiry, cfg.Server.GinMode == gin.ReleaseMode),
		Equipment: handler.NewEquipmentHandler(ppmService, ocmService),
		Training:  handler.NewTrainingHandler(trainingService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Transfer:  handler.NewTransferHandler(service.NewImportExportService(ppmService, ocmService, log), service.NewReportService(ppmService, ocmService)),
		Reminder:  handler.NewReminderHandler(reminderService),
		Backup:    handler.NewBackupHandler(backupService),
		Audit:     handler.NewAuditHandler(service.NewAuditService(auditRepo)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(ppmService, ocmService, trainingService, settingsService)),
		Users:     handler.NewUserHandler(userService),
	})

	// 10. Serve until a signal arrives, then shut down gracefully
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}
