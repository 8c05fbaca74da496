package service

import (
	"fmt"
	"strings"

	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/repository"

	"go.uber.org/zap"
)

// SettingsInput is the payload accepted by PUT /settings.
// The push fields are stored for clients that still send them.
type SettingsInput struct {
	EmailNotificationsEnabled       bool   `json:"email_notifications_enabled"`
	EmailReminderIntervalMinutes    int    `json:"email_reminder_interval_minutes" validate:"min=1,max=10080"`
	RecipientEmail                  string `json:"recipient_email" validate:"omitempty,emaillist"`
	ReminderDays                    int    `json:"reminder_days" validate:"min=0,max=365"`
	PushNotificationsEnabled        bool   `json:"push_notifications_enabled"`
	PushNotificationIntervalMinutes int    `json:"push_notification_interval_minutes" validate:"min=1,max=10080"`
	AutomaticBackupEnabled          bool   `json:"automatic_backup_enabled"`
	AutomaticBackupIntervalHours    int    `json:"automatic_backup_interval_hours" validate:"min=1,max=720"`
}

type SettingsService struct {
	settingsRepo        *repository.SettingsRepository
	audit               auditor
	defaultReminderDays int
}

func NewSettingsService(settingsRepo *repository.SettingsRepository, auditRepo *repository.AuditRepository, defaultReminderDays int, log *zap.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo:        settingsRepo,
		audit:               auditor{repo: auditRepo, log: log},
		defaultReminderDays: defaultReminderDays,
	}
}

// Get returns the saved settings, or the defaults when none were saved
func (s *SettingsService) Get() (*models.Setting, error) {
	setting, ok, err := s.settingsRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok {
		def := models.DefaultSetting(s.defaultReminderDays)
		return &def, nil
	}
	return setting, nil
}

func (s *SettingsService) Update(in SettingsInput, userID uint) (*models.Setting, error) {
	in.RecipientEmail = strings.Join(splitList(in.RecipientEmail), ",")
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	setting := &models.Setting{
		EmailNotificationsEnabled:       in.EmailNotificationsEnabled,
		EmailReminderIntervalMinutes:    in.EmailReminderIntervalMinutes,
		RecipientEmail:                  in.RecipientEmail,
		ReminderDays:                    in.ReminderDays,
		PushNotificationsEnabled:        in.PushNotificationsEnabled,
		PushNotificationIntervalMinutes: in.PushNotificationIntervalMinutes,
		AutomaticBackupEnabled:          in.AutomaticBackupEnabled,
		AutomaticBackupIntervalHours:    in.AutomaticBackupIntervalHours,
	}
	if err := s.settingsRepo.Save(setting); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.audit.record(userID, "settings_update", "Updated settings (email reminders %t, every %d min, %d days ahead; automatic backups %t, every %d h)",
		setting.EmailNotificationsEnabled, setting.EmailReminderIntervalMinutes, setting.ReminderDays,
		setting.AutomaticBackupEnabled, setting.AutomaticBackupIntervalHours)

	return setting, nil
}
