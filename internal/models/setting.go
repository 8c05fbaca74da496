package models

import "time"

// Setting is the single-row application settings table
type Setting struct {
	ID                              uint      `gorm:"primaryKey" json:"-"`
	EmailNotificationsEnabled       bool      `json:"email_notifications_enabled"`
	EmailReminderIntervalMinutes    int       `json:"email_reminder_interval_minutes"`
	RecipientEmail                  string    `gorm:"size:255" json:"recipient_email"`
	ReminderDays                    int       `json:"reminder_days"`
	PushNotificationsEnabled        bool      `json:"push_notifications_enabled"`
	PushNotificationIntervalMinutes int       `json:"push_notification_interval_minutes"`
	AutomaticBackupEnabled          bool      `json:"automatic_backup_enabled"`
	AutomaticBackupIntervalHours    int       `gorm:"default:24" json:"automatic_backup_interval_hours"`
	UpdatedAt                       time.Time `json:"updated_at"`
}

// TableName specifies the table name for Setting model
func (Setting) TableName() string {
	return "settings"
}

// DefaultSetting is used until an administrator saves settings
func DefaultSetting(reminderDays int) Setting {
	return Setting{
		ID:                              1,
		EmailNotificationsEnabled:       true,
		EmailReminderIntervalMinutes:    60,
		ReminderDays:                    reminderDays,
		PushNotificationsEnabled:        false,
		PushNotificationIntervalMinutes: 60,
		AutomaticBackupEnabled:          false,
		AutomaticBackupIntervalHours:    24,
	}
}
