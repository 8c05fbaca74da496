package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hospital-equipment-tracker/internal/repository"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=../mocks/mock_reminder.go -package=mocks hospital-equipment-tracker/internal/service Notifier,SentStore,Locker

// Notifier delivers a reminder digest
type Notifier interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// SentStore remembers which reminders went out so each is sent once per day
type SentStore interface {
	WasSent(ctx context.Context, key string) (bool, error)
	MarkSent(ctx context.Context, key string, ttl time.Duration) error
}

// Locker guards a reminder cycle across instances. ok is false when another
// holder has the lock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

const (
	reminderLockKey = "locks:reminders"
	reminderLockTTL = 5 * time.Minute
	reminderSentTTL = 36 * time.Hour
)

// ReminderResult summarizes one reminder cycle
type ReminderResult struct {
	Upcoming   int            `json:"upcoming"`
	Sent       int            `json:"sent"`
	Recipients []string       `json:"recipients"`
	Skipped    string         `json:"skipped,omitempty"`
	Items      []UpcomingItem `json:"items"`
}

type ReminderService struct {
	ppmService      *PPMService
	ocmService      *OCMService
	settingsService *SettingsService
	notifier        Notifier
	store           SentStore
	locker          Locker
	audit           auditor
	log             *zap.Logger
	fallback        time.Duration
	clock
}

// NewReminderService wires the reminder job. store and locker may be nil when
// Redis is not configured; reminders are then neither deduplicated nor locked.
func NewReminderService(
	ppmService *PPMService,
	ocmService *OCMService,
	settingsService *SettingsService,
	notifier Notifier,
	store SentStore,
	locker Locker,
	auditRepo *repository.AuditRepository,
	fallbackInterval time.Duration,
	log *zap.Logger,
) *ReminderService {
	return &ReminderService{
		ppmService:      ppmService,
		ocmService:      ocmService,
		settingsService: settingsService,
		notifier:        notifier,
		store:           store,
		locker:          locker,
		audit:           auditor{repo: auditRepo, log: log},
		log:             log,
		fallback:        fallbackInterval,
	}
}

// Upcoming lists maintenance due within the configured reminder window
func (s *ReminderService) Upcoming() ([]UpcomingItem, error) {
	setting, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}
	return s.upcoming(setting.ReminderDays)
}

func (s *ReminderService) upcoming(days int) ([]UpcomingItem, error) {
	ppm, err := s.ppmService.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load PPM equipment: %w", err)
	}
	ocm, err := s.ocmService.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load OCM equipment: %w", err)
	}
	return collectUpcoming(ppm, ocm, s.today(), days), nil
}

// RunOnce sends one reminder digest. Unless force is set, nothing is sent
// while email notifications are disabled in settings.
func (s *ReminderService) RunOnce(ctx context.Context, force bool) (*ReminderResult, error) {
	setting, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}

	result := &ReminderResult{Recipients: splitList(setting.RecipientEmail), Items: []UpcomingItem{}}
	if !force && !setting.EmailNotificationsEnabled {
		result.Skipped = "email notifications disabled"
		return result, nil
	}
	if len(result.Recipients) == 0 {
		result.Skipped = "no recipient configured"
		return result, nil
	}
	if s.notifier == nil {
		result.Skipped = "email delivery not configured"
		return result, nil
	}

	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, reminderLockKey, reminderLockTTL)
		switch {
		case err != nil:
			s.log.Warn("Error obtaining reminder lock; proceeding without lock", zap.Error(err))
		case !ok:
			result.Skipped = "another instance is sending reminders"
			return result, nil
		default:
			defer unlock()
		}
	}

	items, err := s.upcoming(setting.ReminderDays)
	if err != nil {
		return nil, err
	}
	result.Upcoming = len(items)

	day := s.today().Format("2006-01-02")
	pending := make([]UpcomingItem, 0, len(items))
	for _, item := range items {
		if s.store != nil {
			sent, err := s.store.WasSent(ctx, sentKey(item, day))
			if err != nil {
				s.log.Warn("Reminder dedupe lookup failed", zap.String("serial", item.Serial), zap.Error(err))
			} else if sent {
				continue
			}
		}
		pending = append(pending, item)
	}
	if len(pending) == 0 {
		return result, nil
	}

	subject := fmt.Sprintf("Maintenance reminder: %d task(s) due within %d days", len(pending), setting.ReminderDays)
	if err := s.notifier.Send(ctx, result.Recipients, subject, renderDigest(pending)); err != nil {
		return nil, fmt.Errorf("failed to send reminder: %w", err)
	}

	if s.store != nil {
		for _, item := range pending {
			if err := s.store.MarkSent(ctx, sentKey(item, day), reminderSentTTL); err != nil {
				s.log.Warn("Failed to record sent reminder", zap.String("serial", item.Serial), zap.Error(err))
			}
		}
	}

	result.Sent = len(pending)
	result.Items = pending
	s.audit.record(0, "reminder_sent", "Sent %d maintenance reminders to %s", len(pending), strings.Join(result.Recipients, ", "))
	s.log.Info("Reminder digest sent", zap.Int("items", len(pending)), zap.Strings("recipients", result.Recipients))

	return result, nil
}

// Start runs reminder cycles until ctx is cancelled. The interval is re-read
// from settings after every cycle.
func (s *ReminderService) Start(ctx context.Context) {
	s.log.Info("Reminder scheduler started")

	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Reminder scheduler stopped")
			return
		case <-timer.C:
			if _, err := s.RunOnce(ctx, false); err != nil {
				s.log.Error("Reminder cycle failed", zap.Error(err))
			}
			timer.Reset(s.interval())
		}
	}
}

func (s *ReminderService) interval() time.Duration {
	setting, err := s.settingsService.Get()
	if err != nil || setting.EmailReminderIntervalMinutes <= 0 {
		return s.fallback
	}
	return time.Duration(setting.EmailReminderIntervalMinutes) * time.Minute
}

func sentKey(item UpcomingItem, day string) string {
	return fmt.Sprintf("reminders:sent:%s:%s:%s:%s:%s", day, item.Type, item.Serial, item.Task, item.DueDate)
}

func renderDigest(items []UpcomingItem) string {
	var b strings.Builder
	b.WriteString("The following maintenance is due soon:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- [%s] %s %s (%s), %s due %s", item.Type, item.Serial, item.Name, item.Department, item.Task, item.DueDate)
		if item.DaysUntil == 0 {
			b.WriteString(" (today)")
		} else {
			fmt.Fprintf(&b, " (in %d days)", item.DaysUntil)
		}
		if strings.TrimSpace(item.Engineer) != "" {
			fmt.Fprintf(&b, ", engineer: %s", item.Engineer)
		}
		b.WriteString("\n")
	}
	return b.String()
}
