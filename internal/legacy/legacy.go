// Package legacy reads the JSON files the previous version of the tracker
// kept on disk and converts them into service inputs.
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hospital-equipment-tracker/internal/maintenance"
	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/service"
)

// text accepts a JSON string, number or null
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = text(n.String())
	return nil
}

func (t text) String() string {
	s := strings.TrimSpace(string(t))
	switch strings.ToUpper(s) {
	case "N/A", "NONE", "NULL":
		return ""
	}
	return s
}

// first returns the first non-empty value
func first(values ...text) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

// date converts the legacy date spellings to DD/MM/YYYY. Unparseable values
// become empty, matching how the old loader treated them.
func date(v text) string {
	s := v.String()
	if s == "" {
		return ""
	}
	if t, ok := maintenance.ParseDate(s); ok {
		return maintenance.FormatDate(t)
	}
	if len(s) >= 10 {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return maintenance.FormatDate(t)
		}
	}
	return ""
}

type quarter map[string]text

// get matches keys case-insensitively and treats "_" and " " alike
func (q quarter) get(names ...string) text {
	for k, v := range q {
		key := strings.ReplaceAll(strings.ToLower(k), " ", "_")
		for _, name := range names {
			if key == name {
				return v
			}
		}
	}
	return ""
}

type ppmEntry struct {
	Department       text    `json:"Department"`
	Name             text    `json:"Name"`
	Model            text    `json:"MODEL"`
	Serial           text    `json:"SERIAL"`
	MfgSerial        text    `json:"MFG_SERIAL"`
	Manufacturer     text    `json:"MANUFACTURER"`
	LogNumber        text    `json:"LOG_Number"`
	LogNo            text    `json:"LOG_NO"`
	InstallationDate text    `json:"Installation_Date"`
	WarrantyEnd      text    `json:"Warranty_End"`
	Q1               quarter `json:"PPM_Q_I"`
	Q2               quarter `json:"PPM_Q_II"`
	Q3               quarter `json:"PPM_Q_III"`
	Q4               quarter `json:"PPM_Q_IV"`
}

func (e ppmEntry) input() service.PPMInput {
	return service.PPMInput{
		Serial:           first(e.Serial, e.MfgSerial),
		Department:       e.Department.String(),
		Name:             e.Name.String(),
		Model:            e.Model.String(),
		Manufacturer:     e.Manufacturer.String(),
		LogNumber:        first(e.LogNumber, e.LogNo),
		InstallationDate: date(e.InstallationDate),
		WarrantyEnd:      date(e.WarrantyEnd),
		Q1Date:           date(e.Q1.get("quarter_date")),
		Q1Engineer:       e.Q1.get("engineer").String(),
		Q2Engineer:       e.Q2.get("engineer").String(),
		Q3Engineer:       e.Q3.get("engineer").String(),
		Q4Engineer:       e.Q4.get("engineer").String(),
	}
}

type ocmEntry struct {
	No               text `json:"NO"`
	Department       text `json:"Department"`
	Name             text `json:"Name"`
	Equipment        text `json:"EQUIPMENT"`
	Model            text `json:"Model"`
	Serial           text `json:"Serial"`
	MfgSerial        text `json:"MFG_SERIAL"`
	Manufacturer     text `json:"Manufacturer"`
	LogNumber        text `json:"Log_Number"`
	LogNo            text `json:"LOG_NO"`
	InstallationDate text `json:"Installation_Date"`
	WarrantyEnd      text `json:"Warranty_End"`
	ServiceDate      text `json:"Service_Date"`
	Engineer         text `json:"Engineer"`
	NextMaintenance  text `json:"Next_Maintenance"`
}

func (e ocmEntry) input() service.OCMInput {
	no, _ := strconv.Atoi(e.No.String())
	return service.OCMInput{
		No:               max(no, 0),
		Serial:           first(e.Serial, e.MfgSerial),
		Department:       e.Department.String(),
		Name:             first(e.Name, e.Equipment),
		Model:            e.Model.String(),
		Manufacturer:     e.Manufacturer.String(),
		LogNumber:        first(e.LogNumber, e.LogNo),
		InstallationDate: date(e.InstallationDate),
		WarrantyEnd:      date(e.WarrantyEnd),
		ServiceDate:      date(e.ServiceDate),
		Engineer:         e.Engineer.String(),
		NextMaintenance:  date(e.NextMaintenance),
	}
}

type trainingEntry struct {
	EmployeeID      text `json:"employee_id"`
	Name            text `json:"name"`
	Department      text `json:"department"`
	LastTrainedDate text `json:"last_trained_date"`
	NextDueDate     text `json:"next_due_date"`
	Assignments     []struct {
		Machine     text `json:"machine"`
		Trainer     text `json:"trainer"`
		TrainedDate text `json:"trained_date"`
	} `json:"machine_trainer_assignments"`
}

func (e trainingEntry) input() service.TrainingInput {
	in := service.TrainingInput{
		EmployeeID:      e.EmployeeID.String(),
		Name:            e.Name.String(),
		Department:      e.Department.String(),
		LastTrainedDate: date(e.LastTrainedDate),
		NextDueDate:     date(e.NextDueDate),
		Assignments:     []service.AssignmentInput{},
	}
	for _, a := range e.Assignments {
		if a.Machine.String() == "" {
			continue
		}
		in.Assignments = append(in.Assignments, service.AssignmentInput{
			Machine:     a.Machine.String(),
			Trainer:     a.Trainer.String(),
			TrainedDate: date(a.TrainedDate),
		})
	}
	return in
}

// Entry is one decoded record. Err is set when the record itself could not
// be decoded; the rest of the file is still usable.
type Entry[T any] struct {
	Index int
	Input T
	Err   error
}

// decodeList decodes a JSON array element by element so that one bad entry
// does not reject the file
func decodeList[E any, T any](r io.Reader, convert func(E) T) ([]Entry[T], error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("expected a JSON list: %w", err)
	}

	entries := make([]Entry[T], 0, len(raw))
	for i, msg := range raw {
		var e E
		if err := json.Unmarshal(msg, &e); err != nil {
			entries = append(entries, Entry[T]{Index: i, Err: err})
			continue
		}
		entries = append(entries, Entry[T]{Index: i, Input: convert(e)})
	}
	return entries, nil
}

func ReadPPM(r io.Reader) ([]Entry[service.PPMInput], error) {
	return decodeList(r, ppmEntry.input)
}

func ReadOCM(r io.Reader) ([]Entry[service.OCMInput], error) {
	return decodeList(r, ocmEntry.input)
}

func ReadTraining(r io.Reader) ([]Entry[service.TrainingInput], error) {
	return decodeList(r, trainingEntry.input)
}

type settingsFile struct {
	EmailNotificationsEnabled       *bool `json:"email_notifications_enabled"`
	EmailReminderIntervalMinutes    *text `json:"email_reminder_interval_minutes"`
	RecipientEmail                  *text `json:"recipient_email"`
	ReminderDays                    *text `json:"reminder_days"`
	PushNotificationsEnabled        *bool `json:"push_notifications_enabled"`
	PushNotificationIntervalMinutes *text `json:"push_notification_interval_minutes"`
	AutomaticBackupEnabled          *bool `json:"automatic_backup_enabled"`
	AutomaticBackupIntervalHours    *text `json:"automatic_backup_interval_hours"`
}

// ReadSettings overlays settings.json on base. Keys missing from the file keep
// the base value.
func ReadSettings(r io.Reader, base models.Setting) (service.SettingsInput, error) {
	in := service.SettingsInput{
		EmailNotificationsEnabled:       base.EmailNotificationsEnabled,
		EmailReminderIntervalMinutes:    base.EmailReminderIntervalMinutes,
		RecipientEmail:                  base.RecipientEmail,
		ReminderDays:                    base.ReminderDays,
		PushNotificationsEnabled:        base.PushNotificationsEnabled,
		PushNotificationIntervalMinutes: base.PushNotificationIntervalMinutes,
		AutomaticBackupEnabled:          base.AutomaticBackupEnabled,
		AutomaticBackupIntervalHours:    base.AutomaticBackupIntervalHours,
	}

	var f settingsFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return in, fmt.Errorf("invalid settings file: %w", err)
	}

	if f.EmailNotificationsEnabled != nil {
		in.EmailNotificationsEnabled = *f.EmailNotificationsEnabled
	}
	if f.PushNotificationsEnabled != nil {
		in.PushNotificationsEnabled = *f.PushNotificationsEnabled
	}
	if f.AutomaticBackupEnabled != nil {
		in.AutomaticBackupEnabled = *f.AutomaticBackupEnabled
	}
	if f.RecipientEmail != nil {
		in.RecipientEmail = f.RecipientEmail.String()
	}
	for _, field := range []struct {
		src *text
		dst *int
	}{
		{f.EmailReminderIntervalMinutes, &in.EmailReminderIntervalMinutes},
		{f.ReminderDays, &in.ReminderDays},
		{f.PushNotificationIntervalMinutes, &in.PushNotificationIntervalMinutes},
		{f.AutomaticBackupIntervalHours, &in.AutomaticBackupIntervalHours},
	} {
		if field.src == nil {
			continue
		}
		n, err := strconv.Atoi(field.src.String())
		if err != nil {
			return in, fmt.Errorf("invalid settings value %q: %w", field.src.String(), err)
		}
		*field.dst = n
	}
	return in, nil
}
