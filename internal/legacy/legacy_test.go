package legacy

import (
	"strings"
	"testing"

	"hospital-equipment-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPPM(t *testing.T) {
	data := `[
		{
			"NO": 1, "Department": " ICU ", "Name": "Infusion Pump", "MODEL": "IP-200",
			"SERIAL": "SN-1", "MANUFACTURER": "Acme", "LOG_Number": 4471,
			"Installation_Date": "2019-03-01", "Warranty_End": "N/A",
			"PPM_Q_I": {"Quarter_Date": "31/01/2024", "Engineer": "Ali"},
			"PPM_Q_II": {"quarter date": "30/04/2024", "engineer": null},
			"PPM_Q_IV": {"engineer": "Omar"}
		},
		{"MFG_SERIAL": "SN-2", "Department": "ER", "MODEL": "X", "PPM_Q_I": {"quarter_date": "31/02/2024"}},
		"not an object"
	]`

	entries, err := ReadPPM(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0].Input
	assert.NoError(t, entries[0].Err)
	assert.Equal(t, "SN-1", first.Serial)
	assert.Equal(t, "ICU", first.Department)
	assert.Equal(t, "4471", first.LogNumber)
	assert.Equal(t, "01/03/2019", first.InstallationDate)
	assert.Empty(t, first.WarrantyEnd)
	assert.Equal(t, "31/01/2024", first.Q1Date)
	assert.Equal(t, "Ali", first.Q1Engineer)
	assert.Empty(t, first.Q2Engineer)
	assert.Equal(t, "Omar", first.Q4Engineer)

	assert.Equal(t, "SN-2", entries[1].Input.Serial)
	assert.Empty(t, entries[1].Input.Q1Date, "impossible dates are dropped")

	assert.Error(t, entries[2].Err)
	assert.Equal(t, 2, entries[2].Index)
}

func TestReadPPMRejectsNonList(t *testing.T) {
	_, err := ReadPPM(strings.NewReader(`{"SERIAL": "SN-1"}`))
	assert.Error(t, err)
}

func TestReadOCM(t *testing.T) {
	data := `[{
		"NO": 12, "EQUIPMENT": "Ventilator", "Department": "ER", "Model": "V-60", "SERIAL": "OC-1",
		"LOG_NO": "L-9", "Service_Date": "01/01/2024", "Engineer": "Sara",
		"Next_Maintenance": "2024-06-20T00:00:00"
	}]`

	entries, err := ReadOCM(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	in := entries[0].Input
	assert.Equal(t, "OC-1", in.Serial)
	assert.Equal(t, 12, in.No)
	assert.Equal(t, "Ventilator", in.Name)
	assert.Equal(t, "L-9", in.LogNumber)
	assert.Equal(t, "01/01/2024", in.ServiceDate)
	assert.Equal(t, "20/06/2024", in.NextMaintenance)
}

func TestReadTraining(t *testing.T) {
	data := `[{
		"id": 3, "employee_id": "E-1", "name": "Nadia", "department": "ICU",
		"last_trained_date": "2024-02-01", "next_due_date": "01/02/2025",
		"machine_trainer_assignments": [
			{"machine": "Ventilator", "trainer": "Dr. Lee"},
			{"machine": "", "trainer": "nobody"}
		]
	}]`

	entries, err := ReadTraining(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	in := entries[0].Input
	assert.Equal(t, "E-1", in.EmployeeID)
	assert.Equal(t, "01/02/2024", in.LastTrainedDate)
	assert.Equal(t, "01/02/2025", in.NextDueDate)
	require.Len(t, in.Assignments, 1)
	assert.Equal(t, "Dr. Lee", in.Assignments[0].Trainer)
}

func TestReadSettings(t *testing.T) {
	base := models.DefaultSetting(60)

	in, err := ReadSettings(strings.NewReader(`{
		"email_notifications_enabled": false,
		"email_reminder_interval_minutes": "15",
		"recipient_email": "biomed@hospital.local",
		"automatic_backup_enabled": true,
		"automatic_backup_interval_hours": 6
	}`), base)
	require.NoError(t, err)
	assert.False(t, in.EmailNotificationsEnabled)
	assert.Equal(t, 15, in.EmailReminderIntervalMinutes)
	assert.Equal(t, "biomed@hospital.local", in.RecipientEmail)
	assert.Equal(t, 60, in.ReminderDays)
	assert.Equal(t, base.PushNotificationIntervalMinutes, in.PushNotificationIntervalMinutes)
	assert.True(t, in.AutomaticBackupEnabled)
	assert.Equal(t, 6, in.AutomaticBackupIntervalHours)

	_, err = ReadSettings(strings.NewReader(`{"reminder_days": "soon"}`), base)
	assert.Error(t, err)
}
