package repository

import (
	"testing"
	"time"

	"hospital-equipment-tracker/internal/database/dbtest"
	"hospital-equipment-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPPM(t *testing.T, repo *PPMRepository, serial, department, name string) *models.PPMEquipment {
	t.Helper()
	item := &models.PPMEquipment{Serial: serial, Department: department, Name: name, Model: "M-" + serial}
	require.NoError(t, repo.Create(item))
	return item
}

func TestPPMListFiltersAndPages(t *testing.T) {
	repo := NewPPMRepo(dbtest.Open(t))
	seedPPM(t, repo, "SN-003", "Radiology", "CT Scanner")
	seedPPM(t, repo, "SN-001", "Cardiology", "ECG Machine")
	seedPPM(t, repo, "SN-002", "Cardiology", "Defibrillator")

	items, total, err := repo.List(ListQuery{Department: "Cardiology"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "SN-001", items[0].Serial)

	items, total, err = repo.List(ListQuery{Search: "scan"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "SN-003", items[0].Serial)

	items, total, err = repo.List(ListQuery{Page: 2, PerPage: 2, Sort: "serial", Dir: "desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "SN-001", items[0].Serial)
}

func TestPPMSearchDoesNotEscapeDepartmentFilter(t *testing.T) {
	repo := NewPPMRepo(dbtest.Open(t))
	seedPPM(t, repo, "SN-001", "Cardiology", "ECG Machine")
	seedPPM(t, repo, "SN-002", "Radiology", "ECG Viewer")

	items, _, err := repo.List(ListQuery{Department: "Cardiology", Search: "ecg"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "SN-001", items[0].Serial)
}

func TestPPMNotFound(t *testing.T) {
	repo := NewPPMRepo(dbtest.Open(t))

	_, err := repo.FindBySerial("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteBySerial("missing"), ErrNotFound)
}

func TestPPMRoundTripsDates(t *testing.T) {
	repo := NewPPMRepo(dbtest.Open(t))
	q1 := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.Local)
	item := &models.PPMEquipment{Serial: "SN-010", Q1Date: &q1, Q1Engineer: "Alice"}
	require.NoError(t, repo.Create(item))

	got, err := repo.FindBySerial("SN-010")
	require.NoError(t, err)
	assert.Equal(t, "31/01/2024", got.QuarterDates()[0])
	assert.Equal(t, "", got.QuarterDates()[1])
}

func TestPPMBulkDeleteAndStatus(t *testing.T) {
	repo := NewPPMRepo(dbtest.Open(t))
	a := seedPPM(t, repo, "SN-001", "ICU", "Ventilator")
	seedPPM(t, repo, "SN-002", "ICU", "Monitor")
	seedPPM(t, repo, "SN-003", "ICU", "Pump")

	require.NoError(t, repo.UpdateStatus(a.ID, "Overdue"))
	got, err := repo.FindBySerial("SN-001")
	require.NoError(t, err)
	assert.Equal(t, "Overdue", got.Status)

	n, err := repo.DeleteBySerials([]string{"SN-001", "SN-003", "SN-404"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	exists, err := repo.ExistsBySerial("SN-002")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOCMNextNo(t *testing.T) {
	repo := NewOCMRepo(dbtest.Open(t))

	no, err := repo.NextNo()
	require.NoError(t, err)
	assert.Equal(t, 1, no)

	require.NoError(t, repo.Create(&models.OCMEquipment{Serial: "OCM-1", No: 7}))
	no, err = repo.NextNo()
	require.NoError(t, err)
	assert.Equal(t, 8, no)
}

func TestTrainingUpdateReplacesAssignments(t *testing.T) {
	repo := NewTrainingRepo(dbtest.Open(t))
	record := &models.TrainingRecord{
		EmployeeID: "E-1",
		Name:       "Sara",
		Assignments: []models.TrainingAssignment{
			{Machine: "Ventilator", Trainer: "Omar"},
			{Machine: "Infusion Pump", Trainer: "Omar"},
		},
	}
	require.NoError(t, repo.Create(record))

	record.Assignments = []models.TrainingAssignment{{Machine: "Defibrillator", Trainer: "Lina"}}
	record.Department = "Emergency Department"
	require.NoError(t, repo.Update(record))

	got, err := repo.FindByEmployeeID("E-1")
	require.NoError(t, err)
	assert.Equal(t, "Emergency Department", got.Department)
	require.Len(t, got.Assignments, 1)
	assert.Equal(t, "Defibrillator", got.Assignments[0].Machine)

	require.NoError(t, repo.Delete(record.ID))
	_, err = repo.FindByID(record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(record.ID), ErrNotFound)
}

func TestSettingsGetSave(t *testing.T) {
	repo := NewSettingsRepo(dbtest.Open(t))

	_, ok, err := repo.Get()
	require.NoError(t, err)
	assert.False(t, ok)

	s := models.DefaultSetting(30)
	s.EmailNotificationsEnabled = false
	s.RecipientEmail = "biomed@hospital.local"
	require.NoError(t, repo.Save(&s))

	got, ok, err := repo.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.EmailNotificationsEnabled)
	assert.Equal(t, 30, got.ReminderDays)
	assert.Equal(t, "biomed@hospital.local", got.RecipientEmail)
}

func TestAuditListNewestFirst(t *testing.T) {
	repo := NewAuditRepo(dbtest.Open(t))
	require.NoError(t, repo.CreateAuditLog(nil, "ppm_create", "first"))
	require.NoError(t, repo.CreateAuditLog(nil, "ppm_delete", "second"))
	require.NoError(t, repo.CreateAuditLog(nil, "ppm_create", "third"))

	logs, total, err := repo.ListAuditLogs("ppm_create", ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Details)
}

func TestCreateFirstUserOnlyOnce(t *testing.T) {
	repo := NewUserRepo(dbtest.Open(t))

	first := &models.User{Username: "alice", PasswordHash: "x", Role: models.RoleAdmin}
	created, err := repo.CreateFirstUser(first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	created, err = repo.CreateFirstUser(&models.User{Username: "bob", PasswordHash: "x", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.CountUsers()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteUserKeepsAuditRows(t *testing.T) {
	db := dbtest.Open(t)
	users := NewUserRepo(db)
	audits := NewAuditRepo(db)

	user := &models.User{Username: "bob", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, users.CreateUser(user))
	require.NoError(t, users.CreateRefreshToken(&models.RefreshToken{
		UserID: user.ID, TokenHash: "hash", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, audits.CreateAuditLog(&user.ID, "user_login", "bob logged in"))

	require.NoError(t, users.DeleteUser(user.ID))
	assert.ErrorIs(t, users.DeleteUser(user.ID), ErrNotFound)

	_, err := users.FindUserByID(user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.FindRefreshTokenByHash("hash")
	assert.ErrorIs(t, err, ErrNotFound)

	logs, _, err := audits.ListAuditLogs("user_login", ListQuery{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
}

func TestRevokeUserRefreshTokens(t *testing.T) {
	repo := NewUserRepo(dbtest.Open(t))
	user := &models.User{Username: "bob", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, repo.CreateUser(user))
	for _, hash := range []string{"a", "b"} {
		require.NoError(t, repo.CreateRefreshToken(&models.RefreshToken{
			UserID: user.ID, TokenHash: hash, ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	require.NoError(t, repo.RevokeUserRefreshTokens(user.ID))
	for _, hash := range []string{"a", "b"} {
		_, err := repo.FindRefreshTokenByHash(hash)
		assert.ErrorIs(t, err, ErrNotFound, hash)
	}
}
