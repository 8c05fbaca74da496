package service

import (
	"testing"
	"time"

	"hospital-equipment-tracker/internal/database/dbtest"
	"hospital-equipment-tracker/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 15/06/2024, mid-morning
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

type testEnv struct {
	db        *gorm.DB
	auditRepo *repository.AuditRepository
	ppm       *PPMService
	ocm       *OCMService
	training  *TrainingService
	settings  *SettingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	log := zap.NewNop()
	auditRepo := repository.NewAuditRepo(db)

	env := &testEnv{
		db:        db,
		auditRepo: auditRepo,
		ppm:       NewPPMService(repository.NewPPMRepo(db), auditRepo, log),
		ocm:       NewOCMService(repository.NewOCMRepo(db), auditRepo, log),
		training:  NewTrainingService(repository.NewTrainingRepo(db), auditRepo, log),
		settings:  NewSettingsService(repository.NewSettingsRepo(db), auditRepo, 60, log),
	}
	env.ppm.now = fixedClock
	env.ocm.now = fixedClock
	return env
}

func (e *testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := e.auditRepo.ListAuditLogs("", repository.ListQuery{})
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func ppmInput(serial, dept, q1 string, engineers ...string) PPMInput {
	in := PPMInput{
		Serial:     serial,
		Department: dept,
		Name:       "Infusion Pump",
		Model:      "IP-200",
		Q1Date:     q1,
	}
	fields := []*string{&in.Q1Engineer, &in.Q2Engineer, &in.Q3Engineer, &in.Q4Engineer}
	for i, eng := range engineers {
		if i < len(fields) {
			*fields[i] = eng
		}
	}
	return in
}

func ocmInput(serial, dept, service, next string) OCMInput {
	return OCMInput{
		Serial:          serial,
		Department:      dept,
		Name:            "Ventilator",
		Model:           "V-60",
		ServiceDate:     service,
		Engineer:        "Sara",
		NextMaintenance: next,
	}
}
