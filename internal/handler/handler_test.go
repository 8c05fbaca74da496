package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"hospital-equipment-tracker/internal/config"
	"hospital-equipment-tracker/internal/database/dbtest"
	"hospital-equipment-tracker/internal/repository"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	admin  string
	user   string
}

// newBareServer wires the full router over an empty database
func newBareServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitJWT("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	db := dbtest.Open(t)
	log := zap.NewNop()

	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	ppmRepo := repository.NewPPMRepo(db)
	ocmRepo := repository.NewOCMRepo(db)
	trainingRepo := repository.NewTrainingRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	authService := service.NewAuthService(userRepo, auditRepo, log)
	ppmService := service.NewPPMService(ppmRepo, auditRepo, log)
	ocmService := service.NewOCMService(ocmRepo, auditRepo, log)
	trainingService := service.NewTrainingService(trainingRepo, auditRepo, log)
	userService := service.NewUserService(userRepo, auditRepo, log)
	settingsService := service.NewSettingsService(settingsRepo, auditRepo, 60, log)
	reminderService := service.NewReminderService(ppmService, ocmService, settingsService, nil, nil, nil, auditRepo, time.Hour, log)
	backupService := service.NewBackupService(ppmRepo, ocmRepo, trainingRepo, settingsService, auditRepo, nil, "", t.TempDir(), log)

	router := NewRouter(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}, log, nil, Handlers{
		Auth:      NewAuthHandler(authService, time.Hour, false),
		Equipment: NewEquipmentHandler(ppmService, ocmService),
		Training:  NewTrainingHandler(trainingService),
		Settings:  NewSettingsHandler(settingsService),
		Transfer:  NewTransferHandler(service.NewImportExportService(ppmService, ocmService, log), service.NewReportService(ppmService, ocmService)),
		Reminder:  NewReminderHandler(reminderService),
		Backup:    NewBackupHandler(backupService),
		Audit:     NewAuditHandler(service.NewAuditService(auditRepo)),
		Dashboard: NewDashboardHandler(service.NewDashboardService(ppmService, ocmService, trainingService, settingsService)),
		Users:     NewUserHandler(userService),
	})

	return &testServer{t: t, router: router}
}

// newTestServer adds an administrator and a regular user
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := newBareServer(t)
	s.admin = s.accessToken(s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "admin", "password": "secret1"}), http.StatusCreated)

	w := s.do(http.MethodPost, "/api/users", s.admin, map[string]string{"username": "viewer", "password": "secret2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.user = s.login("viewer", "secret2")
	return s
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	return s.accessToken(s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password}), http.StatusOK)
}

func (s *testServer) accessToken(w *httptest.ResponseRecorder, status int) string {
	s.t.Helper()
	require.Equal(s.t, status, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(w, &data)
	return data.AccessToken
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) decode(w *httptest.ResponseRecorder, dst interface{}) envelope {
	s.t.Helper()
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dst != nil && len(env.Data) > 0 {
		require.NoError(s.t, json.Unmarshal(env.Data, dst))
	}
	return env
}

func overduePPM(serial string) map[string]string {
	return map[string]string{
		"serial":     serial,
		"department": "ICU",
		"name":       "Infusion Pump",
		"model":      "IP-200",
		"q1_date":    "31/01/2000",
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.decode(w, nil).Success)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "admin", "password": "secret9"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "newcomer", "password": "secret9"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "admin", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/dashboard", "", nil).Code)
}

func TestPPMEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/equipment/ppm", s.user, overduePPM("SN-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/equipment/ppm", s.admin, overduePPM("SN-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view service.PPMView
	s.decode(w, &view)
	assert.Equal(t, "Overdue", string(view.Status))
	assert.Equal(t, "30/04/2000", view.Quarters[1].Date)

	w = s.do(http.MethodPost, "/api/equipment/ppm", s.admin, overduePPM("SN-1"))
	assert.Equal(t, http.StatusConflict, w.Code)

	invalid := overduePPM("SN-2")
	delete(invalid, "department")
	invalid["q1_date"] = "2000-01-31"
	w = s.do(http.MethodPost, "/api/equipment/ppm", s.admin, invalid)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := s.decode(w, nil)
	assert.Contains(t, env.Fields, "department")
	assert.Contains(t, env.Fields, "q1_date")

	w = s.do(http.MethodGet, "/api/equipment/ppm?status=overdue&per_page=10", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.Page[service.PPMView]
	s.decode(w, &page)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 10, page.PerPage)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/equipment/ppm?status=lost", s.user, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/equipment/ppm/missing", s.user, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/equipment/ppm/SN-1", s.user, nil).Code)

	w = s.do(http.MethodPut, "/api/equipment/ppm/SN-1", s.admin, overduePPM("SN-9"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/equipment/ppm/preview", s.user, map[string]string{"q1_date": "31/01/2099"})
	require.Equal(t, http.StatusOK, w.Code)
	var preview struct {
		Quarters []struct {
			Date string `json:"date"`
		} `json:"quarters"`
		Status string `json:"status"`
	}
	s.decode(w, &preview)
	require.Len(t, preview.Quarters, 4)
	assert.Equal(t, "31/10/2099", preview.Quarters[3].Date)
	assert.Equal(t, "Upcoming", preview.Status)

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/equipment/ppm/refresh-status", s.admin, nil).Code)

	w = s.do(http.MethodPost, "/api/equipment/ppm/bulk-delete", s.admin, map[string][]string{"serials": {"SN-1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/equipment/ppm/SN-1", s.admin, nil).Code)
}

func TestOCMEndpoints(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{
		"serial":           "OC-1",
		"department":       "ER",
		"model":            "V-60",
		"service_date":     "01/01/2000",
		"next_maintenance": "01/06/2000",
	}
	w := s.do(http.MethodPost, "/api/equipment/ocm", s.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view service.OCMView
	s.decode(w, &view)
	assert.Equal(t, 1, view.No)
	assert.Equal(t, "Overdue", string(view.Status))

	body["service_date"] = "02/06/2000"
	w = s.do(http.MethodPut, "/api/equipment/ocm/OC-1", s.admin, body)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &view)
	assert.Equal(t, "Maintained", string(view.Status))

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/equipment/ocm/OC-1", s.admin, nil).Code)
}

func TestExportImportAndReport(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/equipment/ppm", s.admin, overduePPM("SN-1")).Code)

	w := s.do(http.MethodGet, "/api/export/ppm?format=csv", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ppm_equipment_")
	assert.Contains(t, w.Body.String(), "SN-1")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/export/ppm?format=doc", s.user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/export/mri", s.user, nil).Code)

	w = s.do(http.MethodGet, "/api/export/ocm?format=xlsx", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	csvData := "Department,Name,Model,Serial,Manufacturer,Log Number,Installation Date,Service Date,Next Maintenance,Engineer\n" +
		"ER,Ventilator,V-60,OC-7,Acme,L7,01/01/2020,01/01/2024,01/01/2099,Sara\n"
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "ocm.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/ocm", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.admin)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result service.ImportResult
	s.decode(w, &result)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)

	w = s.do(http.MethodPost, "/api/import/ocm", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/reports/status.pdf", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestTrainingEndpoints(t *testing.T) {
	s := newTestServer(t)

	body := map[string]interface{}{
		"employee_id": "E-1",
		"name":        "Nadia",
		"assignments": []map[string]string{{"machine": "Ventilator", "trainer": "Dr. Lee", "trained_date": "01/02/2024"}},
	}
	w := s.do(http.MethodPost, "/api/trainings", s.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view service.TrainingView
	s.decode(w, &view)

	path := "/api/trainings/" + strconvUint(view.ID)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, s.user, nil).Code)
	body["name"] = "Nadia K."
	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, path, s.admin, body).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/trainings/abc", s.user, nil).Code)

	w = s.do(http.MethodGet, "/api/trainings", s.user, nil)
	var page service.Page[service.TrainingView]
	s.decode(w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Nadia K.", page.Items[0].Name)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, path, s.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, s.user, nil).Code)
}

func TestSettingsRemindersBackupsAudit(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/settings", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)

	settings := map[string]interface{}{
		"email_notifications_enabled":        true,
		"email_reminder_interval_minutes":    30,
		"recipient_email":                    "biomed@hospital.local",
		"reminder_days":                      30,
		"push_notification_interval_minutes": 60,
		"automatic_backup_enabled":           true,
		"automatic_backup_interval_hours":    24,
	}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/settings", s.user, settings).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/settings", s.admin, settings).Code)

	settings["recipient_email"] = "not-an-email"
	w = s.do(http.MethodPut, "/api/settings", s.admin, settings)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, s.decode(w, nil).Fields, "recipient_email")

	w = s.do(http.MethodPost, "/api/reminders/run", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run service.ReminderResult
	s.decode(w, &run)
	assert.Equal(t, "email delivery not configured", run.Skipped)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/reminders/upcoming", s.user, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/dashboard", s.user, nil).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/backups", s.user, nil).Code)
	w = s.do(http.MethodPost, "/api/backups", s.admin, map[string]string{"type": "settings"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info service.BackupInfo
	s.decode(w, &info)
	assert.Equal(t, "settings", info.Kind)

	w = s.do(http.MethodGet, "/api/backups", s.admin, nil)
	var backups []service.BackupInfo
	s.decode(w, &backups)
	assert.Len(t, backups, 1)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/backups/"+info.Name, s.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/backups/"+info.Name, s.admin, nil).Code)

	w = s.do(http.MethodGet, "/api/audit-logs?action=backup_create", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs service.Page[json.RawMessage]
	s.decode(w, &logs)
	assert.EqualValues(t, 1, logs.Total)
}

func strconvUint(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestRegisterValidation(t *testing.T) {
	s := newBareServer(t)

	w := s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "ad", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := s.decode(w, nil)
	assert.Contains(t, env.Fields, "username")
	assert.Contains(t, env.Fields, "password")

	w = s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "admin", "password": "secret1"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/users", s.user, nil).Code)

	w := s.do(http.MethodGet, "/api/users", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []service.UserView
	s.decode(w, &users)
	require.Len(t, users, 2)
	var adminID, viewerID uint
	for _, u := range users {
		switch u.Username {
		case "admin":
			adminID = u.ID
		case "viewer":
			viewerID = u.ID
		}
	}
	require.NotZero(t, adminID)
	require.NotZero(t, viewerID)

	w = s.do(http.MethodPost, "/api/users", s.admin, map[string]string{"username": "viewer", "password": "secret2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPost, "/api/users", s.admin, map[string]string{"username": "eve", "password": "secret2", "role": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	viewerPath := "/api/users/" + strconvUint(viewerID)
	adminPath := "/api/users/" + strconvUint(adminID)

	w = s.do(http.MethodPut, viewerPath, s.admin, map[string]string{"password": "changed1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.login("viewer", "changed1")

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, adminPath, s.admin, map[string]string{"role": "user"}).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, adminPath, s.admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/users/abc", s.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/users/999", s.admin, nil).Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, viewerPath, s.admin, nil).Code)
	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "viewer", "password": "changed1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
