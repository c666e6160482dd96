package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medcontrol-backend/internal/config"
	"medcontrol-backend/internal/database"
	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			URL:          filepath.Join(t.TempDir(), "api.db") + "?_pragma=foreign_keys(1)",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		JWT:       config.JWTConfig{SecretKey: "test-secret", Algorithm: "HS256", ExpireMinutes: 60},
		Server:    config.ServerConfig{GinMode: "release", APIPrefix: "/api"},
		RateLimit: config.RateLimitConfig{Login: "1000-M"},
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tokens, err := utils.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTokenExpiry())
	require.NoError(t, err)

	users := repository.NewUserRepo(db)
	audit := repository.NewAuditRepo(db)
	doctors := repository.NewDoctorRepo(db)
	patients := repository.NewPatientRepo(db)
	types := repository.NewProcedureTypeRepo(db)
	procedures := repository.NewProcedureRepo(db)

	auth := service.NewAuthService(users, audit, tokens)
	router, err := NewRouter(cfg, zerolog.Nop(), Services{
		Auth:           auth,
		Doctors:        service.NewDoctorService(doctors, procedures, audit),
		Patients:       service.NewPatientService(patients, procedures, audit),
		ProcedureTypes: service.NewProcedureTypeService(types, procedures, audit),
		Procedures:     service.NewProcedureService(procedures, doctors, patients, types, audit),
		Import:         service.NewImportService(db, service.NewResolver(doctors, patients, types), procedures, audit),
		Menus:          service.NewMenuService(repository.NewMenuRepo(db), audit),
		Dashboard:      service.NewDashboardService(repository.NewReportRepo(db), procedures),
	})
	require.NoError(t, err)

	return &testServer{router: router, db: db, auth: auth}
}

// login creates an account and returns a bearer token for it
func (s *testServer) login(t *testing.T, email string, admin bool) string {
	t.Helper()
	_, err := s.auth.CreateUser(context.Background(), email, "Test", "password", admin)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": email, "password": "password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data service.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	return envelope.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin@example.com", true)

	w := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me service.UserResponse
	decodeData(t, w, &me)
	assert.Equal(t, "admin@example.com", me.Email)
	assert.Equal(t, []string{"ADMIN", "USER"}, me.Roles)

	w = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", decodeError(t, w))

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDisabledAccountIsForbidden(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "gone@example.com", false)
	require.NoError(t, s.db.Model(&models.User{}).Where("email = ?", "gone@example.com").Update("is_active", false).Error)

	w := s.do(t, http.MethodGet, "/api/doctors", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMenuRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", true)
	user := s.login(t, "user@example.com", false)

	w := s.do(t, http.MethodPost, "/api/menus", admin, map[string]any{"label": "Settings", "roles": []string{"ADMIN"}, "order": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var settings models.MenuItem
	decodeData(t, w, &settings)
	assert.True(t, settings.IsActive)

	w = s.do(t, http.MethodPost, "/api/menus", admin, map[string]any{"label": "Home", "order": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/menus", admin, map[string]any{"label": "Bad", "roles": []string{"ROOT"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/menus", user, map[string]any{"label": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodGet, "/api/menus/tree", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/menus/my-menus", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []service.MenuNode
	decodeData(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "Home", mine[0].Label)

	w = s.do(t, http.MethodGet, "/api/menus/my-menus", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &mine)
	assert.Len(t, mine, 2)

	path := "/api/menus/" + jsonNumber(settings.ID)
	w = s.do(t, http.MethodPut, path, admin, map[string]any{"parent_id": settings.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportProcedures(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com", false)

	rows := []service.ImportRow{
		{Date: "not-a-date", ProcedureTypeName: "Consultation", DoctorName: "Dr. Who", PatientName: "Amy"},
		{Date: "01/03/2024", ProcedureTypeName: "Consultation", DoctorName: "Dr. Who", PatientName: "Amy"},
	}
	w := s.do(t, http.MethodPost, "/api/import/procedures", token, map[string]any{"rows": rows})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.ImportResult
	decodeData(t, w, &result)
	assert.Equal(t, 1, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Row)
	assert.Equal(t, service.CreatedCounts{Doctors: 1, Patients: 1, ProcedureTypes: 1, Procedures: 1}, result.Created)

	w = s.do(t, http.MethodGet, "/api/procedures", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.ProcedurePage
	decodeData(t, w, &page)
	assert.Equal(t, int64(1), page.Total)
}

func TestImportFileUpload(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "batch.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("date;procedure;doctor;patient\n2024-03-01;Consultation;Dr. Who;Amy\n2024-03-02;Consultation;Dr. Who;Rory\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/procedures/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.ImportResult
	decodeData(t, w, &result)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Created.Patients)
	assert.Equal(t, 1, result.Created.Doctors)
}

func TestDoctorLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com", false)

	w := s.do(t, http.MethodPost, "/api/doctors", token, map[string]any{"name": "Dr. Strange", "specialty": "Surgery", "license_number": "CRM-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doctor models.Doctor
	decodeData(t, w, &doctor)

	w = s.do(t, http.MethodPost, "/api/doctors", token, map[string]any{"name": "Dr. Copy", "specialty": "Surgery", "license_number": "CRM-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/doctors", token, map[string]any{"specialty": "Surgery"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/api/doctors/" + jsonNumber(doctor.ID)
	w = s.do(t, http.MethodPatch, path, token, map[string]any{"phone": "555-0100"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/doctors", token, nil)
	var active []models.Doctor
	decodeData(t, w, &active)
	assert.Empty(t, active)

	w = s.do(t, http.MethodGet, "/api/doctors?active=false", token, nil)
	var all []models.Doctor
	decodeData(t, w, &all)
	assert.Len(t, all, 1)

	w = s.do(t, http.MethodGet, "/api/doctors/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/doctors/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com", false)

	w := s.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/dashboard/monthly-report?year=2024&month=3", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/dashboard/monthly-report?year=2024&month=13", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonNumber(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
