package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"citizen-portal-api/config"
	"citizen-portal-api/models"
	"citizen-portal-api/routes"
	"citizen-portal-api/services"
	"citizen-portal-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	to      []string
	subject string
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB

	mu    sync.Mutex
	mails []sentMail
}

func (e *testEnv) send(to []string, subject, html string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mails = append(e.mails, sentMail{to: to, subject: subject})
	return nil
}

func (e *testEnv) sentMails() []sentMail {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sentMail(nil), e.mails...)
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Application{},
		&models.ApplicationDocument{},
		&models.StatusUpdate{},
		&models.Comment{},
		&models.User{},
		&models.Session{},
	))
	config.DB = db

	env := &testEnv{db: db}

	sessions := services.NewSessionService(db, []byte("test-secret"), time.Hour)
	notifier := services.NewNotifier(env.send, "", time.Minute)
	t.Cleanup(notifier.Stop)

	router := gin.New()
	routes.SetupRoutes(router, sessions, notifier)
	env.router = router

	t.Setenv("UPLOAD_PATH", t.TempDir())
	return env
}

func (e *testEnv) createStaff(t *testing.T, username, password string, roleID int) models.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := models.User{
		Username:   username,
		Email:      username + "@stadt.example.de",
		Password:   hashed,
		FirstName:  "Max",
		LastName:   "Mustermann",
		Department: "Bürgeramt",
		RoleID:     roleID,
		IsActive:   true,
		CreateAt:   &now,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(gin.H{"username": username, "password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func submissionForm(t *testing.T, overrides map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	fields := map[string]string{
		"type":        "passport",
		"first_name":  "Anna",
		"last_name":   "Schmidt",
		"email":       "anna.schmidt@example.de",
		"phone":       "+4915112345678",
		"address":     "Musterstraße 1",
		"city":        "Leipzig",
		"postal_code": "04109",
		"birth_date":  "1990-04-12",
	}
	for k, v := range overrides {
		fields[k] = v
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("documents", "ausweis.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func (e *testEnv) submit(t *testing.T, overrides map[string]string) string {
	t.Helper()
	body, contentType := submissionForm(t, overrides, false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", body)
	req.Header.Set("Content-Type", contentType)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "submit failed: %s", w.Body.String())

	var resp struct {
		ReferenceNumber string `json:"reference_number"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ReferenceNumber)
	return resp.ReferenceNumber
}

func TestSubmitApplication(t *testing.T) {
	env := setupTestEnv(t)

	body, contentType := submissionForm(t, map[string]string{"urgent_request": "true"}, true)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var app models.Application
	require.NoError(t, env.db.Preload("Documents").First(&app).Error)
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.True(t, app.UrgentRequest)
	assert.NotNil(t, app.SubmittedAt)
	assert.Nil(t, app.UpdatedAt, "updated_at must stay NULL until a staff mutation")
	assert.True(t, utils.ValidateReference(app.ReferenceNumber))
	require.Len(t, app.Documents, 1)
	assert.Equal(t, "ausweis.pdf", app.Documents[0].OriginalFilename)

	// Stored file exists under the upload path.
	_, err := os.Stat(os.Getenv("UPLOAD_PATH") + "/" + app.Documents[0].StoredFilename)
	assert.NoError(t, err)

	// Confirmation mail went to the applicant.
	mails := env.sentMails()
	require.Len(t, mails, 1)
	assert.Equal(t, []string{"anna.schmidt@example.de"}, mails[0].to)
}

func TestSubmitApplication_ValidationErrors(t *testing.T) {
	env := setupTestEnv(t)

	body, contentType := submissionForm(t, map[string]string{
		"email":       "not-an-email",
		"postal_code": "12",
	}, false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "postal_code")

	var count int64
	env.db.Model(&models.Application{}).Count(&count)
	assert.Zero(t, count, "invalid submission must not be persisted")
}

func TestReferenceLookup_CaseInsensitive(t *testing.T) {
	env := setupTestEnv(t)
	ref := env.submit(t, nil)

	lower := "  " + toLower(ref) + " "
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/reference/"+toLower(ref), nil)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "lowercase lookup failed for %q (%s)", lower, w.Body.String())

	var resp struct {
		Application models.Application `json:"application"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ref, resp.Application.ReferenceNumber)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestReferenceLookup_Errors(t *testing.T) {
	env := setupTestEnv(t)

	// Malformed reference: validation error, not a lookup miss.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/not-a-reference", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Well-formed but unknown: not found.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/status/LEI-ZZZZZZ-ZZZZZ", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckStatus_FreshSubmission(t *testing.T) {
	env := setupTestEnv(t)
	ref := env.submit(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/"+ref, nil)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "progress")
	assert.Contains(t, resp, "estimated_completion")
	assert.Contains(t, resp, "timeline")

	var progress float64
	require.NoError(t, json.Unmarshal(resp["progress"], &progress))
	assert.Equal(t, 25.0, progress)

	var timeline []services.TimelineEntry
	require.NoError(t, json.Unmarshal(resp["timeline"], &timeline))
	require.Len(t, timeline, 2)
	assert.False(t, timeline[0].Pending)
	assert.True(t, timeline[1].Pending)
}

func TestStaffStatusUpdate(t *testing.T) {
	env := setupTestEnv(t)
	staff := env.createStaff(t, "mmustermann", "geheim123", models.RoleProcessor)
	token := env.login(t, "mmustermann", "geheim123")
	ref := env.submit(t, nil)

	var app models.Application
	require.NoError(t, env.db.Where("reference_number = ?", ref).First(&app).Error)

	update := func(status models.Status, notes string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(gin.H{"status": status, "notes": notes})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut,
			fmt.Sprintf("/api/v1/applications/%d/status", app.ApplicationID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		env.router.ServeHTTP(w, req)
		return w
	}

	// submitted -> in_review
	w := update(models.StatusInReview, "Unterlagen werden geprüft")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, env.db.First(&app, app.ApplicationID).Error)
	assert.Equal(t, models.StatusInReview, app.Status)
	assert.NotNil(t, app.UpdatedAt, "staff mutation must set updated_at")
	assert.Equal(t, "Unterlagen werden geprüft", app.StaffNotes)

	// History row recorded with the actor.
	var history models.StatusUpdate
	require.NoError(t, env.db.First(&history).Error)
	assert.Equal(t, models.StatusInReview, history.NewStatus)
	assert.Equal(t, staff.UserID, history.ChangedBy)

	// Backward transition is rejected without touching the record.
	w = update(models.StatusSubmitted, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Walk forward to completed.
	require.Equal(t, http.StatusOK, update(models.StatusApproved, "").Code)
	require.Equal(t, http.StatusOK, update(models.StatusCompleted, "").Code)

	// Terminal: no further mutation.
	w = update(models.StatusRejected, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Applicant got a mail per transition plus the confirmation.
	assert.GreaterOrEqual(t, len(env.sentMails()), 4)
}

func TestStaffStatusUpdate_RejectFromReview(t *testing.T) {
	env := setupTestEnv(t)
	env.createStaff(t, "mmustermann", "geheim123", models.RoleProcessor)
	token := env.login(t, "mmustermann", "geheim123")
	ref := env.submit(t, nil)

	var app models.Application
	require.NoError(t, env.db.Where("reference_number = ?", ref).First(&app).Error)

	update := func(status models.Status) int {
		body, _ := json.Marshal(gin.H{"status": status})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut,
			fmt.Sprintf("/api/v1/applications/%d/status", app.ApplicationID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		env.router.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, update(models.StatusInReview))
	require.Equal(t, http.StatusOK, update(models.StatusRejected))

	// Rejected timeline has no trailing pending entry.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/"+ref, nil)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Timeline []services.TimelineEntry `json:"timeline"`
		Progress *float64                 `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Timeline, 3)
	assert.False(t, resp.Timeline[2].Pending)
	assert.Nil(t, resp.Progress, "rejected applications expose no progress")
}

func TestAddComment_BumpsUpdatedAt(t *testing.T) {
	env := setupTestEnv(t)
	env.createStaff(t, "mmustermann", "geheim123", models.RoleProcessor)
	token := env.login(t, "mmustermann", "geheim123")
	ref := env.submit(t, nil)

	var app models.Application
	require.NoError(t, env.db.Where("reference_number = ?", ref).First(&app).Error)
	require.Nil(t, app.UpdatedAt)

	body, _ := json.Marshal(gin.H{"comment": "Rückruf erbeten"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/applications/%d/comments", app.ApplicationID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, env.db.First(&app, app.ApplicationID).Error)
	assert.NotNil(t, app.UpdatedAt)

	var comment models.Comment
	require.NoError(t, env.db.First(&comment).Error)
	assert.Equal(t, "Rückruf erbeten", comment.Text)
}

func TestAuth_ProtectedEndpointsRequireToken(t *testing.T) {
	env := setupTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_LogoutRevokesSession(t *testing.T) {
	env := setupTestEnv(t)
	env.createStaff(t, "mmustermann", "geheim123", models.RoleProcessor)
	token := env.login(t, "mmustermann", "geheim123")

	authedGet := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		env.router.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, authedGet("/api/v1/auth/me"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Token still cryptographically valid, session revoked server-side.
	assert.Equal(t, http.StatusUnauthorized, authedGet("/api/v1/auth/me"))
}

func TestStaffListing_AdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	env.createStaff(t, "processor", "geheim123", models.RoleProcessor)
	env.createStaff(t, "admin", "geheim123", models.RoleAdmin)

	listStaff := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		env.router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, listStaff(env.login(t, "processor", "geheim123")))
	assert.Equal(t, http.StatusOK, listStaff(env.login(t, "admin", "geheim123")))
}

func TestStaffList_FiltersAndStats(t *testing.T) {
	env := setupTestEnv(t)
	env.createStaff(t, "mmustermann", "geheim123", models.RoleProcessor)
	token := env.login(t, "mmustermann", "geheim123")

	env.submit(t, nil)
	env.submit(t, map[string]string{"type": "id_card", "urgent_request": "true", "email": "b@example.de"})

	get := func(path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		env.router.ServeHTTP(w, req)
		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	w, resp := get("/api/v1/applications?type=id_card")
	require.Equal(t, http.StatusOK, w.Code)
	var total int
	require.NoError(t, json.Unmarshal(resp["total"], &total))
	assert.Equal(t, 1, total)

	var stats struct {
		Total     int64 `json:"total"`
		Submitted int64 `json:"submitted"`
		Urgent    int64 `json:"urgent"`
	}
	require.NoError(t, json.Unmarshal(resp["stats"], &stats))
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Submitted)
	assert.Equal(t, int64(1), stats.Urgent)

	// Unknown filter values are rejected.
	w, _ = get("/api/v1/applications?status=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
