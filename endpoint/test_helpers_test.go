package endpoint

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/config"
	"github.com/ferreyrapanozzo/dental-clinic-api/middleware"
	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.ConnectDatabase()
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}

	testModels := []interface{}{
		&model.User{}, &model.Session{}, &model.Appointment{}, &model.Treatment{}, &model.SecurityLog{},
	}
	if err := db.AutoMigrate(testModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	return db
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	return r, db
}

// asUser injects an authenticated identity directly, bypassing JWT parsing,
// so handler tests stay focused on handler behavior.
func asUser(userID uint, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.EmailKey, email)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

type requestSpec struct {
	method  string
	path    string
	body    interface{}
	headers map[string]string
}

func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *strings.Reader
	setJSONHeader := false
	switch v := spec.body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
		setJSONHeader = true
	default:
		b, _ := json.Marshal(spec.body)
		reader = strings.NewReader(string(b))
		setJSONHeader = true
	}

	req := httptest.NewRequest(spec.method, spec.path, reader)
	if setJSONHeader {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) model.User {
	t.Helper()

	salt, err := util.GenerateSalt()
	assert.NoError(t, err)
	hashed, err := util.HashPasswordArgon2("secret123", salt)
	assert.NoError(t, err)

	user := model.User{
		Name:         "Test",
		Lastname:     "User",
		Email:        email,
		Password:     hashed,
		PasswordSalt: salt,
		Phone:        "+54 11 4000-0000",
		Birthdate:    "1990-01-01",
		Role:         role,
		SessionState: model.SessionClosed,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestTreatment(t *testing.T, db *gorm.DB, name string) model.Treatment {
	t.Helper()

	treatment := model.Treatment{
		Name:            name,
		Description:     "Routine procedure",
		Price:           1500,
		DurationMinutes: 30,
	}
	if err := db.Create(&treatment).Error; err != nil {
		t.Fatalf("create test treatment: %v", err)
	}
	return treatment
}

func createTestAppointment(t *testing.T, db *gorm.DB, userID, treatmentID uint, date, start, end string) model.Appointment {
	t.Helper()

	appointment := model.Appointment{
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		UserID:      userID,
		TreatmentID: treatmentID,
		State:       model.AppointmentPending,
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("create test appointment: %v", err)
	}
	return appointment
}
