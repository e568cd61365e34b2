package endpoint

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
)

func TestRegister_Success(t *testing.T) {
	r, db := setupRouter(t)
	r.POST("/register", Register)

	w, resp := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/register",
		body: RegisterRequest{
			Name:      "  Maria   Jose ",
			Lastname:  "Ferreyra",
			Email:     "Maria@Example.com",
			Password:  "secret123",
			Phone:     "+54 11 4000-0000",
			Birthdate: "1990-04-23",
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp["success"].(bool))

	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	var user model.User
	assert.NoError(t, db.First(&user, "email = ?", "maria@example.com").Error)
	// Names are normalized, emails lowercased, role defaults to patient.
	assert.Equal(t, "Maria Jose", user.Name)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.SessionClosed, user.SessionState)
}

func TestRegister_PasswordNeverSerialized(t *testing.T) {
	r, _ := setupRouter(t)
	r.POST("/register", Register)

	_, resp := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/register",
		body: RegisterRequest{
			Name:      "Maria",
			Lastname:  "Ferreyra",
			Email:     "maria@example.com",
			Password:  "secret123",
			Phone:     "+54 11 4000-0000",
			Birthdate: "1990-04-23",
		},
	})

	data := resp["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestRegister_ValidationErrorsCollected(t *testing.T) {
	r, _ := setupRouter(t)
	r.POST("/register", Register)

	w, resp := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/register",
		body: RegisterRequest{
			Email:    "not-an-email",
			Password: "123",
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs := resp["errors"].([]interface{})
	// name, lastname, email format, password length, phone and birthdate
	assert.Len(t, errs, 6)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, db := setupRouter(t)
	createTestUser(t, db, "maria@example.com", model.RoleUser)

	r.POST("/register", Register)

	w, _ := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/register",
		body: RegisterRequest{
			Name:      "Maria",
			Lastname:  "Ferreyra",
			Email:     "maria@example.com",
			Password:  "secret123",
			Phone:     "+54 11 4000-0000",
			Birthdate: "1990-04-23",
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_InvalidRole(t *testing.T) {
	r, _ := setupRouter(t)
	r.POST("/register", Register)

	w, _ := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/register",
		body: RegisterRequest{
			Name:      "Maria",
			Lastname:  "Ferreyra",
			Email:     "maria@example.com",
			Password:  "secret123",
			Phone:     "+54 11 4000-0000",
			Birthdate: "1990-04-23",
			Role:      "superadmin",
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	r.POST("/login", Login)

	w, resp := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/login",
		body:   LoginRequest{Email: "maria@example.com", Password: "secret123"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.NotEmpty(t, data["session_token"])

	// Login opens the session and records it server-side.
	var stored model.User
	assert.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, model.SessionStarted, stored.SessionState)

	var sessions int64
	db.Model(&model.Session{}).Where("user_id = ?", user.ID).Count(&sessions)
	assert.Equal(t, int64(1), sessions)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	r.POST("/login", Login)

	w, _ := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/login",
		body:   LoginRequest{Email: "maria@example.com", Password: "wrongpass"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var stored model.User
	assert.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 1, stored.FailedAttempts)
}

func TestLogin_UnknownEmailSameMessage(t *testing.T) {
	r, _ := setupRouter(t)
	r.POST("/login", Login)

	w, resp := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/login",
		body:   LoginRequest{Email: "nobody@example.com", Password: "secret123"},
	})

	// Unknown email and wrong password are indistinguishable to the caller.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", resp["message"])
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	r.POST("/login", Login)

	for i := 0; i < 5; i++ {
		w, _ := performRequest(r, requestSpec{
			method: http.MethodPost,
			path:   "/login",
			body:   LoginRequest{Email: "maria@example.com", Password: "wrongpass"},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	var stored model.User
	assert.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotNil(t, stored.LockedUntil)

	// Even the right password is refused while locked.
	w, _ := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/login",
		body:   LoginRequest{Email: "maria@example.com", Password: "secret123"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_SuccessResetsFailedAttempts(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	assert.NoError(t, db.Model(&user).Update("failed_attempts", 3).Error)

	r.POST("/login", Login)

	w, _ := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/login",
		body:   LoginRequest{Email: "maria@example.com", Password: "secret123"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored model.User
	assert.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 0, stored.FailedAttempts)
}

func TestLogin_ExpiredLockIsIgnored(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	expired := time.Now().Add(-time.Minute).Unix()
	assert.NoError(t, db.Model(&user).Updates(map[string]interface{}{"failed_attempts": 5, "locked_until": expired}).Error)

	r.POST("/login", Login)

	w, _ := performRequest(r, requestSpec{
		method: http.MethodPost,
		path:   "/login",
		body:   LoginRequest{Email: "maria@example.com", Password: "secret123"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout_ClosesSession(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	assert.NoError(t, db.Model(&user).Update("session_state", model.SessionStarted).Error)
	session := model.Session{SessionToken: "tok-1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	assert.NoError(t, db.Create(&session).Error)

	r.POST("/logout", asUser(user.ID, user.Email, user.Role), Logout)

	w, _ := performRequest(r, requestSpec{method: http.MethodPost, path: "/logout"})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored model.User
	assert.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, model.SessionClosed, stored.SessionState)

	var sessions int64
	db.Model(&model.Session{}).Where("user_id = ?", user.ID).Count(&sessions)
	assert.Equal(t, int64(0), sessions)
}

func TestProfile_ReturnsCaller(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleUser)

	r.GET("/profile", asUser(user.ID, user.Email, user.Role), Profile)

	w, resp := performRequest(r, requestSpec{method: http.MethodGet, path: "/profile"})
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "maria@example.com", data["email"])
}

func TestVerifyToken_EchoesIdentity(t *testing.T) {
	r, db := setupRouter(t)
	user := createTestUser(t, db, "maria@example.com", model.RoleProfessional)

	r.GET("/verify", asUser(user.ID, user.Email, user.Role), VerifyToken)

	w, resp := performRequest(r, requestSpec{method: http.MethodGet, path: "/verify"})
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "maria@example.com", data["email"])
	assert.Equal(t, model.RoleProfessional, data["role"])
}
