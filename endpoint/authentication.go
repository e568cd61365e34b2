package endpoint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/config"
	"github.com/ferreyrapanozzo/dental-clinic-api/middleware"
	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

type RegisterRequest struct {
	Name      string `json:"name" example:"Maria"`
	Lastname  string `json:"lastname" example:"Ferreyra"`
	Email     string `json:"email" example:"maria@example.com"`
	Password  string `json:"password" example:"secret123"`
	Phone     string `json:"phone" example:"+54 11 4444-5555"`
	Birthdate string `json:"birthdate" example:"1990-04-23"`
	Role      string `json:"role,omitempty" example:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"maria@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type LoginResponse struct {
	Token        string     `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	SessionToken string     `json:"session_token" example:"7f9c84d2-4a4e-4a10-bb1a-6a1ba7f0cdea"`
	User         model.User `json:"user"`
}

const maxNameLength = 50

// validateRegistration collects every field error so the caller gets the
// full list in one response.
func validateRegistration(req *RegisterRequest) []string {
	var errs []string

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	} else if len(req.Name) > maxNameLength {
		errs = append(errs, fmt.Sprintf("name cannot exceed %d characters", maxNameLength))
	}
	if strings.TrimSpace(req.Lastname) == "" {
		errs = append(errs, "lastname is required")
	}
	if req.Email == "" {
		errs = append(errs, "email is required")
	} else if !strings.Contains(req.Email, "@") || strings.ContainsAny(req.Email, " \t") {
		errs = append(errs, "invalid email format")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	} else if len(req.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	if strings.TrimSpace(req.Phone) == "" {
		errs = append(errs, "phone is required")
	}
	if req.Birthdate == "" {
		errs = append(errs, "birthdate is required")
	} else if _, err := util.ParseDate(req.Birthdate); err != nil {
		errs = append(errs, "invalid birthdate")
	}
	if req.Role != "" && !model.ValidRole(req.Role) {
		errs = append(errs, fmt.Sprintf("role must be %q or %q", model.RoleUser, model.RoleProfessional))
	}

	return errs
}

// Register godoc
// @Summary      Register a new account
// @Description  Create a patient or professional account and return a JWT
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=LoginResponse} "Account created"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/register [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if errs := validateRegistration(&req); len(errs) > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg:    "Invalid data",
			Err:    fmt.Errorf("registration validation failed"),
			Errors: errs,
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !ensureEmailAvailable(c, db, email) {
		return
	}

	hashedPassword, salt, ok := hashPasswordOrRespond(c, req.Password)
	if !ok {
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := model.User{
		Name:         util.NormalizeName(req.Name),
		Lastname:     util.NormalizeName(req.Lastname),
		Email:        email,
		Password:     hashedPassword,
		PasswordSalt: salt,
		Phone:        strings.TrimSpace(req.Phone),
		Birthdate:    req.Birthdate,
		Role:         role,
		SessionState: model.SessionClosed,
	}

	if err := db.Create(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create user", Err: err})
		return
	}

	tokenString, err := createJWTToken(user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRegisterSuccess,
		UserID:    fmt.Sprintf("%d", user.ID),
		Email:     user.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   "User registered",
	})

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "User registered successfully",
		Data: LoginResponse{Token: tokenString, User: user},
	})
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password, open a session and return a JWT
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid credentials"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	ctx := loginContext{C: c, DB: db, Email: strings.ToLower(strings.TrimSpace(req.Email)), CI: ci}

	user, ok := loadUserForLogin(ctx)
	if !ok {
		return
	}

	if !ensureAccountNotLocked(ctx, &user) {
		return
	}

	if !verifyPasswordOrRespond(ctx, &user, req.Password) {
		return
	}

	finalizeLogin(ctx, &user)
}

// helper types and functions to simplify Login flow
type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C     *gin.Context
	DB    *gorm.DB
	Email string
	CI    clientInfo
}

func loadUserForLogin(ctx loginContext) (model.User, bool) {
	user, err := loadUserByEmail(ctx.DB, ctx.Email)
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "user not found")
		util.CallUserNotAuthorized(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return model.User{}, false
	}
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "database error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return user, true
}

func ensureAccountNotLocked(ctx loginContext, user *model.User) bool {
	if locked, expiry := isAccountLocked(user); locked {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "account locked")
		util.CallUserError(ctx.C, util.APIErrorParams{
			Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", expiry.Format(time.RFC3339)),
			Err: fmt.Errorf("account locked"),
		})
		return false
	}
	return true
}

func verifyPasswordOrRespond(ctx loginContext, user *model.User, plain string) bool {
	match, err := util.VerifyPassword(plain, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "password verification error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return false
	}
	if !match {
		incrementFailedAttempts(ctx.DB, user, ctx.CI)
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "invalid password")
		util.CallUserNotAuthorized(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return false
	}
	return true
}

func finalizeLogin(ctx loginContext, user *model.User) bool {
	if err := resetFailedAttempts(ctx.DB, user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        ctx.CI.IP,
			Message:   fmt.Sprintf("Failed to reset failed attempts: %v", err),
		})
	}

	user.SessionState = model.SessionStarted
	if err := ctx.DB.Model(user).Update("session_state", model.SessionStarted).Error; err != nil {
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to open session", Err: err})
		return false
	}

	tokenString, err := createJWTToken(*user)
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "token generation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return false
	}

	expires := time.Now().Add(time.Duration(config.LoadConfig().JWTExpiryHrs) * time.Hour)
	session, err := recordSession(ctx.DB, SessionInfo{UserID: user.ID, Client: ctx.CI, Expires: expires})
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "session creation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return false
	}

	// Mirror the session into Redis (best-effort)
	if rdb := config.GetRedisClient(); rdb != nil {
		exp := time.Until(session.ExpiresAt)
		val := fmt.Sprintf("%d:%s", session.UserID, user.Role)
		_ = rdb.Set(context.Background(), fmt.Sprintf("session:%s", session.SessionToken), val, exp).Err()
		_ = util.AddSessionToUserSet(session.UserID, session.SessionToken, exp)
	}

	util.LogLoginSuccess(user.ID, user.Email, ctx.CI.IP, ctx.CI.Agent)
	util.CallSuccessOK(ctx.C, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: tokenString, SessionToken: session.SessionToken, User: *user},
	})
	return true
}

func ensureEmailAvailable(c *gin.Context, db *gorm.DB, email string) bool {
	var existingUser model.User
	err := db.First(&existingUser, "email = ?", email).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "User already exists", Err: fmt.Errorf("email already registered")})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

func hashPasswordOrRespond(c *gin.Context, plain string) (string, string, bool) {
	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return "", "", false
	}
	hashedPassword, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return "", "", false
	}
	return hashedPassword, salt, true
}

func loadUserByEmail(db *gorm.DB, email string) (model.User, error) {
	var user model.User
	err := db.Model(&user).Where("email = ?", email).First(&user).Error
	return user, err
}

func isAccountLocked(user *model.User) (bool, time.Time) {
	if user.LockedUntil != nil && *user.LockedUntil > time.Now().Unix() {
		return true, time.Unix(*user.LockedUntil, 0)
	}
	return false, time.Time{}
}

func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedAttempts++
	if user.FailedAttempts >= 5 {
		lockUntil := time.Now().Add(15 * time.Minute).Unix()
		user.LockedUntil = &lockUntil
		util.LogAccountLocked(user.ID, user.Email, ci.IP, "too many failed login attempts")
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(user.Email, ci.IP, ci.Agent, "failed to update failed attempts")
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		return db.Save(user).Error
	}
	return nil
}

func createJWTToken(user model.User) (string, error) {
	cfg := config.LoadConfig()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Duration(cfg.JWTExpiryHrs) * time.Hour).Unix(),
	})
	return token.SignedString(util.GetJWTSecretByte())
}

// SessionInfo groups parameters for creating a session to avoid long argument lists.
type SessionInfo struct {
	UserID  uint
	Client  clientInfo
	Expires time.Time
}

func recordSession(db *gorm.DB, info SessionInfo) (model.Session, error) {
	session := model.Session{
		SessionToken: uuid.NewString(),
		UserID:       info.UserID,
		ExpiresAt:    info.Expires,
		ClientIP:     info.Client.IP,
		Browser:      info.Client.Agent,
	}
	err := db.Create(&session).Error
	return session, err
}

// Logout godoc
// @Summary      User logout
// @Description  Close the caller's session and invalidate session tokens
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	if err := db.Model(&user).Update("session_state", model.SessionClosed).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to close session", Err: err})
		return
	}

	// Drop server-side session records and their Redis mirrors.
	if err := db.Where("user_id = ?", userID).Delete(&model.Session{}).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete sessions", Err: err})
		return
	}
	_ = util.InvalidateUserSessions(userID)

	util.LogLogout(user.ID, user.Email, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}

// Profile godoc
// @Summary      Current user profile
// @Description  Return the authenticated user's account
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=model.User} "Profile"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /auth/profile [get]
func Profile(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: user})
}

// VerifyToken godoc
// @Summary      Verify JWT
// @Description  Confirm the Bearer token is valid and echo its identity claims
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Valid token"
// @Failure      401 {object} util.APIResponse "Invalid or expired token"
// @Router       /auth/verify [get]
func VerifyToken(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	email, _ := middleware.GetEmail(c)
	role, _ := middleware.GetRole(c)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Token is valid",
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"role":    role,
		},
	})
}
