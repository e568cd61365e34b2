package model

import (
	"fmt"

	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser         = "user"
	RoleProfessional = "professional"
)

// Session states tracked on the user record.
const (
	SessionStarted = "sessionStarted"
	SessionClosed  = "closedSession"
)

// User represents a clinic account, either a patient or a professional.
// @Description User account information
type User struct {
	gorm.Model
	Name         string `json:"name" gorm:"column:name;not null" example:"Maria"`
	Lastname     string `json:"lastname" gorm:"column:lastname;not null" example:"Ferreyra"`
	Email        string `json:"email" gorm:"column:email;uniqueIndex;not null" example:"maria@example.com"`
	Password     string `json:"-" gorm:"column:password"`
	PasswordSalt string `json:"-" gorm:"column:password_salt"`
	Phone        string `json:"phone" gorm:"column:phone" example:"+54 11 4444-5555"`
	Birthdate    string `json:"birthdate" gorm:"column:birthdate" example:"1990-04-23"`
	Role         string `json:"role" gorm:"column:role;default:user" example:"user"`
	SessionState string `json:"session_state" gorm:"column:session_state;default:closedSession" example:"closedSession"`

	// Brute-force lockout bookkeeping.
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
}

// ValidRole reports whether role is one of the enumerated user roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleProfessional
}

// SeedProfessional creates the bootstrap professional account when no
// professional exists yet, so a fresh deployment is not locked out of the
// professional-only endpoints.
func SeedProfessional(db *gorm.DB, email, hashedPassword, salt string) error {
	var count int64
	if err := db.Model(&User{}).Where("role = ?", RoleProfessional).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	admin := User{
		Name:         "Admin",
		Lastname:     "Professional",
		Email:        email,
		Password:     hashedPassword,
		PasswordSalt: salt,
		Role:         RoleProfessional,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed professional account: %w", err)
	}
	return nil
}
