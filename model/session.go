package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side login session record. The opaque token is handed
// out at login and mirrored into Redis when available, so logout can revoke
// every token a user holds.
type Session struct {
	gorm.Model
	SessionToken string    `json:"session_token" gorm:"column:session_token;uniqueIndex;not null"`
	UserID       uint      `json:"user_id" gorm:"column:user_id;index;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"column:expires_at;not null"`
	ClientIP     string    `json:"client_ip" gorm:"column:client_ip"`
	Browser      string    `json:"browser" gorm:"column:browser"`
}
