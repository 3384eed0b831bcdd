package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a platform account (PostgreSQL). Accounts are provisioned
// by the auth subsystem; this service only reads them.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:50"`
	DisplayName string    `json:"display_name" gorm:"size:100"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserCompact is the projection embedded in enriched notification payloads
type UserCompact struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ToCompact returns the compact projection of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
