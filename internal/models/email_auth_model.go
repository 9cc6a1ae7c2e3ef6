package models

import "time"

type EmailAuthType string

const (
	EmailAuthSignIn   EmailAuthType = "SIGNIN"
	EmailAuthPassword EmailAuthType = "PASSWORD"
)

// EmailAuth holds at most one active code per (email, auth type). Issuing a
// new code overwrites the previous row; expiry is computed from UpdatedAt.
type EmailAuth struct {
	ID        uint          `gorm:"primaryKey"`
	Email     string        `gorm:"size:100;not null;uniqueIndex:idx_email_auth_type"`
	AuthType  EmailAuthType `gorm:"size:20;not null;uniqueIndex:idx_email_auth_type"`
	Code      string        `gorm:"size:64;not null"`
	Verified  bool          `gorm:"default:false"`
	Used      bool          `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
