package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Provider string

const (
	ProviderGoogle Provider = "GOOGLE"
	ProviderKakao  Provider = "KAKAO"
)

type User struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Email            string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password         string     `gorm:"size:255" json:"-"` // empty for social-only accounts
	Name             string     `gorm:"size:100" json:"name"`
	Phone            *string    `gorm:"uniqueIndex;size:20" json:"phone,omitempty"`
	Birth            *time.Time `json:"birth,omitempty"`
	IsWithdrawal     bool       `gorm:"default:false" json:"-"`
	WithdrawalAt     *time.Time `json:"-"`
	WithdrawalReason string     `gorm:"size:255" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Profile        *UserProfile    `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	SocialAccounts []SocialAccount `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type UserProfile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"uniqueIndex;size:36;not null" json:"-"`
	NickName  string    `gorm:"size:50" json:"nickName"`
	Thumbnail string    `gorm:"size:500" json:"thumbnail"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type SocialAccount struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Provider  Provider  `gorm:"size:20;not null;uniqueIndex:idx_social_provider_id" json:"provider"`
	SocialID  string    `gorm:"size:100;not null;uniqueIndex:idx_social_provider_id" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (s *SocialAccount) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
