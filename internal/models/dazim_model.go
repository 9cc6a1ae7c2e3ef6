package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Dazim struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	UserID     string         `gorm:"size:36;not null;index;uniqueIndex:idx_dazim_user_group_day" json:"user_id"`
	GroupID    string         `gorm:"size:36;not null;index;uniqueIndex:idx_dazim_user_group_day" json:"group_id"`
	Content    string         `gorm:"size:500;not null" json:"content"`
	Photo      string         `gorm:"size:500" json:"photo"`
	IsSuccess  bool           `gorm:"default:false" json:"isSuccess"`
	CreateDate datatypes.Date `gorm:"not null;uniqueIndex:idx_dazim_user_group_day" json:"-"`
	CreatedAt  time.Time      `json:"createAt"`
	UpdatedAt  time.Time      `json:"updateAt"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
}

func (d *Dazim) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if time.Time(d.CreateDate).IsZero() {
		d.CreateDate = datatypes.Date(time.Now())
	}
	return nil
}

type ReactionType string

const (
	ReactionFire            ReactionType = "FIRE"
	ReactionStar            ReactionType = "STAR"
	ReactionCongratulations ReactionType = "CONGRATULATIONS"
	ReactionHeart           ReactionType = "HEART"
	ReactionMusic           ReactionType = "MUSIC"
)

func (r ReactionType) Valid() bool {
	switch r {
	case ReactionFire, ReactionStar, ReactionCongratulations, ReactionHeart, ReactionMusic:
		return true
	}
	return false
}

// DazimReaction presence is the toggle state; there is no boolean column.
// The unique index doubles as the race arbiter for concurrent toggles.
type DazimReaction struct {
	ID           uint         `gorm:"primaryKey" json:"-"`
	DazimID      string       `gorm:"size:36;not null;uniqueIndex:idx_dazim_reaction" json:"dazim_id"`
	UserID       string       `gorm:"size:36;not null;uniqueIndex:idx_dazim_reaction" json:"user_id"`
	ReactionType ReactionType `gorm:"size:20;not null;uniqueIndex:idx_dazim_reaction" json:"reactionType"`
	CreatedAt    time.Time    `json:"created_at"`
}

type DazimComment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	DazimID   string    `gorm:"size:36;not null;index" json:"dazim_id"`
	UserID    string    `gorm:"size:36;not null" json:"user_id"`
	ParentID  *string   `gorm:"size:36;index" json:"parentId,omitempty"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	CreatedAt time.Time `json:"createAt"`
	UpdatedAt time.Time `json:"updateAt"`

	User    *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Replies []DazimComment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (c *DazimComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
