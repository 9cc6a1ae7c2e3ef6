package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Thumbnail  string    `gorm:"size:500" json:"thumbnail"`
	InviteCode string    `gorm:"uniqueIndex;size:36;not null" json:"inviteCode"`
	Notice     string    `gorm:"size:1000" json:"notice"`
	CreatedAt  time.Time `json:"createAt"`
	UpdatedAt  time.Time `json:"updateAt"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// GroupUser is the membership join row. Order is the position of the group in
// the member's personal list, dense from 0 per user.
type GroupUser struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_group_user" json:"user_id"`
	GroupID   string    `gorm:"size:36;not null;uniqueIndex:idx_group_user" json:"group_id"`
	Order     int       `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`

	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
