package dazim

import (
	"errors"
	"sort"
	"time"

	"github.com/duduji/api/internal/database"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/user"
	"github.com/duduji/api/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrDazimNotFound  = errors.New("dazim not found")
	ErrNotMember      = errors.New("not a group member")
	ErrAlreadyCreated = errors.New("already created dazim today")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create posts today's commitment. One dazim per (user, group, day): the
// pre-check catches the common case and the unique index settles races.
func (s *Service) Create(userID, groupID, content string) error {
	if err := s.db.First(&models.Group{}, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	var membership int64
	if err := s.db.Model(&models.GroupUser{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&membership).Error; err != nil {
		return err
	}
	if membership == 0 {
		return ErrNotMember
	}

	today := datatypes.Date(time.Now())
	var existing int64
	if err := s.db.Model(&models.Dazim{}).
		Where("user_id = ? AND group_id = ? AND create_date = ?", userID, groupID, today).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrAlreadyCreated
	}

	err := s.db.Create(&models.Dazim{
		UserID:     userID,
		GroupID:    groupID,
		Content:    content,
		CreateDate: today,
	}).Error
	if err != nil && database.IsUniqueViolation(err) {
		return ErrAlreadyCreated
	}
	return err
}

// Complete attaches the proof photo and flips the success flag. The writer
// guard already established the caller authored this dazim.
func (s *Service) Complete(dazimID, photoURL string) error {
	result := s.db.Model(&models.Dazim{}).Where("id = ?", dazimID).Updates(map[string]interface{}{
		"photo":      photoURL,
		"is_success": true,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDazimNotFound
	}
	return nil
}

type UserDTO struct {
	ID      string           `json:"id"`
	IsMe    bool             `json:"isMe"`
	Profile *user.ProfileDTO `json:"profile"`
}

type DTO struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	Photo     string  `json:"photo"`
	IsSuccess bool    `json:"isSuccess"`
	CreateAt  string  `json:"createAt"`
	UpdateAt  string  `json:"updateAt"`
	User      UserDTO `json:"user"`
}

type ListResult struct {
	IsCreatedMyDazim bool  `json:"isCreatedMyDazim"`
	Data             []DTO `json:"data"`
}

// List returns the group's dazims for the given day, the caller's first.
func (s *Service) List(userID, groupID string, date time.Time) (*ListResult, error) {
	var membership int64
	if err := s.db.Model(&models.GroupUser{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&membership).Error; err != nil {
		return nil, err
	}
	if membership == 0 {
		return nil, ErrNotMember
	}

	day := datatypes.Date(date)

	var dazims []models.Dazim
	err := s.db.Preload("User.Profile").
		Where("group_id = ? AND create_date = ?", groupID, day).
		Find(&dazims).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Data: make([]DTO, 0, len(dazims))}
	for _, d := range dazims {
		dto := DTO{
			ID:        d.ID,
			Content:   d.Content,
			Photo:     d.Photo,
			IsSuccess: d.IsSuccess,
			CreateAt:  utils.FormatDateTime(d.CreatedAt),
			UpdateAt:  utils.FormatDateTime(d.UpdatedAt),
			User:      UserDTO{ID: d.UserID, IsMe: d.UserID == userID},
		}
		if d.User != nil && d.User.Profile != nil {
			dto.User.Profile = &user.ProfileDTO{
				NickName:  d.User.Profile.NickName,
				Thumbnail: d.User.Profile.Thumbnail,
			}
		}
		if dto.User.IsMe {
			result.IsCreatedMyDazim = true
		}
		result.Data = append(result.Data, dto)
	}

	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].User.IsMe && !result.Data[j].User.IsMe
	})

	return result, nil
}
