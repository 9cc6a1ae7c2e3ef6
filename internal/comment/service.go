package comment

import (
	"errors"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/user"
	"github.com/duduji/api/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrReplyToReply    = errors.New("cannot reply to a reply")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type UserDTO struct {
	ID      string           `json:"id"`
	IsMe    bool             `json:"isMe"`
	Profile *user.ProfileDTO `json:"profile"`
}

type DTO struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	CreateAt string  `json:"createAt"`
	UpdateAt string  `json:"updateAt"`
	User     UserDTO `json:"user"`
	Replies  []DTO   `json:"replies,omitempty"`
}

func (s *Service) toDTO(m *models.DazimComment, callerID string) DTO {
	dto := DTO{
		ID:       m.ID,
		Content:  m.Content,
		CreateAt: utils.FormatDateTime(m.CreatedAt),
		UpdateAt: utils.FormatDateTime(m.UpdatedAt),
		User:     UserDTO{ID: m.UserID, IsMe: m.UserID == callerID},
	}
	if m.User != nil && m.User.Profile != nil {
		dto.User.Profile = &user.ProfileDTO{
			NickName:  m.User.Profile.NickName,
			Thumbnail: m.User.Profile.Thumbnail,
		}
	}
	return dto
}

// ListByDazim returns the dazim's top-level comments oldest first, each with
// its replies in the same order.
func (s *Service) ListByDazim(callerID, dazimID string) ([]DTO, error) {
	var comments []models.DazimComment
	err := s.db.Preload("User.Profile").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Replies.User.Profile").
		Where("dazim_id = ? AND parent_id IS NULL", dazimID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	dtos := make([]DTO, 0, len(comments))
	for i := range comments {
		dto := s.toDTO(&comments[i], callerID)
		for j := range comments[i].Replies {
			dto.Replies = append(dto.Replies, s.toDTO(&comments[i].Replies[j], callerID))
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

func (s *Service) Create(userID, dazimID, content string) (string, error) {
	comment := models.DazimComment{
		DazimID: dazimID,
		UserID:  userID,
		Content: content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return "", err
	}
	return comment.ID, nil
}

// Reply attaches a comment under parentID. The reply lives on the parent's
// dazim, and the thread stays one level deep.
func (s *Service) Reply(userID, parentID, content string) (string, error) {
	var parent models.DazimComment
	err := s.db.First(&parent, "id = ?", parentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCommentNotFound
	}
	if err != nil {
		return "", err
	}
	if parent.ParentID != nil {
		return "", ErrReplyToReply
	}

	reply := models.DazimComment{
		DazimID:  parent.DazimID,
		UserID:   userID,
		Content:  content,
		ParentID: &parent.ID,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return "", err
	}
	return reply.ID, nil
}

func (s *Service) Update(commentID, content string) error {
	result := s.db.Model(&models.DazimComment{}).Where("id = ?", commentID).Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// Delete removes the comment and any replies under it.
func (s *Service) Delete(commentID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", commentID).Delete(&models.DazimComment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.DazimComment{}, "id = ?", commentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCommentNotFound
		}
		return nil
	})
}
