package feed

import (
	"errors"

	"github.com/duduji/api/internal/database"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/user"
	"github.com/duduji/api/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrFeedNotFound   = errors.New("feed not found")
	ErrToggleConflict = errors.New("reaction toggle conflict")
)

// Service reads the feed: the successful dazims across the caller's groups.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type UserDTO struct {
	ID      string           `json:"id"`
	Profile *user.ProfileDTO `json:"profile"`
}

type DTO struct {
	ID            string  `json:"id"`
	GroupID       string  `json:"groupId"`
	Content       string  `json:"content"`
	Photo         string  `json:"photo"`
	CreateAt      string  `json:"createAt"`
	UpdateAt      string  `json:"updateAt"`
	User          UserDTO `json:"user"`
	CommentCount  int64   `json:"commentCount"`
	ReactionCount int64   `json:"reactionCount"`
}

func (s *Service) Feeds(userID string) ([]DTO, error) {
	memberGroups := s.db.Model(&models.GroupUser{}).Select("group_id").Where("user_id = ?", userID)

	var dazims []models.Dazim
	err := s.db.Preload("User.Profile").
		Where("group_id IN (?) AND is_success = ?", memberGroups, true).
		Order("created_at desc").
		Find(&dazims).Error
	if err != nil {
		return nil, err
	}

	feeds := make([]DTO, 0, len(dazims))
	for _, d := range dazims {
		dto := DTO{
			ID:       d.ID,
			GroupID:  d.GroupID,
			Content:  d.Content,
			Photo:    d.Photo,
			CreateAt: utils.FormatDateTime(d.CreatedAt),
			UpdateAt: utils.FormatDateTime(d.UpdatedAt),
			User:     UserDTO{ID: d.UserID},
		}
		if d.User != nil && d.User.Profile != nil {
			dto.User.Profile = &user.ProfileDTO{
				NickName:  d.User.Profile.NickName,
				Thumbnail: d.User.Profile.Thumbnail,
			}
		}

		if err := s.db.Model(&models.DazimComment{}).Where("dazim_id = ?", d.ID).Count(&dto.CommentCount).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(&models.DazimReaction{}).Where("dazim_id = ?", d.ID).Count(&dto.ReactionCount).Error; err != nil {
			return nil, err
		}

		feeds = append(feeds, dto)
	}

	return feeds, nil
}

type DetailDTO struct {
	DTO
	FireCount            int64 `json:"fireCount"`
	StarCount            int64 `json:"starCount"`
	CongratulationsCount int64 `json:"congratulationsCount"`
	HeartCount           int64 `json:"heartCount"`
	MusicCount           int64 `json:"musicCount"`
}

// Feed reads one entry. The lookup is scoped to the caller's groups, so an
// id from a foreign group is indistinguishable from a missing one.
func (s *Service) Feed(userID, feedID string) (*DetailDTO, error) {
	memberGroups := s.db.Model(&models.GroupUser{}).Select("group_id").Where("user_id = ?", userID)

	var dazim models.Dazim
	err := s.db.Preload("User.Profile").
		Where("id = ? AND group_id IN (?)", feedID, memberGroups).
		First(&dazim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &DetailDTO{
		DTO: DTO{
			ID:       dazim.ID,
			GroupID:  dazim.GroupID,
			Content:  dazim.Content,
			Photo:    dazim.Photo,
			CreateAt: utils.FormatDateTime(dazim.CreatedAt),
			UpdateAt: utils.FormatDateTime(dazim.UpdatedAt),
			User:     UserDTO{ID: dazim.UserID},
		},
	}
	if dazim.User != nil && dazim.User.Profile != nil {
		detail.User.Profile = &user.ProfileDTO{
			NickName:  dazim.User.Profile.NickName,
			Thumbnail: dazim.User.Profile.Thumbnail,
		}
	}

	type reactionCount struct {
		ReactionType models.ReactionType
		Count        int64
	}
	var counts []reactionCount
	err = s.db.Model(&models.DazimReaction{}).
		Select("reaction_type, COUNT(*) as count").
		Where("dazim_id = ?", feedID).
		Group("reaction_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, rc := range counts {
		switch rc.ReactionType {
		case models.ReactionFire:
			detail.FireCount = rc.Count
		case models.ReactionStar:
			detail.StarCount = rc.Count
		case models.ReactionCongratulations:
			detail.CongratulationsCount = rc.Count
		case models.ReactionHeart:
			detail.HeartCount = rc.Count
		case models.ReactionMusic:
			detail.MusicCount = rc.Count
		}
	}

	return detail, nil
}

type ToggleResult struct {
	Count            int64 `json:"count"`
	IsMeReactionType bool  `json:"isMeReactionType"`
}

// ToggleReaction flips the caller's reaction: absent creates it, present
// deletes it. Two racing creates collapse into one winner via the unique
// index; the loser surfaces as a conflict.
func (s *Service) ToggleReaction(userID, dazimID string, reactionType models.ReactionType) (*ToggleResult, error) {
	var existing models.DazimReaction
	err := s.db.Where("dazim_id = ? AND user_id = ? AND reaction_type = ?", dazimID, userID, reactionType).
		First(&existing).Error

	isMine := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		createErr := s.db.Create(&models.DazimReaction{
			DazimID:      dazimID,
			UserID:       userID,
			ReactionType: reactionType,
		}).Error
		if createErr != nil {
			if database.IsUniqueViolation(createErr) {
				return nil, ErrToggleConflict
			}
			return nil, createErr
		}
		isMine = true
	case err != nil:
		return nil, err
	default:
		if err := s.db.Delete(&existing).Error; err != nil {
			return nil, err
		}
	}

	var count int64
	err = s.db.Model(&models.DazimReaction{}).
		Where("dazim_id = ? AND reaction_type = ?", dazimID, reactionType).
		Count(&count).Error
	if err != nil {
		return nil, err
	}

	return &ToggleResult{Count: count, IsMeReactionType: isMine}, nil
}
