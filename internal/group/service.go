package group

import (
	"errors"
	"time"

	"github.com/duduji/api/internal/database"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrAlreadyEntered = errors.New("already entered user")
	ErrOrderMismatch  = errors.New("not found groups or count mismatch")
	ErrNotMember      = errors.New("not a group member")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type DTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Thumbnail  string `json:"thumbnail"`
	InviteCode string `json:"inviteCode"`
	Notice     string `json:"notice"`
	CreateAt   string `json:"createAt"`
	UpdateAt   string `json:"updateAt"`
}

func toDTO(g *models.Group) DTO {
	return DTO{
		ID:         g.ID,
		Name:       g.Name,
		Thumbnail:  g.Thumbnail,
		InviteCode: g.InviteCode,
		Notice:     g.Notice,
		CreateAt:   utils.FormatDateTime(g.CreatedAt),
		UpdateAt:   utils.FormatDateTime(g.UpdatedAt),
	}
}

// Create makes a group with a fresh invite code and enrolls the creator; the
// new group lands at the end of the creator's personal list.
func (s *Service) Create(userID, name, thumbnailURL string) (string, error) {
	group := models.Group{
		Name:       name,
		Thumbnail:  thumbnailURL,
		InviteCode: uuid.NewString(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		var maxOrder struct{ Max *int }
		if err := tx.Model(&models.GroupUser{}).
			Select("MAX(sort_order) as max").
			Where("user_id = ?", userID).
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		order := 0
		if maxOrder.Max != nil {
			order = *maxOrder.Max + 1
		}

		return tx.Create(&models.GroupUser{
			UserID:  userID,
			GroupID: group.ID,
			Order:   order,
		}).Error
	})
	if err != nil {
		return "", err
	}

	return group.ID, nil
}

func (s *Service) Enter(userID, inviteCode string) error {
	var group models.Group
	err := s.db.First(&group, "invite_code = ?", inviteCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.GroupUser{}).
		Where("user_id = ? AND group_id = ?", userID, group.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyEntered
	}

	var maxOrder struct{ Max *int }
	if err := s.db.Model(&models.GroupUser{}).
		Select("MAX(sort_order) as max").
		Where("user_id = ?", userID).
		Scan(&maxOrder).Error; err != nil {
		return err
	}
	order := 0
	if maxOrder.Max != nil {
		order = *maxOrder.Max + 1
	}

	// A concurrent double-enter loses to the unique (user, group) index.
	err = s.db.Create(&models.GroupUser{UserID: userID, GroupID: group.ID, Order: order}).Error
	if err != nil && database.IsUniqueViolation(err) {
		return ErrAlreadyEntered
	}
	return err
}

func (s *Service) Get(groupID string) (*DTO, error) {
	var group models.Group
	err := s.db.First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	dto := toDTO(&group)
	return &dto, nil
}

func (s *Service) ListByUser(userID string) ([]DTO, error) {
	var memberships []models.GroupUser
	err := s.db.Preload("Group").
		Where("user_id = ?", userID).
		Order("sort_order asc").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	groups := make([]DTO, 0, len(memberships))
	for _, m := range memberships {
		if m.Group != nil {
			groups = append(groups, toDTO(m.Group))
		}
	}
	return groups, nil
}

// UpdateOrder rewrites the caller's group ordering to match ids. The list
// must be exactly the caller's current group set; the rewrite runs in one
// transaction so a partial failure cannot leave a corrupted ordering.
func (s *Service) UpdateOrder(userID string, ids []string) error {
	var memberships []models.GroupUser
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return err
	}

	current := make(map[string]bool, len(memberships))
	for _, m := range memberships {
		current[m.GroupID] = true
	}

	if len(ids) != len(memberships) {
		return ErrOrderMismatch
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !current[id] || seen[id] {
			return ErrOrderMismatch
		}
		seen[id] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for index, groupID := range ids {
			err := tx.Model(&models.GroupUser{}).
				Where("user_id = ? AND group_id = ?", userID, groupID).
				Update("sort_order", index).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

type DazimSuccessType string

const (
	DazimSuccessPersonal DazimSuccessType = "PERSONAL"
	DazimSuccessGroup    DazimSuccessType = "GROUP"
)

type SuccessDatesDTO struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Thumbnail         string   `json:"thumbnail"`
	DazimSuccessDates []string `json:"dazimSuccessDates"`
}

// DazimSuccessDates builds the calendar view: for each of the caller's
// groups, the days in [start, end] that count as successful. PERSONAL counts
// a day when the caller's own dazim succeeded; GROUP only when every member's
// dazim that day succeeded.
func (s *Service) DazimSuccessDates(userID string, start, end time.Time, successType DazimSuccessType) ([]SuccessDatesDTO, error) {
	var memberships []models.GroupUser
	err := s.db.Preload("Group").
		Where("user_id = ?", userID).
		Order("sort_order asc").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	from := datatypes.Date(start)
	to := datatypes.Date(end)

	result := make([]SuccessDatesDTO, 0, len(memberships))
	for _, m := range memberships {
		if m.Group == nil {
			continue
		}

		dto := SuccessDatesDTO{
			ID:                m.Group.ID,
			Name:              m.Group.Name,
			Thumbnail:         m.Group.Thumbnail,
			DazimSuccessDates: []string{},
		}

		var days []datatypes.Date
		query := s.db.Model(&models.Dazim{}).
			Where("group_id = ? AND is_success = ? AND create_date BETWEEN ? AND ?", m.GroupID, true, from, to)

		switch successType {
		case DazimSuccessPersonal:
			err = query.Where("user_id = ?", userID).
				Order("create_date asc").
				Pluck("create_date", &days).Error
		case DazimSuccessGroup:
			var memberCount int64
			if err := s.db.Model(&models.GroupUser{}).Where("group_id = ?", m.GroupID).Count(&memberCount).Error; err != nil {
				return nil, err
			}
			err = query.Select("create_date").
				Group("create_date").
				Having("COUNT(*) >= ?", memberCount).
				Order("create_date asc").
				Pluck("create_date", &days).Error
		}
		if err != nil {
			return nil, err
		}

		for _, day := range days {
			dto.DazimSuccessDates = append(dto.DazimSuccessDates, time.Time(day).Format("2006-01-02"))
		}
		result = append(result, dto)
	}

	return result, nil
}

func (s *Service) UpdateName(groupID, name string) error {
	return s.db.Model(&models.Group{}).Where("id = ?", groupID).Update("name", name).Error
}

func (s *Service) UpdateNotice(groupID, notice string) error {
	return s.db.Model(&models.Group{}).Where("id = ?", groupID).Update("notice", notice).Error
}

func (s *Service) UpdateThumbnail(groupID, thumbnailURL string) error {
	return s.db.Model(&models.Group{}).Where("id = ?", groupID).Update("thumbnail", thumbnailURL).Error
}

// Leave removes the membership; the last member out takes the group and its
// dazims, reactions and comments with them.
func (s *Service) Leave(userID, groupID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND group_id = ?", userID, groupID).Delete(&models.GroupUser{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotMember
		}

		var remaining int64
		if err := tx.Model(&models.GroupUser{}).Where("group_id = ?", groupID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		var dazimIDs []string
		if err := tx.Model(&models.Dazim{}).Where("group_id = ?", groupID).Pluck("id", &dazimIDs).Error; err != nil {
			return err
		}
		if len(dazimIDs) > 0 {
			if err := tx.Where("dazim_id IN ?", dazimIDs).Delete(&models.DazimReaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("dazim_id IN ?", dazimIDs).Delete(&models.DazimComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", groupID).Delete(&models.Dazim{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})
}
