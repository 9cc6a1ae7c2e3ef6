package auth

import (
	"errors"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/token"
	"github.com/duduji/api/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("email or password does not match")
	ErrWithdrawalUser     = errors.New("withdrawal user")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	db     *gorm.DB
	tokens *token.Issuer
}

func NewService(db *gorm.DB, tokens *token.Issuer) *Service {
	return &Service{db: db, tokens: tokens}
}

func (s *Service) SignIn(email, password string) (token.Pair, error) {
	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return token.Pair{}, ErrInvalidCredentials
	}
	if err != nil {
		return token.Pair{}, err
	}

	if user.Password == "" || !utils.CheckPasswordHash(password, user.Password) {
		return token.Pair{}, ErrInvalidCredentials
	}

	// The withdrawal flag is the only kill-switch: no tokens for a
	// withdrawn account, even with the right password.
	if user.IsWithdrawal {
		return token.Pair{}, ErrWithdrawalUser
	}

	return s.tokens.IssuePair(user.ID)
}

// TokenByEmail issues a pair for the account owning the address. Used by the
// password-recovery flow after the emailed code proved control of the inbox.
func (s *Service) TokenByEmail(email string) (token.Pair, error) {
	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return token.Pair{}, ErrUserNotFound
	}
	if err != nil {
		return token.Pair{}, err
	}
	if user.IsWithdrawal {
		return token.Pair{}, ErrWithdrawalUser
	}

	return s.tokens.IssuePair(user.ID)
}

type SocialProfile struct {
	ID        string
	Provider  models.Provider
	Name      string
	Email     string
	Thumbnail string
}

// TokenBySocial resolves an external profile to a local account with upsert
// semantics: a known (provider, socialId) pair reuses its user; an unknown
// pair links to the user owning the email, creating one (with a seeded
// profile) when none exists.
func (s *Service) TokenBySocial(profile SocialProfile) (token.Pair, error) {
	var account models.SocialAccount
	err := s.db.First(&account, "provider = ? AND social_id = ?", profile.Provider, profile.ID).Error
	if err == nil {
		return s.tokens.IssuePair(account.UserID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return token.Pair{}, err
	}

	var userID string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user, "email = ?", profile.Email).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				Email: profile.Email,
				Name:  profile.Name,
				Profile: &models.UserProfile{
					NickName:  profile.Name,
					Thumbnail: profile.Thumbnail,
				},
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		userID = user.ID
		return tx.Create(&models.SocialAccount{
			UserID:   user.ID,
			Provider: profile.Provider,
			SocialID: profile.ID,
		}).Error
	})
	if err != nil {
		return token.Pair{}, err
	}

	return s.tokens.IssuePair(userID)
}

func (s *Service) FindEmailByPhone(phone string) (string, error) {
	var user models.User
	err := s.db.First(&user, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (s *Service) UserByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
