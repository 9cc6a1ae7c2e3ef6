package email

import (
	"errors"
	"fmt"
	"time"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeTTL is how long an issued verification code stays redeemable.
const CodeTTL = 24 * time.Hour

var (
	ErrCodeNotFound   = errors.New("code not found")
	ErrCodeExpired    = errors.New("validity time expiration")
	ErrDeliveryFailed = errors.New("failed to send email")
)

// Service issues and redeems one-time email codes. One active code per
// (email, auth type): issuing again overwrites the previous row.
type Service struct {
	db        *gorm.DB
	mailer    Mailer
	clientURL string
	log       *logrus.Logger
}

func NewService(db *gorm.DB, mailer Mailer, clientURL string, log *logrus.Logger) *Service {
	return &Service{db: db, mailer: mailer, clientURL: clientURL, log: log}
}

func (s *Service) IssueSignInCode(email string) error {
	code := utils.RandomDigits(6)

	if err := s.upsertCode(email, models.EmailAuthSignIn, code); err != nil {
		return err
	}

	body := fmt.Sprintf("Your Duduji verification code is %s\n\nEnter it at %s to continue signing up.", code, s.clientURL)
	return s.deliver(email, "Duduji email verification", body)
}

func (s *Service) IssuePasswordFindCode(email string) error {
	code := utils.RandomToken(24)

	if err := s.upsertCode(email, models.EmailAuthPassword, code); err != nil {
		return err
	}

	body := fmt.Sprintf("A password reset was requested for this address.\n\nOpen %s/password-find?email=%s&code=%s to choose a new password.", s.clientURL, email, code)
	return s.deliver(email, "Duduji password recovery", body)
}

func (s *Service) upsertCode(email string, authType models.EmailAuthType, code string) error {
	auth := models.EmailAuth{
		Email:    email,
		AuthType: authType,
		Code:     code,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}, {Name: "auth_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"code":       code,
			"verified":   false,
			"used":       false,
			"updated_at": time.Now(),
		}),
	}).Create(&auth).Error
}

func (s *Service) deliver(to, subject, body string) error {
	if err := s.mailer.Send(to, subject, body); err != nil {
		s.log.WithError(err).WithField("to", to).Error("email delivery failed")
		return ErrDeliveryFailed
	}
	return nil
}

// Verify redeems a code. Sign-in codes are marked verified so a later
// sign-up can consume them; password codes are single-use and marked used
// immediately.
func (s *Service) Verify(email string, authType models.EmailAuthType, code string) (*models.EmailAuth, error) {
	var auth models.EmailAuth
	err := s.db.Where("email = ? AND auth_type = ? AND code = ?", email, authType, code).First(&auth).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	if time.Since(auth.UpdatedAt) > CodeTTL {
		return nil, ErrCodeExpired
	}

	updates := map[string]interface{}{"verified": true}
	if authType == models.EmailAuthPassword {
		updates["used"] = true
	}
	// UpdateColumns keeps updated_at as the issue time; a plain Updates would
	// bump it and silently restart the redemption window.
	if err := s.db.Model(&auth).UpdateColumns(updates).Error; err != nil {
		return nil, err
	}

	return &auth, nil
}

// ConsumeSignInVerification enforces the sign-up invariant: a sign-in code
// for this email must have been verified within the window and not yet spent
// on another sign-up. On success the row is marked used.
func (s *Service) ConsumeSignInVerification(email string) error {
	var auth models.EmailAuth
	err := s.db.Where("email = ? AND auth_type = ? AND verified = ? AND used = ?",
		email, models.EmailAuthSignIn, true, false).First(&auth).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return err
	}

	if time.Since(auth.UpdatedAt) > CodeTTL {
		return ErrCodeExpired
	}

	return s.db.Model(&auth).UpdateColumn("used", true).Error
}
