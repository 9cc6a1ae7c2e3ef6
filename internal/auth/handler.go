package auth

import (
	"context"
	"errors"

	"github.com/duduji/api/internal/email"
	"github.com/duduji/api/internal/middleware"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/response"
	"github.com/duduji/api/internal/token"
	"github.com/duduji/api/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc       *Service
	emails    *email.Service
	providers map[string]*OAuthProvider
	states    *stateStore
	clientURL string
}

func NewHandler(svc *Service, emails *email.Service, clientURL string, providers ...*OAuthProvider) *Handler {
	byName := make(map[string]*OAuthProvider, len(providers))
	for _, p := range providers {
		byName[string(p.Name)] = p
	}
	return &Handler{
		svc:       svc,
		emails:    emails,
		providers: byName,
		states:    newStateStore(),
		clientURL: clientURL,
	}
}

type signInRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	RememberMe bool   `json:"rememberMe"`
}

func (h *Handler) SignIn(c *fiber.Ctx) error {
	var body signInRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	pair, err := h.svc.SignIn(body.Email, body.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return response.Unauthorized(c, "Email or password does not match")
	}
	if errors.Is(err, ErrWithdrawalUser) {
		return response.Forbidden(c, "Withdrawal User")
	}
	if err != nil {
		return response.InternalError(c, "Failed to sign in")
	}

	token.SetPairCookies(c, pair, body.RememberMe)
	return response.NoContent(c)
}

func (h *Handler) SignOut(c *fiber.Ctx) error {
	token.ClearPairCookies(c)
	return response.NoContent(c)
}

// Refresh runs behind RequireRefresh; the refresh cookie already proved the
// identity, but the withdrawal flag is re-checked before minting new tokens.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	user, err := h.svc.UserByID(middleware.UserID(c))
	if errors.Is(err, ErrUserNotFound) {
		return response.Unauthorized(c, "User not found")
	}
	if err != nil {
		return response.InternalError(c, "Failed to refresh token")
	}
	if user.IsWithdrawal {
		return response.Forbidden(c, "Withdrawal User")
	}

	pair, err := h.svc.tokens.IssuePair(user.ID)
	if err != nil {
		return response.InternalError(c, "Failed to refresh token")
	}

	token.SetPairCookies(c, pair, false)
	return response.NoContent(c)
}

func (h *Handler) SocialSignIn(providerName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider, ok := h.providers[providerName]
		if !ok {
			return response.NotFound(c, "Provider")
		}
		state := h.states.Issue()
		return c.Redirect(provider.Config.AuthCodeURL(state))
	}
}

func (h *Handler) SocialSignInRedirect(providerName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider, ok := h.providers[providerName]
		if !ok {
			return response.NotFound(c, "Provider")
		}

		if !h.states.Redeem(c.Query("state")) {
			return response.BadRequest(c, "Invalid state parameter", nil)
		}

		ctx := context.Background()
		oauthToken, err := provider.Config.Exchange(ctx, c.Query("code"))
		if err != nil {
			return response.Unauthorized(c, "Failed to exchange authorization code")
		}

		profile, err := provider.Fetch(ctx, provider.Config.Client(ctx, oauthToken))
		if err != nil {
			return response.InternalError(c, "Failed to fetch social profile")
		}

		pair, err := h.svc.TokenBySocial(profile)
		if err != nil {
			return response.InternalError(c, "Failed to sign in")
		}

		token.SetPairCookies(c, pair, false)
		return c.Redirect(h.clientURL)
	}
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) SendEmailVerificationCode(c *fiber.Ctx) error {
	var body emailRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	if err := h.emails.IssueSignInCode(body.Email); err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "EMAIL_DELIVERY_FAILED", "Failed To Send Email", nil)
	}

	return response.NoContent(c)
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	var body verifyEmailRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	_, err := h.emails.Verify(body.Email, models.EmailAuthSignIn, body.Code)
	if errors.Is(err, email.ErrCodeNotFound) {
		return response.NotFound(c, "Code")
	}
	if errors.Is(err, email.ErrCodeExpired) {
		return response.Forbidden(c, "Validity Time Expiration")
	}
	if err != nil {
		return response.InternalError(c, "Failed to verify code")
	}

	return response.NoContent(c)
}

func (h *Handler) SendPasswordFindEmail(c *fiber.Ctx) error {
	var body emailRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	if _, err := h.svc.TokenByEmail(body.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return response.NotFound(c, "User")
		}
		if errors.Is(err, ErrWithdrawalUser) {
			return response.Forbidden(c, "Withdrawal User")
		}
		return response.InternalError(c, "Failed to send email")
	}

	if err := h.emails.IssuePasswordFindCode(body.Email); err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "EMAIL_DELIVERY_FAILED", "Failed To Send Email", nil)
	}

	return response.NoContent(c)
}

type verifyPasswordFindRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// VerifyPasswordFindCode redeems a recovery code and signs the caller in as
// the account owner, so the client can follow up with a password update.
func (h *Handler) VerifyPasswordFindCode(c *fiber.Ctx) error {
	var body verifyPasswordFindRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	_, err := h.emails.Verify(body.Email, models.EmailAuthPassword, body.Code)
	if errors.Is(err, email.ErrCodeNotFound) {
		return response.NotFound(c, "Code")
	}
	if errors.Is(err, email.ErrCodeExpired) {
		return response.Forbidden(c, "Validity Time Expiration")
	}
	if err != nil {
		return response.InternalError(c, "Failed to verify code")
	}

	pair, err := h.svc.TokenByEmail(body.Email)
	if errors.Is(err, ErrUserNotFound) {
		return response.NotFound(c, "User")
	}
	if err != nil {
		return response.InternalError(c, "Failed to sign in")
	}

	token.SetPairCookies(c, pair, false)
	return response.NoContent(c)
}

type findEmailRequest struct {
	Phone string `json:"phone" validate:"required"`
}

func (h *Handler) FindEmail(c *fiber.Ctx) error {
	var body findEmailRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	foundEmail, err := h.svc.FindEmailByPhone(body.Phone)
	if errors.Is(err, ErrUserNotFound) {
		return response.NotFound(c, "User")
	}
	if err != nil {
		return response.InternalError(c, "Failed to find email")
	}

	return response.Success(c, fiber.Map{"email": foundEmail}, "")
}
