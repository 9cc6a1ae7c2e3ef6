package user

import (
	"errors"
	"time"

	"github.com/duduji/api/internal/guard"
	"github.com/duduji/api/internal/middleware"
	"github.com/duduji/api/internal/response"
	"github.com/duduji/api/internal/storage"
	"github.com/duduji/api/internal/token"
	"github.com/duduji/api/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc      *Service
	uploader storage.Uploader
}

func NewHandler(svc *Service, uploader storage.Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Birth    string `json:"birth" validate:"omitempty,datetime=2006-01-02"`
	Phone    string `json:"phone" validate:"omitempty,min=10,max=20"`
}

func (h *Handler) SignUp(c *fiber.Ctx) error {
	var body signUpRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	in := SignUpInput{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
	}
	if body.Birth != "" {
		birth, _ := time.Parse("2006-01-02", body.Birth)
		in.Birth = &birth
	}
	if body.Phone != "" {
		in.Phone = &body.Phone
	}

	err := h.svc.SignUp(in)
	if errors.Is(err, ErrDuplicateUser) {
		return response.Conflict(c, "Already registered user")
	}
	if errors.Is(err, ErrEmailNotVerified) {
		return response.Forbidden(c, "Email not verified")
	}
	if err != nil {
		return response.InternalError(c, "Failed to sign up")
	}

	return response.Created(c, nil, "Sign up successful")
}

func (h *Handler) Me(c *fiber.Ctx) error {
	me, err := h.svc.Me(middleware.UserID(c))
	if errors.Is(err, ErrUserNotFound) {
		return response.NotFound(c, "User")
	}
	if errors.Is(err, ErrWithdrawalUser) {
		return response.Forbidden(c, "Withdrawal User")
	}
	if err != nil {
		return response.InternalError(c, "Failed to load user")
	}

	return response.Success(c, me, "")
}

// UpsertProfile handles the multipart nickname + thumbnail form; the photo
// lands in object storage, only its public URL is persisted.
func (h *Handler) UpsertProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	nickName := c.FormValue("nickName")
	if nickName == "" {
		return response.ValidationError(c, []string{"nickName is required"})
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return response.ValidationError(c, []string{"thumbnail is required"})
	}

	url, err := h.uploader.Upload(file, "user/"+userID+"/profile/thumbnail")
	if err != nil {
		return response.InternalError(c, "Failed to upload thumbnail")
	}

	profile, err := h.svc.UpsertProfile(userID, nickName, url)
	if err != nil {
		return response.InternalError(c, "Failed to save profile")
	}

	return response.Success(c, profile, "Profile saved")
}

type nickNameRequest struct {
	NickName string `json:"nickName" validate:"required,max=50"`
}

func (h *Handler) UpdateNickName(c *fiber.Ctx) error {
	var body nickNameRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	err := h.svc.UpdateNickName(middleware.UserID(c), body.NickName)
	if errors.Is(err, ErrUserNotFound) {
		return response.NotFound(c, "Profile")
	}
	if err != nil {
		return response.InternalError(c, "Failed to update nickname")
	}

	return response.NoContent(c)
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	var body passwordRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	if err := h.svc.UpdatePassword(middleware.UserID(c), body.Password); err != nil {
		return response.InternalError(c, "Failed to update password")
	}

	return response.NoContent(c)
}

func (h *Handler) VerifyPassword(c *fiber.Ctx) error {
	var body passwordRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	err := h.svc.VerifyPassword(middleware.UserID(c), body.Password)
	if errors.Is(err, ErrPasswordMismatch) {
		return response.Unauthorized(c, "Password does not match")
	}
	if err != nil {
		return response.InternalError(c, "Failed to verify password")
	}

	return response.NoContent(c)
}

type withdrawalRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var body withdrawalRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	if err := h.svc.Withdraw(middleware.UserID(c), body.Reason); err != nil {
		return response.InternalError(c, "Failed to withdraw")
	}

	token.ClearPairCookies(c)
	return response.NoContent(c)
}

type emailDuplicateRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) CheckEmailDuplicate(c *fiber.Ctx) error {
	var body emailDuplicateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	if err := h.svc.CheckDuplicateEmail(body.Email); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return response.Conflict(c, "Already registered user")
		}
		return response.InternalError(c, "Failed to check email")
	}

	return response.NoContent(c)
}

type phoneDuplicateRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=20"`
}

func (h *Handler) CheckPhoneDuplicate(c *fiber.Ctx) error {
	var body phoneDuplicateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	if err := h.svc.CheckDuplicatePhone(body.Phone); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return response.Conflict(c, "Already registered user")
		}
		return response.InternalError(c, "Failed to check phone")
	}

	return response.NoContent(c)
}

// GroupMembers runs behind the group-member guard; the guard already
// resolved and authorized the group id.
func (h *Handler) GroupMembers(c *fiber.Ctx) error {
	groupID, _ := c.Locals(guard.GroupIDKey).(string)

	date := time.Now()
	if q := c.Query("dazimCreateDate"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			return response.ValidationError(c, []string{"dazimCreateDate must match format 2006-01-02"})
		}
		date = parsed
	}

	members, err := h.svc.GroupMembers(middleware.UserID(c), groupID, date)
	if err != nil {
		return response.InternalError(c, "Failed to load group members")
	}

	return response.Success(c, members, "")
}
