package dazim

import (
	"errors"
	"time"

	"github.com/duduji/api/internal/middleware"
	"github.com/duduji/api/internal/response"
	"github.com/duduji/api/internal/storage"
	"github.com/duduji/api/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

type Handler struct {
	svc      *Service
	uploader storage.Uploader
}

func NewHandler(svc *Service, uploader storage.Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

type createRequest struct {
	GroupID string `json:"groupId" validate:"required,uuid4"`
	Content string `json:"content" validate:"required,max=500"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var body createRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	err := h.svc.Create(middleware.UserID(c), body.GroupID, policy.Sanitize(body.Content))
	if errors.Is(err, ErrGroupNotFound) {
		return response.NotFound(c, "Group")
	}
	if errors.Is(err, ErrNotMember) {
		return response.Forbidden(c, "Not a group member")
	}
	if errors.Is(err, ErrAlreadyCreated) {
		return response.Conflict(c, "Already Created Dazim today")
	}
	if err != nil {
		return response.InternalError(c, "Failed to create dazim")
	}

	return response.Created(c, nil, "Dazim created")
}

func (h *Handler) List(c *fiber.Ctx) error {
	groupID := c.Query("groupId")
	if messages := validation.Struct(struct {
		GroupID string `validate:"required,uuid4"`
	}{groupID}); messages != nil {
		return response.ValidationError(c, []string{"groupId must be a UUID"})
	}

	date := time.Now()
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			return response.ValidationError(c, []string{"date must match format 2006-01-02"})
		}
		date = parsed
	}

	result, err := h.svc.List(middleware.UserID(c), groupID, date)
	if errors.Is(err, ErrNotMember) {
		return response.Forbidden(c, "Not a group member")
	}
	if err != nil {
		return response.InternalError(c, "Failed to load dazims")
	}

	return response.Success(c, result, "")
}

// Complete runs behind the dazim-writer guard.
func (h *Handler) Complete(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return response.ValidationError(c, []string{"photo is required"})
	}

	url, err := h.uploader.Upload(file, "user/"+middleware.UserID(c)+"/dazim")
	if err != nil {
		return response.InternalError(c, "Failed to upload photo")
	}

	err = h.svc.Complete(c.Params("id"), url)
	if errors.Is(err, ErrDazimNotFound) {
		return response.NotFound(c, "Dazim")
	}
	if err != nil {
		return response.InternalError(c, "Failed to complete dazim")
	}

	return response.Success(c, fiber.Map{"photo": url, "isSuccess": true}, "Dazim completed")
}
