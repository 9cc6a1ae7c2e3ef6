package group

import (
	"errors"
	"time"

	"github.com/duduji/api/internal/guard"
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

// Create handles the multipart name + thumbnail form.
func (h *Handler) Create(c *fiber.Ctx) error {
	name := c.FormValue("name")
	if name == "" {
		return response.ValidationError(c, []string{"name is required"})
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return response.ValidationError(c, []string{"thumbnail is required"})
	}

	url, err := h.uploader.Upload(file, "group/thumbnail")
	if err != nil {
		return response.InternalError(c, "Failed to upload thumbnail")
	}

	groupID, err := h.svc.Create(middleware.UserID(c), name, url)
	if err != nil {
		return response.InternalError(c, "Failed to create group")
	}

	return response.Created(c, fiber.Map{"id": groupID}, "Group created")
}

type enterRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,uuid4"`
}

func (h *Handler) Enter(c *fiber.Ctx) error {
	var body enterRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	err := h.svc.Enter(middleware.UserID(c), body.InviteCode)
	if errors.Is(err, ErrGroupNotFound) {
		return response.NotFound(c, "Group")
	}
	if errors.Is(err, ErrAlreadyEntered) {
		return response.Conflict(c, "Already entered user")
	}
	if err != nil {
		return response.InternalError(c, "Failed to enter group")
	}

	return response.NoContent(c)
}

func (h *Handler) List(c *fiber.Ctx) error {
	groups, err := h.svc.ListByUser(middleware.UserID(c))
	if err != nil {
		return response.InternalError(c, "Failed to load groups")
	}
	return response.Success(c, groups, "")
}

func (h *Handler) Get(c *fiber.Ctx) error {
	groupID, _ := c.Locals(guard.GroupIDKey).(string)

	group, err := h.svc.Get(groupID)
	if errors.Is(err, ErrGroupNotFound) {
		return response.NotFound(c, "Group")
	}
	if err != nil {
		return response.InternalError(c, "Failed to load group")
	}

	return response.Success(c, group, "")
}

type successDatesQuery struct {
	DazimStartDate   string `validate:"required,datetime=2006-01-02"`
	DazimEndDate     string `validate:"required,datetime=2006-01-02"`
	DazimSuccessType string `validate:"required,oneof=PERSONAL GROUP"`
}

func (h *Handler) DazimSuccessDates(c *fiber.Ctx) error {
	query := successDatesQuery{
		DazimStartDate:   c.Query("dazimStartDate"),
		DazimEndDate:     c.Query("dazimEndDate"),
		DazimSuccessType: c.Query("dazimSuccessType"),
	}
	if messages := validation.Struct(query); messages != nil {
		return response.ValidationError(c, messages)
	}

	start, _ := time.Parse("2006-01-02", query.DazimStartDate)
	end, _ := time.Parse("2006-01-02", query.DazimEndDate)

	groups, err := h.svc.DazimSuccessDates(middleware.UserID(c), start, end, DazimSuccessType(query.DazimSuccessType))
	if err != nil {
		return response.InternalError(c, "Failed to load success dates")
	}

	return response.Success(c, groups, "")
}

type orderRequest struct {
	GroupIDs []string `json:"groupIds" validate:"required,min=1,dive,uuid4"`
}

func (h *Handler) UpdateOrder(c *fiber.Ctx) error {
	var body orderRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	err := h.svc.UpdateOrder(middleware.UserID(c), body.GroupIDs)
	if errors.Is(err, ErrOrderMismatch) {
		return response.Error(c, fiber.StatusNotFound, "NOT_FOUND", "Not found groups or count mismatch", nil)
	}
	if err != nil {
		return response.InternalError(c, "Failed to update order")
	}

	return response.NoContent(c)
}

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) UpdateName(c *fiber.Ctx) error {
	var body nameRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	groupID, _ := c.Locals(guard.GroupIDKey).(string)
	if err := h.svc.UpdateName(groupID, body.Name); err != nil {
		return response.InternalError(c, "Failed to update name")
	}

	return response.NoContent(c)
}

type noticeRequest struct {
	Notice string `json:"notice" validate:"required,max=1000"`
}

func (h *Handler) UpdateNotice(c *fiber.Ctx) error {
	var body noticeRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	groupID, _ := c.Locals(guard.GroupIDKey).(string)
	if err := h.svc.UpdateNotice(groupID, policy.Sanitize(body.Notice)); err != nil {
		return response.InternalError(c, "Failed to update notice")
	}

	return response.NoContent(c)
}

func (h *Handler) UpdateThumbnail(c *fiber.Ctx) error {
	file, err := c.FormFile("thumbnail")
	if err != nil {
		return response.ValidationError(c, []string{"thumbnail is required"})
	}

	url, err := h.uploader.Upload(file, "group/thumbnail")
	if err != nil {
		return response.InternalError(c, "Failed to upload thumbnail")
	}

	groupID, _ := c.Locals(guard.GroupIDKey).(string)
	if err := h.svc.UpdateThumbnail(groupID, url); err != nil {
		return response.InternalError(c, "Failed to update thumbnail")
	}

	return response.NoContent(c)
}

func (h *Handler) Leave(c *fiber.Ctx) error {
	groupID, _ := c.Locals(guard.GroupIDKey).(string)

	err := h.svc.Leave(middleware.UserID(c), groupID)
	if errors.Is(err, ErrNotMember) {
		return response.Forbidden(c, "Not a group member")
	}
	if err != nil {
		return response.InternalError(c, "Failed to leave group")
	}

	return response.NoContent(c)
}
