package comment

import (
	"errors"

	"github.com/duduji/api/internal/middleware"
	"github.com/duduji/api/internal/response"
	"github.com/duduji/api/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type contentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// List runs behind the group-member guard resolved through the dazim.
func (h *Handler) List(c *fiber.Ctx) error {
	comments, err := h.svc.ListByDazim(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return response.InternalError(c, "Failed to load comments")
	}
	return response.Success(c, comments, "")
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var body contentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	id, err := h.svc.Create(middleware.UserID(c), c.Params("id"), policy.Sanitize(body.Content))
	if err != nil {
		return response.InternalError(c, "Failed to create comment")
	}

	return response.Created(c, fiber.Map{"id": id}, "Comment created")
}

// Reply runs behind the group-member guard resolved through the parent
// comment's dazim.
func (h *Handler) Reply(c *fiber.Ctx) error {
	var body contentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	id, err := h.svc.Reply(middleware.UserID(c), c.Params("id"), policy.Sanitize(body.Content))
	if errors.Is(err, ErrCommentNotFound) {
		return response.NotFound(c, "Comment")
	}
	if errors.Is(err, ErrReplyToReply) {
		return response.BadRequest(c, "Cannot reply to a reply", nil)
	}
	if err != nil {
		return response.InternalError(c, "Failed to create reply")
	}

	return response.Created(c, fiber.Map{"id": id}, "Reply created")
}

// Update runs behind the comment-writer guard.
func (h *Handler) Update(c *fiber.Ctx) error {
	var body contentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	err := h.svc.Update(c.Params("id"), policy.Sanitize(body.Content))
	if errors.Is(err, ErrCommentNotFound) {
		return response.NotFound(c, "Comment")
	}
	if err != nil {
		return response.InternalError(c, "Failed to update comment")
	}

	return response.NoContent(c)
}

// Delete runs behind the comment-writer guard.
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.svc.Delete(c.Params("id"))
	if errors.Is(err, ErrCommentNotFound) {
		return response.NotFound(c, "Comment")
	}
	if err != nil {
		return response.InternalError(c, "Failed to delete comment")
	}

	return response.NoContent(c)
}
