package feed

import (
	"errors"

	"github.com/duduji/api/internal/middleware"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/response"
	"github.com/duduji/api/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(c *fiber.Ctx) error {
	feeds, err := h.svc.Feeds(middleware.UserID(c))
	if err != nil {
		return response.InternalError(c, "Failed to load feeds")
	}
	return response.Success(c, feeds, "")
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if messages := validation.Struct(struct {
		ID string `validate:"required,uuid4"`
	}{id}); messages != nil {
		return response.ValidationError(c, []string{"id must be a UUID"})
	}

	detail, err := h.svc.Feed(middleware.UserID(c), id)
	if errors.Is(err, ErrFeedNotFound) {
		return response.NotFound(c, "Feed")
	}
	if err != nil {
		return response.InternalError(c, "Failed to load feed")
	}

	return response.Success(c, detail, "")
}

type toggleRequest struct {
	ReactionType string `json:"reactionType" validate:"required,oneof=FIRE STAR CONGRATULATIONS HEART MUSIC"`
}

// ToggleReaction runs behind the group-member guard resolved through the
// dazim's owning group.
func (h *Handler) ToggleReaction(c *fiber.Ctx) error {
	var body toggleRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if messages := validation.Struct(body); messages != nil {
		return response.ValidationError(c, messages)
	}

	result, err := h.svc.ToggleReaction(middleware.UserID(c), c.Params("id"), models.ReactionType(body.ReactionType))
	if errors.Is(err, ErrToggleConflict) {
		return response.Conflict(c, "Reaction already toggled")
	}
	if err != nil {
		return response.InternalError(c, "Failed to toggle reaction")
	}

	return response.Success(c, result, "")
}
