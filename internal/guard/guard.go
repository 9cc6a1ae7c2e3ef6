// Package guard authorizes group-scoped requests. One decision skeleton is
// shared by every route: validate the path id, resolve the owning group,
// confirm it exists, then apply the final predicate — membership for group
// mutations, authorship for update/delete of a user's own resources.
package guard

import (
	"errors"

	"github.com/duduji/api/internal/middleware"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const GroupIDKey = "group_id"

type Guard struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// GroupResolver maps a path id to the owning group's id. The resource name is
// used for the NotFound response when the id resolves to nothing.
type GroupResolver struct {
	Name    string
	Resolve func(db *gorm.DB, id string) (string, error)
}

// WriterResolver maps a path id to the resource author's user id.
type WriterResolver struct {
	Name    string
	Resolve func(db *gorm.DB, id string) (string, error)
}

// GroupMember admits the request only when the caller belongs to the group
// the path id resolves to.
func (g *Guard) GroupMember(resolver GroupResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if messages := validateID(id); messages != nil {
			return response.BadRequest(c, "Validation failed", messages)
		}

		groupID, err := resolver.Resolve(g.db, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, resolver.Name)
		}
		if err != nil {
			return response.InternalError(c, "Authorization check failed")
		}

		if err := g.db.First(&models.Group{}, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "Group")
			}
			return response.InternalError(c, "Authorization check failed")
		}

		member, err := g.isMember(middleware.UserID(c), groupID)
		if err != nil {
			return response.InternalError(c, "Authorization check failed")
		}
		if !member {
			return response.Forbidden(c, "Not a group member")
		}

		c.Locals(GroupIDKey, groupID)
		return c.Next()
	}
}

// Writer admits the request only when the caller authored the resource the
// path id names.
func (g *Guard) Writer(resolver WriterResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if messages := validateID(id); messages != nil {
			return response.BadRequest(c, "Validation failed", messages)
		}

		authorID, err := resolver.Resolve(g.db, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, resolver.Name)
		}
		if err != nil {
			return response.InternalError(c, "Authorization check failed")
		}

		if authorID != middleware.UserID(c) {
			return response.Forbidden(c, "Not a "+resolver.Name+" writer")
		}

		return c.Next()
	}
}

func (g *Guard) isMember(userID, groupID string) (bool, error) {
	var count int64
	err := g.db.Model(&models.GroupUser{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	return count > 0, err
}

func validateID(id string) []string {
	var messages []string
	if id == "" {
		messages = append(messages, "id is required")
	} else if _, err := uuid.Parse(id); err != nil {
		messages = append(messages, "id must be a UUID")
	}
	return messages
}
