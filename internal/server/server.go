package server

import (
	"github.com/duduji/api/internal/auth"
	"github.com/duduji/api/internal/comment"
	"github.com/duduji/api/internal/dazim"
	"github.com/duduji/api/internal/feed"
	"github.com/duduji/api/internal/group"
	"github.com/duduji/api/internal/token"
	"github.com/duduji/api/internal/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries everything the router needs; handlers are built by the caller
// so tests can swap in their own storage and mail fakes.
type Deps struct {
	DB        *gorm.DB
	Tokens    *token.Issuer
	ClientURL string

	Auth    *auth.Handler
	User    *user.Handler
	Group   *group.Handler
	Dazim   *dazim.Handler
	Feed    *feed.Handler
	Comment *comment.Handler
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024,
	})

	SetupRoutes(app, deps)

	return app
}
