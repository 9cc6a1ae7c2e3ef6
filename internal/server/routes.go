package server

import (
	"time"

	"github.com/duduji/api/internal/guard"
	"github.com/duduji/api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.ClientURL,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: true,
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Duduji API is running",
		})
	})

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.DB)
	g := guard.New(deps.DB)

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	app.Use("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
	}))
	authGroup := app.Group("/auth")
	authGroup.Post("/sign-in", deps.Auth.SignIn)
	authGroup.Post("/sign-out", deps.Auth.SignOut)
	authGroup.Post("/refresh", middleware.RequireRefresh(deps.Tokens), deps.Auth.Refresh)
	authGroup.Get("/google-sign-in", deps.Auth.SocialSignIn("GOOGLE"))
	authGroup.Get("/google-sign-in/redirect", deps.Auth.SocialSignInRedirect("GOOGLE"))
	authGroup.Get("/kakao-sign-in", deps.Auth.SocialSignIn("KAKAO"))
	authGroup.Get("/kakao-sign-in/redirect", deps.Auth.SocialSignInRedirect("KAKAO"))
	authGroup.Post("/email-verification-code-send", deps.Auth.SendEmailVerificationCode)
	authGroup.Post("/email-verify", deps.Auth.VerifyEmail)
	authGroup.Post("/password-find-email-send", deps.Auth.SendPasswordFindEmail)
	authGroup.Post("/password-find-verify", deps.Auth.VerifyPasswordFindCode)
	authGroup.Post("/email-find", deps.Auth.FindEmail)

	// ==========================================
	// USER ROUTES
	// ==========================================
	userGroup := app.Group("/user")
	userGroup.Post("/sign-up", deps.User.SignUp)
	userGroup.Post("/email-duplicate-check", deps.User.CheckEmailDuplicate)
	userGroup.Post("/phone-duplicate-check", deps.User.CheckPhoneDuplicate)
	userGroup.Get("/me", requireAuth, deps.User.Me)
	userGroup.Post("/me/profile", requireAuth, deps.User.UpsertProfile)
	userGroup.Put("/me/profile", requireAuth, deps.User.UpsertProfile)
	userGroup.Patch("/me/nick-name", requireAuth, deps.User.UpdateNickName)
	userGroup.Patch("/me/password", requireAuth, deps.User.UpdatePassword)
	userGroup.Post("/me/password-verify", requireAuth, deps.User.VerifyPassword)
	userGroup.Post("/me/withdrawal", requireAuth, deps.User.Withdraw)
	userGroup.Get("/group/:id", requireAuth, g.GroupMember(guard.GroupByID()), deps.User.GroupMembers)

	// ==========================================
	// GROUP ROUTES
	// ==========================================
	groupGroup := app.Group("/groups")
	groupGroup.Use(requireAuth)
	groupGroup.Post("/", deps.Group.Create)
	groupGroup.Post("/enter", deps.Group.Enter)
	groupGroup.Get("/", deps.Group.List)
	groupGroup.Put("/order", deps.Group.UpdateOrder)
	groupGroup.Get("/dazim-success-dates", deps.Group.DazimSuccessDates)
	groupGroup.Get("/:id", g.GroupMember(guard.GroupByID()), deps.Group.Get)
	groupGroup.Patch("/:id/name", g.GroupMember(guard.GroupByID()), deps.Group.UpdateName)
	groupGroup.Patch("/:id/notice", g.GroupMember(guard.GroupByID()), deps.Group.UpdateNotice)
	groupGroup.Patch("/:id/thumbnail", g.GroupMember(guard.GroupByID()), deps.Group.UpdateThumbnail)
	groupGroup.Delete("/:id/leave", g.GroupMember(guard.GroupByID()), deps.Group.Leave)

	// ==========================================
	// DAZIM ROUTES
	// ==========================================
	dazimGroup := app.Group("/dazims")
	dazimGroup.Use(requireAuth)
	dazimGroup.Post("/", deps.Dazim.Create)
	dazimGroup.Get("/", deps.Dazim.List)
	dazimGroup.Post("/:id/complete", g.Writer(guard.DazimWriter()), deps.Dazim.Complete)
	dazimGroup.Post("/:id/reaction-toggle", g.GroupMember(guard.GroupByDazimID()), deps.Feed.ToggleReaction)
	dazimGroup.Get("/:id/comment", g.GroupMember(guard.GroupByDazimID()), deps.Comment.List)
	dazimGroup.Post("/:id/comment", g.GroupMember(guard.GroupByDazimID()), deps.Comment.Create)

	// ==========================================
	// FEED ROUTES
	// ==========================================
	feedGroup := app.Group("/feeds")
	feedGroup.Use(requireAuth)
	feedGroup.Get("/", deps.Feed.List)
	feedGroup.Get("/:id", deps.Feed.Get)

	// ==========================================
	// COMMENT ROUTES
	// ==========================================
	commentGroup := app.Group("/comments")
	commentGroup.Use(requireAuth)
	commentGroup.Post("/:id/reply", g.GroupMember(guard.GroupByCommentID()), deps.Comment.Reply)
	commentGroup.Put("/:id", g.Writer(guard.CommentWriter()), deps.Comment.Update)
	commentGroup.Delete("/:id", g.Writer(guard.CommentWriter()), deps.Comment.Delete)
}
