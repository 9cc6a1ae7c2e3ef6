package middleware

import (
	"errors"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/response"
	"github.com/duduji/api/internal/token"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// RequireAuth resolves the access-token cookie to a live user. Tokens are not
// individually revocable, so the withdrawal flag is re-checked on every
// request rather than cached in the claims.
func RequireAuth(issuer *token.Issuer, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies(token.AccessCookie)
		if accessToken == "" {
			return response.Unauthorized(c, "Missing access token")
		}

		userID, err := issuer.ParseAccessToken(accessToken)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Unauthorized(c, "User not found")
			}
			return response.InternalError(c, "Failed to load user")
		}

		if user.IsWithdrawal {
			return response.Forbidden(c, "Withdrawal User")
		}

		c.Locals(UserIDKey, user.ID)
		c.Locals(UserKey, &user)
		return c.Next()
	}
}

// RequireRefresh authenticates the refresh-token cookie only; it does not
// load the user, the refresh handler re-validates withdrawal itself.
func RequireRefresh(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refreshToken := c.Cookies(token.RefreshCookie)
		if refreshToken == "" {
			return response.Unauthorized(c, "Missing refresh token")
		}

		userID, err := issuer.ParseRefreshToken(refreshToken)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired refresh token")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated caller's id set by RequireAuth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func AuthedUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(UserKey).(*models.User)
	return u
}
