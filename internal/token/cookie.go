package token

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// Without rememberMe the access cookie dies with the token itself;
	// with it the cookie outlives the 1h token and the client refreshes.
	accessCookieTTL   = AccessTTL
	rememberCookieTTL = 24 * time.Hour
)

func SetPairCookies(c *fiber.Ctx, pair Pair, rememberMe bool) {
	accessTTL := accessCookieTTL
	if rememberMe {
		accessTTL = rememberCookieTTL
	}

	c.Cookie(tokenCookie(AccessCookie, pair.AccessToken, accessTTL))
	c.Cookie(tokenCookie(RefreshCookie, pair.RefreshToken, RefreshTTL))
}

// ClearPairCookies expires both cookies: empty value, MaxAge 0.
func ClearPairCookies(c *fiber.Ctx) {
	c.Cookie(expiredCookie(AccessCookie))
	c.Cookie(expiredCookie(RefreshCookie))
}

func tokenCookie(name, value string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	}
}

func expiredCookie(name string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
		MaxAge:   0,
		Expires:  time.Unix(0, 0),
	}
}
