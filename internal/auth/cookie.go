package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "authToken"

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite string
}

func (cc CookieConfig) name() string {
	if cc.Name == "" {
		return DefaultCookieName
	}
	return cc.Name
}

func (cc CookieConfig) base() fiber.Cookie {
	path := cc.Path
	if path == "" {
		path = "/"
	}
	sameSite := cc.SameSite
	if sameSite == "" {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return fiber.Cookie{
		Name:     cc.name(),
		Path:     path,
		Domain:   cc.Domain,
		Secure:   cc.Secure,
		HTTPOnly: true,
		SameSite: sameSite,
	}
}

// SetSession attaches token as an HTTP-only cookie living as long as the token.
func (cc CookieConfig) SetSession(c *fiber.Ctx, token string) {
	cookie := cc.base()
	cookie.Value = token
	cookie.MaxAge = int(TokenLifetime / time.Second)
	c.Cookie(&cookie)
}

// ClearSession expires the session cookie on the client.
func (cc CookieConfig) ClearSession(c *fiber.Ctx) {
	cookie := cc.base()
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(&cookie)
}

// TokenFromRequest extracts the session token from the Cookie header.
func (cc CookieConfig) TokenFromRequest(c *fiber.Ctx) string {
	return c.Cookies(cc.name())
}
