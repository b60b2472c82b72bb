package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "plastscan/internal/log"
	"plastscan/internal/services"
)

const sidCookie = "sid"

// AttachUser puts the session user into Locals when there is one. It never
// rejects a request.
func AttachUser(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(sidCookie); sid != "" {
			if u, err := sessions.Current(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		u, err := sessions.Current(c.UserContext(), sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAPIUser is RequireUser for the JSON API: 401 instead of a redirect.
func RequireAPIUser(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		u, err := sessions.Current(c.UserContext(), sid)
		if err != nil || u == nil {
			applog.Security(c, "access.denied.api", map[string]any{"has_sid": sid != ""})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrNoSession.Error()})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
