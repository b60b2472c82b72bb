package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"plastscan/internal/log"
	"plastscan/internal/services"
)

type SessionHandler struct {
	Sessions     *services.SessionService
	SecureCookie bool
}

func (h *SessionHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.SecureCookie,
		})
	}
	return sid
}

func (h *SessionHandler) LoginForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Err": "", "Name": "", "Email": ""})
}

func (h *SessionHandler) Login(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	name := c.FormValue("name")
	email := c.FormValue("email")

	u, created, err := h.Sessions.Start(c.UserContext(), sid, name, email)
	if errors.Is(err, services.ErrInvalidLogin) {
		log.Security(c, "session.start.fail", map[string]any{"email": email, "reason": "bad_format"})
		c.Status(fiber.StatusBadRequest)
		return render(c, "login", fiber.Map{
			"Err":   "Please enter your name and a valid email",
			"Name":  name,
			"Email": email,
		})
	}
	if err != nil {
		return err
	}

	c.Locals("user", u)
	log.Audit(c, "session.start", map[string]any{"email": u.Email, "new_user": created})
	return c.Redirect("/")
}

func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(sidCookie)
	if sid != "" {
		if err := h.Sessions.End(c.UserContext(), sid); err != nil {
			return err
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookie,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "session.end", nil)
	return c.Redirect("/login")
}
