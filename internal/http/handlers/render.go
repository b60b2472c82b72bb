package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"plastscan/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// first request of a browser: the middleware has not set Locals yet
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// FormatDate is the "date" template func. It accepts time.Time and *time.Time.
func FormatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return FormatDate(*t)
	}
	return ""
}
