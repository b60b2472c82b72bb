package handlers

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"plastscan/internal/services"
)

type DashboardHandler struct {
	Scans *services.ScanService
}

func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	u := currentUser(c)
	prods, err := h.Scans.ListProducts(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	slices.Reverse(prods) // newest first
	return render(c, "dashboard", fiber.Map{
		"Products": prods,
		"EcoScore": services.EcoScore(u.Points),
	})
}
