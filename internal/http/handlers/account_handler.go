package handlers

import (
	"github.com/gofiber/fiber/v2"

	"plastscan/internal/services"
)

// AccountHandler serves the read-only points and fines pages.
type AccountHandler struct {
	Rewards *services.RewardService
	Fines   *services.FineService
}

func (h *AccountHandler) Points(c *fiber.Ctx) error {
	v, err := h.Rewards.View(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return render(c, "points", fiber.Map{"View": v})
}

func (h *AccountHandler) FinesPage(c *fiber.Ctx) error {
	v, err := h.Fines.View(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return render(c, "fines", fiber.Map{"View": v})
}
