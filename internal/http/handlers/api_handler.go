package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"plastscan/internal/ledger"
	"plastscan/internal/log"
	"plastscan/internal/services"
	"plastscan/internal/validate"
)

type APIHandler struct {
	Scans   *services.ScanService
	Rewards *services.RewardService
	Fines   *services.FineService
}

type purchaseRequest struct {
	Barcode string `json:"barcode"`
}

type disposalRequest struct {
	Code           string `json:"code"`
	ProductBarcode string `json:"productBarcode"`
	BinCode        string `json:"binCode"`
}

func apiError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// RequireJSON rejects bodies that are not application/json.
func RequireJSON(c *fiber.Ctx) error {
	if !c.Is("json") {
		log.Security(c, "api.content_type.reject", map[string]any{"content_type": c.Get(fiber.HeaderContentType)})
		return apiError(c, fiber.StatusUnsupportedMediaType, "expected application/json")
	}
	return c.Next()
}

func (h *APIHandler) Me(c *fiber.Ctx) error {
	u := currentUser(c)
	return c.JSON(fiber.Map{"user": u, "ecoScore": services.EcoScore(u.Points)})
}

func (h *APIHandler) Products(c *fiber.Ctx) error {
	prods, err := h.Scans.ListProducts(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(prods)
}

func (h *APIHandler) Product(c *fiber.Ctx) error {
	p, err := h.Scans.Product(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		return apiError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *APIHandler) Bins(c *fiber.Ctx) error {
	return c.JSON(h.Scans.Bins())
}

// Bin resolves a typed bin code the way the scanner page does.
func (h *APIHandler) Bin(c *fiber.Ctx) error {
	code, ok := validate.BinCode(c.Params("code"))
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid bin code")
	}
	b, err := h.Scans.Bin(c.UserContext(), code)
	if errors.Is(err, services.ErrBinNotFound) {
		return apiError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (h *APIHandler) RewardList(c *fiber.Ctx) error {
	v, err := h.Rewards.View(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(v)
}

func (h *APIHandler) FineList(c *fiber.Ctx) error {
	v, err := h.Fines.View(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// ScanPurchase registers the given barcode, or decodes one when it is empty.
func (h *APIHandler) ScanPurchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	barcode := req.Barcode
	if barcode == "" {
		var err error
		if barcode, err = h.Scans.Decode(c.UserContext(), nil); err != nil {
			return err
		}
	} else {
		var ok bool
		if barcode, ok = validate.Barcode(barcode); !ok {
			return apiError(c, fiber.StatusBadRequest, "invalid barcode")
		}
	}

	out, err := h.Scans.Purchase(c.UserContext(), currentUser(c).ID, barcode)
	if err != nil {
		return err
	}
	logOutcome(c, "api.scan.purchase", out)
	return c.JSON(out)
}

// ScanDisposal accepts either the composite code or its two halves. Malformed
// codes are not HTTP errors; the ledger reports them as invalid outcomes.
func (h *APIHandler) ScanDisposal(c *fiber.Ctx) error {
	var req disposalRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	code := req.Code
	if code == "" {
		if req.ProductBarcode == "" && req.BinCode == "" {
			return apiError(c, fiber.StatusBadRequest, "missing code")
		}
		code = ledger.Composite(req.ProductBarcode, req.BinCode)
	}

	out, err := h.Scans.Dispose(c.UserContext(), currentUser(c).ID, code)
	if err != nil {
		return err
	}
	logOutcome(c, "api.scan.disposal", out)
	return c.JSON(out)
}
