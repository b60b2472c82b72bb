package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"plastscan/internal/domain"
	"plastscan/internal/log"
	"plastscan/internal/scanflow"
	"plastscan/internal/services"
	"plastscan/internal/validate"
)

type ScanHandler struct {
	Scans *services.ScanService
}

func (h *ScanHandler) PurchasePage(c *fiber.Ctx) error {
	return render(c, "purchase", nil)
}

// Purchase reads one barcode from the camera and registers it.
func (h *ScanHandler) Purchase(c *fiber.Ctx) error {
	u := currentUser(c)
	barcode, err := h.Scans.Decode(c.UserContext(), nil)
	if err != nil {
		return err
	}
	out, err := h.Scans.Purchase(c.UserContext(), u.ID, barcode)
	if err != nil {
		return err
	}
	logOutcome(c, "scan.purchase", out)
	return render(c, "purchase", fiber.Map{"Outcome": &out})
}

func (h *ScanHandler) DisposalPage(c *fiber.Ctx) error {
	f, err := h.Scans.Flow(c.UserContext(), c.Cookies(sidCookie))
	if err != nil {
		return err
	}
	return h.renderFlow(c, f, "")
}

func (h *ScanHandler) renderFlow(c *fiber.Ctx, f scanflow.Flow, msg string) error {
	return render(c, "disposal", fiber.Map{
		"Step":           string(f.Current()),
		"ProductBarcode": f.ProductBarcode,
		"Outcome":        f.Result,
		"Err":            msg,
	})
}

func (h *ScanHandler) ScanProduct(c *fiber.Ctx) error {
	_, err := h.Scans.ScanProduct(c.UserContext(), c.Cookies(sidCookie), nil)
	switch {
	case errors.Is(err, scanflow.ErrInvalidTransition):
		log.Security(c, "scanflow.out_of_order", map[string]any{"op": "scan_product"})
	case err != nil:
		return err
	}
	return c.Redirect("/scan/disposal")
}

func (h *ScanHandler) SubmitBin(c *fiber.Ctx) error {
	u := currentUser(c)
	sid := c.Cookies(sidCookie)
	code, ok := validate.BinCode(c.FormValue("binCode"))
	if !ok {
		f, err := h.Scans.Flow(c.UserContext(), sid)
		if err != nil {
			return err
		}
		c.Status(fiber.StatusBadRequest)
		return h.renderFlow(c, f, "Please enter the code printed on the bin.")
	}

	_, out, err := h.Scans.SubmitBin(c.UserContext(), sid, u.ID, code)
	switch {
	case errors.Is(err, scanflow.ErrInvalidTransition):
		log.Security(c, "scanflow.out_of_order", map[string]any{"op": "submit_bin"})
		return c.Redirect("/scan/disposal")
	case err != nil:
		return err
	}
	logOutcome(c, "scan.disposal", out)
	return c.Redirect("/scan/disposal")
}

func (h *ScanHandler) Reset(c *fiber.Ctx) error {
	if _, err := h.Scans.ResetFlow(c.UserContext(), c.Cookies(sidCookie)); err != nil {
		return err
	}
	return c.Redirect("/scan/disposal")
}

// logOutcome audits successful scans and records rejected ones as info.
func logOutcome(c *fiber.Ctx, action string, out domain.ScanOutcome) {
	fields := map[string]any{"outcome": out.Action, "points": out.Points}
	if out.Product != nil {
		fields["product_id"] = out.Product.ID
		fields["barcode"] = out.Product.Barcode
	}
	if out.Bin != nil {
		fields["bin_id"] = out.Bin.ID
	}
	if !out.OK() {
		fields["reason"] = out.Message
		log.Info(c, action+".rejected", fields)
		return
	}
	log.Audit(c, action, fields)
}
