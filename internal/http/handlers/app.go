package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"plastscan/internal/config"
	applog "plastscan/internal/log"
	"plastscan/web"
)

const friendlyError = "Something went wrong. Please try again."

// NewEngine loads templates from the binary, or from ./web/templates with
// live reload when cfg.TemplateReload is set.
func NewEngine(cfg config.Config) *html.Engine {
	var engine *html.Engine
	if cfg.TemplateReload {
		engine = html.New("./web/templates", ".html")
		engine.Reload(true)
	} else {
		engine = html.NewFileSystem(web.Templates(), ".html")
	}
	engine.AddFunc("date", FormatDate)
	return engine
}

// RequestTimeout gives every handler a context that ends after d. fiber
// leaves UserContext as context.Background otherwise.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler logs the error and answers with a message that carries no
// internals: JSON under /api, the notfound page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, friendlyError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = fiber.StatusGatewayTimeout, "The scanner took too long. Please try again."
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp wires middleware and routes around deps.
func NewApp(deps *Deps, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        NewEngine(cfg),
		ErrorHandler: ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if cfg.RequestTimeout > 0 {
		app.Use(RequestTimeout(cfg.RequestTimeout))
	}
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(AttachUser(deps.Sessions))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			}
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many requests. Please slow down."})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		// the API is JSON-only and SameSite cookies keep it off cross-site forms
		Next: isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Routes ----------
	sh := deps.SessionHandler
	app.Get("/login", sh.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later.", "Name": "", "Email": ""})
		},
	}), sh.Login)
	app.Post("/logout", sh.Logout)

	auth := RequireUser(deps.Sessions)
	app.Get("/", auth, deps.DashboardHandler.Home)

	scan := app.Group("/scan", auth)
	scan.Get("/purchase", deps.ScanHandler.PurchasePage)
	scan.Post("/purchase", deps.ScanHandler.Purchase)
	scan.Get("/disposal", deps.ScanHandler.DisposalPage)
	scan.Post("/disposal/product", deps.ScanHandler.ScanProduct)
	scan.Post("/disposal/bin", deps.ScanHandler.SubmitBin)
	scan.Post("/disposal/reset", deps.ScanHandler.Reset)

	app.Get("/points", auth, deps.AccountHandler.Points)
	app.Get("/fines", auth, deps.AccountHandler.FinesPage)

	// API
	ah := deps.APIHandler
	api := app.Group("/api/v1", RequireAPIUser(deps.Sessions))
	api.Get("/me", ah.Me)
	api.Get("/products", ah.Products)
	api.Get("/products/:id", ah.Product)
	api.Get("/bins", ah.Bins)
	api.Get("/bins/:code", ah.Bin)
	api.Get("/rewards", ah.RewardList)
	api.Get("/fines", ah.FineList)
	api.Post("/scan/purchase", RequireJSON, ah.ScanPurchase)
	api.Post("/scan/disposal", RequireJSON, ah.ScanDisposal)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app
}
