package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"nynth/internal/config"
	"nynth/internal/http/handlers"
	applog "nynth/internal/log"
	"nynth/internal/payment"
	"nynth/internal/repos"
	"nynth/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Gateway lifecycle: checkout is rejected with a user-visible "payment
	// system not ready" until Init succeeds.
	gateway := payment.NewGateway(payment.Config{
		PublicKey: cfg.PaystackPublicKey,
		SecretKey: cfg.PaystackSecretKey,
		BaseURL:   cfg.PaystackBaseURL,
	})
	if err := gateway.Init(); err != nil {
		log.Printf("[warn] payment gateway not ready: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			// Webhook deliveries must never be throttled away.
			return strings.HasPrefix(c.Path(), "/api/v1/payments/webhook")
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, gateway)

	api := app.Group("/api/v1")

	// Cart
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/remove", deps.CartHandler.Remove)
	api.Post("/cart/quantity", deps.CartHandler.SetQuantity)

	// Checkout & orders
	api.Get("/checkout", deps.CheckoutHandler.View)
	checkoutLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.checkout.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, retry soon"})
		},
	})
	api.Post("/orders", checkoutLimiter, deps.CheckoutHandler.Place)
	api.Get("/orders", deps.CheckoutHandler.History)
	api.Get("/orders/confirmed", deps.CheckoutHandler.Confirmed)

	// Payments
	api.Post("/payments/callback", deps.PaymentHandler.Callback)
	api.Post("/payments/closed", deps.PaymentHandler.Closed)
	api.Post("/payments/webhook", deps.PaymentHandler.Webhook)

	// Settings
	api.Get("/settings", deps.SettingsHandler.Get)

	// Admin console
	admin := app.Group("/admin", handlers.RequireAdmin(cfg.AdminTokenHash))
	admin.Get("/orders", deps.AdminHandler.OrdersPage)
	admin.Get("/orders/pending-payment", deps.AdminHandler.PendingPayments)
	admin.Post("/orders/:id/reverify", deps.AdminHandler.Reverify)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/inventory", deps.AdminHandler.Inventory)
	admin.Post("/inventory/:id", deps.AdminHandler.UpdateStock)
	admin.Put("/settings", deps.AdminHandler.UpdateSettings)

	// Confirmation-email worker
	notifier := services.NewNotifier(repos.NewOutboxRepo(db), services.LogMailer{})
	notifier.Start()
	defer notifier.Stop()

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
