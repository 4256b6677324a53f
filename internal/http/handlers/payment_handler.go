package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"nynth/internal/domain"
	applog "nynth/internal/log"
	"nynth/internal/payment"
	"nynth/internal/repos"
	"nynth/internal/services"
	"nynth/internal/validate"
)

type PaymentHandler struct {
	Repo          *repos.OrderRepo
	Orders        *services.OrderService
	Gateway       Gateway
	Reconciler    *services.Reconciler
	WebhookSecret string
}

type callbackReq struct {
	OrderID   string `json:"orderId"`
	Reference string `json:"reference"`
}

// Callback handles the popup's client-side success signal. The client is a
// hint, not proof: the reference is re-verified against the gateway, amount
// included, before the order is touched.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var req callbackReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	orderID, ok := validate.ID(req.OrderID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing orderId"})
	}
	ref, ok := validate.Reference(req.Reference)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing reference"})
	}

	order, err := h.Repo.Get(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		applog.Error(c, "payment.callback.load", err, map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load order"})
	}

	verdict, err := h.Gateway.Verify(c.Context(), ref)
	if err != nil {
		applog.Error(c, "payment.callback.verify", err, map[string]any{"order_id": orderID})
		if errors.Is(err, domain.ErrPaymentUnavailable) || errors.Is(err, domain.ErrGatewayNotReady) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "verification unavailable, your order is saved"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not verify payment"})
	}
	if !verdict.Succeeded() {
		applog.Security(c, "payment.callback.not_success", map[string]any{"order_id": orderID, "status": verdict.Status})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "payment not completed", "status": verdict.Status})
	}
	if verdict.AmountMinor != payment.AmountMinor(order.Total) {
		applog.Security(c, "payment.callback.amount_mismatch", map[string]any{
			"order_id": orderID, "expected": payment.AmountMinor(order.Total), "got": verdict.AmountMinor,
		})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "payment amount mismatch"})
	}

	redirect, err := h.Reconciler.Complete(sid, orderID, ref)
	if err != nil {
		applog.Error(c, "payment.callback.confirm", err, map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment received but confirmation failed, support has been notified"})
	}

	applog.Audit(c, "payment.confirmed", map[string]any{"order_id": orderID, "reference": ref})
	return c.JSON(fiber.Map{"status": "paid", "redirect": redirect, "reference": ref})
}

// Closed records a dismissed popup. The attempt is cancelled, the order is
// not: it stays pending for admin reconciliation.
func (h *PaymentHandler) Closed(c *fiber.Ctx) error {
	var req callbackReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	applog.Info(c, "payment.popup_closed", map[string]any{"order_id": req.OrderID})
	return c.JSON(fiber.Map{"status": "pending", "message": "payment window closed, your order is saved"})
}

// Webhook is the authoritative server-to-server confirmation path. Only
// signature-verified charge.success events reach the idempotent confirm.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	sig := c.Get(payment.SignatureHeader)
	if !payment.ValidSignature(h.WebhookSecret, body, sig) {
		applog.Security(c, "webhook.bad_signature", nil)
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	ev, err := payment.ParseEvent(body)
	if err != nil {
		applog.Security(c, "webhook.bad_payload", map[string]any{"error": err.Error()})
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if ev.Event != payment.EventChargeSuccess {
		return c.SendStatus(fiber.StatusOK)
	}

	orderID := ev.Data.Metadata.OrderID
	if orderID == "" {
		applog.Security(c, "webhook.no_order_id", map[string]any{"reference": ev.Data.Reference})
		return c.SendStatus(fiber.StatusOK)
	}

	order, err := h.Repo.Get(orderID)
	if err != nil {
		applog.Error(c, "webhook.load", err, map[string]any{"order_id": orderID})
		return c.SendStatus(fiber.StatusOK)
	}
	if ev.Data.AmountMinor != payment.AmountMinor(order.Total) {
		applog.Security(c, "webhook.amount_mismatch", map[string]any{
			"order_id": orderID, "expected": payment.AmountMinor(order.Total), "got": ev.Data.AmountMinor,
		})
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.Orders.ConfirmPayment(orderID, ev.Data.Reference); err != nil {
		applog.Error(c, "webhook.confirm", err, map[string]any{"order_id": orderID})
		// Non-2xx makes Paystack redeliver, which is safe against the
		// idempotent confirm.
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	applog.Audit(c, "payment.confirmed.webhook", map[string]any{"order_id": orderID, "reference": ev.Data.Reference})
	return c.SendStatus(fiber.StatusOK)
}
