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

type AdminHandler struct {
	Orders   *repos.OrderRepo
	OrderSvc *services.OrderService
	Products *repos.ProductRepo
	Settings *services.SettingsService
	Gateway  Gateway
}

func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	orders, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// PendingPayments lists orders awaiting confirmation: abandoned popups and
// lost confirmation writes waiting for offline reconciliation.
func (h *AdminHandler) PendingPayments(c *fiber.Ctx) error {
	orders, err := h.Orders.ListPendingPayment()
	if err != nil {
		applog.Error(c, "admin.pending", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

type reverifyReq struct {
	Reference string `json:"reference"`
}

// Reverify closes the documented gap between "gateway charged" and "order
// never marked paid": admin supplies the reference from the gateway
// dashboard, the server verifies it and runs the same idempotent confirm.
func (h *AdminHandler) Reverify(c *fiber.Ctx) error {
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing order id"})
	}
	var req reverifyReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ref, ok := validate.Reference(req.Reference)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing reference"})
	}

	order, err := h.Orders.Get(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		applog.Error(c, "admin.reverify.load", err, map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load order"})
	}

	verdict, err := h.Gateway.Verify(c.Context(), ref)
	if err != nil {
		applog.Error(c, "admin.reverify.verify", err, map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not verify with gateway"})
	}
	if !verdict.Succeeded() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "gateway reports payment not successful", "status": verdict.Status})
	}
	if verdict.AmountMinor != payment.AmountMinor(order.Total) {
		applog.Security(c, "admin.reverify.amount_mismatch", map[string]any{
			"order_id": orderID, "expected": payment.AmountMinor(order.Total), "got": verdict.AmountMinor,
		})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "payment amount mismatch"})
	}

	if err := h.OrderSvc.ConfirmPayment(orderID, ref); err != nil {
		applog.Error(c, "admin.reverify.confirm", err, map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "confirmation write failed"})
	}
	applog.Audit(c, "payment.confirmed.admin", map[string]any{"order_id": orderID, "reference": ref})
	return c.JSON(fiber.Map{"status": "paid", "orderId": orderID})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing order id"})
	}
	var req statusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}
	if err := h.Orders.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		applog.Error(c, "admin.status", err, map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update status"})
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": orderID, "status": req.Status})
	return c.JSON(fiber.Map{"orderId": orderID, "status": req.Status})
}

func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	products, err := h.Products.List()
	if err != nil {
		applog.Error(c, "admin.inventory", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load inventory"})
	}
	return c.JSON(fiber.Map{"products": products})
}

type stockReq struct {
	InStock  bool `json:"inStock"`
	StockQty int  `json:"stockQty"`
}

func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing product id"})
	}
	var req stockReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Products.SetStock(productID, req.InStock, req.StockQty); err != nil {
		if errors.Is(err, domain.ErrProductVanished) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		applog.Error(c, "admin.stock", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update stock"})
	}
	applog.Audit(c, "inventory.update", map[string]any{"product_id": productID, "in_stock": req.InStock, "qty": req.StockQty})
	return c.SendStatus(fiber.StatusNoContent)
}

type settingsReq struct {
	ShippingFeeDefault int64  `json:"shippingFeeDefault"`
	CurrencySymbol     string `json:"currencySymbol"`
}

func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.ShippingFeeDefault < 0 || req.CurrencySymbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid settings"})
	}
	if err := h.Settings.Update(domain.Settings{
		ShippingFeeDefault: req.ShippingFeeDefault,
		CurrencySymbol:     req.CurrencySymbol,
	}); err != nil {
		applog.Error(c, "admin.settings", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update settings"})
	}
	applog.Audit(c, "settings.update", map[string]any{"shipping_fee": req.ShippingFeeDefault})
	return c.SendStatus(fiber.StatusNoContent)
}
