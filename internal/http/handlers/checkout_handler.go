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

type CheckoutHandler struct {
	Cart       *services.CartStore
	Orders     *services.OrderService
	Repo       *repos.OrderRepo
	Settings   *services.SettingsService
	Gateway    Gateway
	Reconciler *services.Reconciler
}

// View feeds the checkout page: cart contents, totals, and whether the SPA
// should bounce back to the cart (suppressed while a payment is completing).
func (h *CheckoutHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cart := h.Cart.Load(sid)
	settings := h.Settings.Current()
	shipping := h.Settings.ShippingFee(c.Query("state"))
	return c.JSON(fiber.Map{
		"cart":           cartJSON(cart),
		"shippingFee":    shipping,
		"total":          cart.Subtotal() + shipping,
		"currency":       settings.CurrencySymbol,
		"paymentReady":   h.Gateway.Ready(),
		"redirectToCart": h.Reconciler.RedirectToCart(sid, cart.Empty()),
	})
}

type placeOrderReq struct {
	Customer struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
	} `json:"customer"`
}

// Place creates the pending order inside the stock-gated transaction and only
// then opens a gateway transaction. A failed create is a hard stop: no
// payment popup without a confirmed order id.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var req placeOrderReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	// Field validation stays local; nothing reaches the order repository
	// until the form is complete.
	fieldErrs := fiber.Map{}
	name, ok := validate.Name(req.Customer.Name)
	if !ok {
		fieldErrs["name"] = "enter your name"
	}
	email, ok := validate.Email(req.Customer.Email)
	if !ok {
		fieldErrs["email"] = "enter a valid email"
	}
	phone, ok := validate.Phone(req.Customer.Phone)
	if !ok {
		fieldErrs["phone"] = "enter a valid phone number"
	}
	address, ok := validate.Address(req.Customer.Address)
	if !ok {
		fieldErrs["address"] = "enter your delivery address"
	}
	if len(fieldErrs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"fields": fieldErrs})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	// Refuse to start a checkout the gateway cannot finish.
	if !h.Gateway.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "payment system not ready, try again shortly"})
	}

	cart := h.Cart.Load(sid)
	if cart.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "your cart is empty"})
	}

	var userID *string
	if uid := c.Get("X-User-ID"); uid != "" {
		userID = &uid
	}

	customer := domain.Customer{
		Name: name, Email: email, Phone: phone,
		Address: address, City: req.Customer.City, State: req.Customer.State,
	}
	shipping := h.Settings.ShippingFee(req.Customer.State)

	order, err := h.Orders.CreateOrder(userID, customer, cart.Lines, shipping)
	if err != nil {
		var oos *domain.OutOfStockError
		switch {
		case errors.As(err, &oos):
			applog.Info(c, "order.place.out_of_stock", map[string]any{"product_id": oos.ProductID})
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": oos.Error(), "productId": oos.ProductID})
		case errors.Is(err, domain.ErrProductVanished):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "an item in your cart is no longer available"})
		case errors.Is(err, domain.ErrCartEmpty):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "your cart is empty"})
		}
		applog.Error(c, "order.place", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not place order, please retry"})
	}

	init, err := h.Gateway.Open(c.Context(), order.ID, order.Total, customer.Email, nil)
	if err != nil {
		// The pending order stands; admin reconciliation can still pick it up.
		applog.Error(c, "payment.open", err, map[string]any{"order_id": order.ID})
		if errors.Is(err, domain.ErrGatewayNotReady) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "payment system not ready", "orderId": order.ID})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not start payment, please retry", "orderId": order.ID})
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": order.ID,
		"total":    order.Total,
		"items":    len(order.Items),
		"guest":    userID == nil,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"orderId":          order.ID,
		"reference":        init.Reference,
		"accessCode":       init.AccessCode,
		"authorizationUrl": init.AuthorizationURL,
		"amountMinor":      payment.AmountMinor(order.Total),
		"publicKey":        h.Gateway.PublicKey(),
	})
}

// Confirmed resolves the confirmation view's lookup key (the payment
// reference) to the paid order.
func (h *CheckoutHandler) Confirmed(c *fiber.Ctx) error {
	ref, ok := validate.Reference(c.Query("ref"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing ref"})
	}
	order, err := h.Repo.GetByReference(ref)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		applog.Error(c, "order.confirmed.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load order"})
	}
	return c.JSON(order)
}

// History lists orders linked to the authenticated identity.
func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	uid := c.Get("X-User-ID")
	if uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign in to see orders"})
	}
	orders, err := h.Repo.ListByUser(uid)
	if err != nil {
		applog.Error(c, "orders.history", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}
