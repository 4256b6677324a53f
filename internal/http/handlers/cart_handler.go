package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"nynth/internal/domain"
	applog "nynth/internal/log"
	"nynth/internal/repos"
	"nynth/internal/services"
	"nynth/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartStore
	Products *repos.ProductRepo
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

func cartJSON(cart domain.Cart) fiber.Map {
	return fiber.Map{
		"lines":     cart.Lines,
		"subtotal":  cart.Subtotal(),
		"itemCount": cart.ItemCount(),
	}
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return c.JSON(cartJSON(h.Cart.Load(ensureSID(c))))
}

type cartLineReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}

	product, err := h.Products.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductVanished) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		applog.Error(c, "cart.add", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}

	cart, err := h.Cart.Add(sid, product, validate.Qty(req.Quantity), req.Size, req.Color)
	if err != nil {
		applog.Error(c, "cart.add", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return c.JSON(cartJSON(cart))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	cart, err := h.Cart.Remove(sid, req.ProductID, req.Size, req.Color)
	if err != nil {
		applog.Error(c, "cart.remove", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return c.JSON(cartJSON(cart))
}

// SetQuantity overwrites a line's quantity; zero or below removes the line.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	cart, err := h.Cart.SetQuantity(sid, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		applog.Error(c, "cart.quantity", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return c.JSON(cartJSON(cart))
}
