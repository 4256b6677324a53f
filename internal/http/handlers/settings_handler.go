package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nynth/internal/services"
)

type SettingsHandler struct {
	Settings *services.SettingsService
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.Settings.Current())
}
