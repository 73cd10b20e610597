package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/webhook"
)

// RegisterWebhookRoutes wires the provider notification endpoint.
func RegisterWebhookRoutes(app *fiber.App, h *webhook.Handler) {
	app.Post("/webhooks/custody", h.Receive)
}
