package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/wallet"
)

// RegisterWalletRoutes wires wallet provisioning and directory endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/accounts/:entityType", h.List)
	r.Get("/accounts/:entityType/:entityId", h.Lookup)
}
