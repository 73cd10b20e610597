package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/balance"
)

// RegisterBalanceRoutes wires the balance read endpoint.
func RegisterBalanceRoutes(r fiber.Router, h *balance.Handler) {
	r.Get("/wallets/:walletId/balances", h.Get)
}
