package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/funding"
)

// RegisterFundingRoutes wires funding transfer endpoints.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/transfers", h.Fund)
	r.Get("/transfers/:transferId", h.Get)
}
