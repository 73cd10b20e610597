package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/patient"
)

// RegisterPatientRoutes wires patient wallet resolution endpoints.
func RegisterPatientRoutes(r fiber.Router, h *patient.Handler) {
	r.Post("/patients/:patientId/wallet", h.GetOrCreate)
	r.Post("/patients/resolve", h.Resolve)
}
