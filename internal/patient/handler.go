package patient

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/account"
	"github.com/medi-pay/medi_pay/internal/custody"
)

var validate = validator.New()

// Handler exposes patient wallet resolution endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a patient handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type resolveRequest struct {
	Phone string `json:"phone" validate:"omitempty,max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

type accountResponse struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	WalletID   string `json:"wallet_id"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// GetOrCreate resolves the patient's wallet, provisioning one on demand.
// With ?create=false it only looks up. 201 only when a wallet was actually
// provisioned by this call; an idempotent read returns 200.
func (h *Handler) GetOrCreate(c *fiber.Ctx) error {
	createIfMissing := c.Query("create", "true") != "false"
	acct, created, err := h.service.GetOrCreate(c.UserContext(), c.Params("patientId"), createIfMissing)
	if err != nil {
		return mapError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(toResponse(acct))
}

// Resolve looks a patient up by contact point and returns their account.
func (h *Handler) Resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.service.ResolveByContact(c.UserContext(), req.Phone, req.Email)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(acct))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownPatient):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, custody.ErrNotConfigured):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	default:
		var provErr *custody.ProviderError
		if errors.As(err, &provErr) {
			return fiber.NewError(http.StatusBadGateway, provErr.Message)
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}

func toResponse(a account.Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		WalletID:   a.WalletID,
		Currency:   a.Currency,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}
