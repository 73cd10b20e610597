package funding

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/medi-pay/medi_pay/internal/custody"
)

var validate = validator.New()

// Handler exposes funding endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type fundRequest struct {
	TargetWalletID string `json:"target_wallet_id" validate:"required,min=1,max=128"`
	Amount         string `json:"amount" validate:"required"`
	ClaimID        string `json:"claim_id" validate:"max=128"`
}

type transferResponse struct {
	ID                 string `json:"id"`
	ClaimID            string `json:"claim_id,omitempty"`
	FromWalletID       string `json:"from_wallet_id"`
	ToWalletID         string `json:"to_wallet_id"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
	ProviderTransferID string `json:"provider_transfer_id,omitempty"`
	Status             string `json:"status"`
	CompletedAt        string `json:"completed_at,omitempty"`
}

// Fund moves stablecoin value from the system wallet to the target wallet.
func (h *Handler) Fund(c *fiber.Ctx) error {
	var req fundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be a decimal number")
	}

	result, err := h.service.Fund(c.UserContext(), FundInput{
		TargetWalletID: req.TargetWalletID,
		Amount:         amount,
		ClaimID:        req.ClaimID,
	})
	if err != nil {
		var provErr *custody.ProviderError
		switch {
		case errors.Is(err, ErrFundingSourceUnavailable):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, ErrDestinationUnresolvable):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, custody.ErrNotConfigured):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		case errors.As(err, &provErr):
			// The attempt was recorded as pending; surface both the error
			// and the record so the operator can retry.
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{
				"error":    provErr.Message,
				"transfer": toResponse(result),
			})
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(toResponse(result))
}

// Get returns one transfer record.
func (h *Handler) Get(c *fiber.Ctx) error {
	transfer, err := h.service.Get(c.UserContext(), c.Params("transferId"))
	if err != nil {
		if errors.Is(err, ErrTransferNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(transfer))
}

func toResponse(t Transfer) transferResponse {
	resp := transferResponse{
		ID:                 t.ID,
		ClaimID:            t.ClaimID,
		FromWalletID:       t.FromWalletID,
		ToWalletID:         t.ToWalletID,
		Amount:             t.Amount.String(),
		Currency:           t.Currency,
		ProviderTransferID: t.ProviderTransferID,
		Status:             t.Status,
	}
	if t.CompletedAt != nil {
		resp.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
