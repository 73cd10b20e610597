package wallet

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

// Handler exposes wallet provisioning and directory endpoints.
type Handler struct {
	service  *Service
	accounts account.Repository
}

// NewHandler constructs a wallet handler.
func NewHandler(service *Service, accounts account.Repository) *Handler {
	return &Handler{service: service, accounts: accounts}
}

type createRequest struct {
	EntityType  string `json:"entity_type" validate:"required,oneof=provider insurer patient system"`
	EntityID    string `json:"entity_id" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"max=256"`
	WalletSetID string `json:"wallet_set_id" validate:"max=128"`
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

// Create provisions a wallet for an entity. The wallet set is resolved
// lazily when the request does not pin one.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	walletSetID := req.WalletSetID
	if walletSetID == "" {
		var err error
		walletSetID, err = h.service.EnsureWalletSet(c.UserContext())
		if err != nil {
			return providerStatus(err)
		}
	}

	acct, err := h.service.CreateWallet(c.UserContext(), walletSetID, req.EntityType, req.EntityID, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateEntity):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrMissingWalletSet):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		default:
			return providerStatus(err)
		}
	}

	return c.Status(http.StatusCreated).JSON(toResponse(acct))
}

// List returns all accounts of one entity class in creation order.
func (h *Handler) List(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	if !account.ValidEntityType(entityType) {
		return fiber.NewError(http.StatusBadRequest, "unknown entity type")
	}
	accounts, err := h.accounts.ListByType(c.UserContext(), entityType)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, toResponse(acct))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"accounts": out})
}

// Lookup returns the active account for one entity key.
func (h *Handler) Lookup(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	entityID := c.Params("entityId")
	acct, err := h.accounts.FindByEntity(c.UserContext(), entityType, entityID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(acct))
}

func toResponse(acct account.Account) accountResponse {
	return accountResponse{
		ID:         acct.ID,
		EntityType: acct.EntityType,
		EntityID:   acct.EntityID,
		WalletID:   acct.WalletID,
		Currency:   acct.Currency,
		Status:     acct.Status,
		CreatedAt:  acct.CreatedAt.Format(time.RFC3339),
	}
}

// providerStatus maps custody-layer failures onto HTTP statuses shared by
// the handlers that call the provider.
func providerStatus(err error) error {
	var provErr *custody.ProviderError
	switch {
	case errors.Is(err, custody.ErrNotConfigured):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &provErr):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	case errors.Is(err, custody.ErrMalformedResponse):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
