package balance

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/custody"
)

// Handler exposes the balance read endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a balance handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type balanceEntry struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

type snapshotResponse struct {
	WalletID string         `json:"wallet_id"`
	Address  string         `json:"address,omitempty"`
	State    string         `json:"state,omitempty"`
	Balances []balanceEntry `json:"balances"`
	Degraded bool           `json:"degraded,omitempty"`
}

// Get returns the live balance snapshot for one wallet.
func (h *Handler) Get(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	if walletID == "" {
		return fiber.NewError(http.StatusBadRequest, "wallet id is required")
	}

	snapshot, err := h.service.Read(c.UserContext(), walletID)
	if err != nil {
		if errors.Is(err, custody.ErrNotConfigured) {
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		}
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}

	resp := snapshotResponse{
		WalletID: snapshot.WalletID,
		Address:  snapshot.Address,
		State:    snapshot.State,
		Balances: make([]balanceEntry, 0, len(snapshot.Balances)),
		Degraded: snapshot.Degraded,
	}
	for _, b := range snapshot.Balances {
		resp.Balances = append(resp.Balances, balanceEntry{Symbol: b.Symbol, Amount: b.Amount.String()})
	}
	return c.Status(http.StatusOK).JSON(resp)
}
