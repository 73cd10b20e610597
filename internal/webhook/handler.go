package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medi-pay/medi_pay/internal/funding"
)

// SignatureHeader carries the provider's versioned HMAC digest.
const SignatureHeader = "X-Webhook-Signature"

// Reconciler applies provider transfer-state notifications to stored
// transfer records. Implemented by *funding.Service.
type Reconciler interface {
	ReconcileCompleted(ctx context.Context, providerTransferID string, completedAt time.Time) error
	ReconcileFailed(ctx context.Context, providerTransferID string) error
}

// Handler receives transfer-status notifications from the custody provider.
type Handler struct {
	verifier   *Verifier
	reconciler Reconciler
	logger     *slog.Logger
}

// NewHandler constructs a webhook handler.
func NewHandler(verifier *Verifier, reconciler Reconciler, logger *slog.Logger) *Handler {
	return &Handler{verifier: verifier, reconciler: reconciler, logger: logger}
}

type notificationPayload struct {
	NotificationType string `json:"notificationType"`
	Notification     struct {
		ID    string `json:"id"`
		State string `json:"state"`
	} `json:"notification"`
}

// Receive authenticates and applies one provider notification. Verification
// happens on the exact raw body, before any parsing.
func (h *Handler) Receive(c *fiber.Ctx) error {
	body := c.Body()
	if !h.verifier.Verify(c.Get(SignatureHeader), body) {
		return fiber.NewError(http.StatusUnauthorized, "invalid webhook signature")
	}

	var payload notificationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed notification body")
	}
	if payload.Notification.ID == "" {
		// Subscription confirmations and pings carry no transaction.
		h.logger.Info("webhook acknowledged without action", "type", payload.NotificationType)
		return c.SendStatus(http.StatusOK)
	}

	var err error
	switch payload.Notification.State {
	case "COMPLETE", "COMPLETED", "CONFIRMED":
		err = h.reconciler.ReconcileCompleted(c.UserContext(), payload.Notification.ID, time.Now().UTC())
	case "FAILED", "DENIED", "CANCELLED":
		err = h.reconciler.ReconcileFailed(c.UserContext(), payload.Notification.ID)
	default:
		h.logger.Info("webhook state ignored",
			"provider_transfer_id", payload.Notification.ID, "state", payload.Notification.State)
		return c.SendStatus(http.StatusOK)
	}

	if err != nil {
		if errors.Is(err, funding.ErrTransferNotFound) {
			// Unknown or already-terminal transfers are acknowledged so the
			// provider stops redelivering.
			h.logger.Info("webhook for unknown or terminal transfer",
				"provider_transfer_id", payload.Notification.ID, "state", payload.Notification.State)
			return c.SendStatus(http.StatusOK)
		}
		h.logger.Error("webhook reconciliation failed",
			"provider_transfer_id", payload.Notification.ID, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "reconciliation failed")
	}

	h.logger.Info("webhook reconciled",
		"provider_transfer_id", payload.Notification.ID, "state", payload.Notification.State)
	return c.SendStatus(http.StatusOK)
}
