package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medi-pay/medi_pay/internal/account"
	"github.com/medi-pay/medi_pay/internal/balance"
	"github.com/medi-pay/medi_pay/internal/config"
	"github.com/medi-pay/medi_pay/internal/custody"
	"github.com/medi-pay/medi_pay/internal/funding"
	"github.com/medi-pay/medi_pay/internal/middleware"
	"github.com/medi-pay/medi_pay/internal/notification"
	"github.com/medi-pay/medi_pay/internal/patient"
	"github.com/medi-pay/medi_pay/internal/wallet"
	"github.com/medi-pay/medi_pay/internal/webhook"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Custody provider and shared state
	provider := custody.NewClient(custody.Config{
		BaseURL: d.Cfg.CustodyBaseURL,
		APIKey:  d.Cfg.CustodyAPIKey,
		Timeout: d.Cfg.CustodyTimeout,
	}, d.Logger)
	sets := custody.NewSetRef(d.Cfg.WalletSetID)

	// Repositories
	var accountRepo account.Repository
	var transferRepo funding.Repository
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		transferRepo = funding.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
		transferRepo = funding.NewMemoryRepository()
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(provider, accountRepo, sets, d.Logger)
	fundingSvc := funding.NewService(provider, transferRepo, sets, d.Cfg.FundingWalletID, notifier, d.Logger)
	balanceSvc := balance.NewService(provider, d.Logger)
	registry := patient.NewHTTPRegistry(d.Cfg.PatientRegistryURL, d.Cfg.CustodyTimeout)
	patientSvc := patient.NewService(registry, accountRepo, walletSvc, d.Logger)

	walletHandler := wallet.NewHandler(walletSvc, accountRepo)
	fundingHandler := funding.NewHandler(fundingSvc)
	balanceHandler := balance.NewHandler(balanceSvc)
	patientHandler := patient.NewHandler(patientSvc)
	verifier := webhook.NewVerifier(d.Cfg.WebhookSecret, d.Cfg.IsProduction(), d.Logger)
	webhookHandler := webhook.NewHandler(verifier, fundingSvc, d.Logger)

	// Provider webhooks authenticate by signature, not operator key, and
	// carry no Idempotency-Key.
	RegisterWebhookRoutes(app, webhookHandler)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	if d.Cfg.OperatorKeyHash == "" && !d.Cfg.IsDevelopment() {
		return fmt.Errorf("OPERATOR_KEY_HASH must be set when APP_ENV=%s", d.Cfg.AppEnv)
	}
	api.Use(middleware.OperatorKey(d.Cfg.OperatorKeyHash))
	if d.Cache != nil {
		api.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterWalletRoutes(api, walletHandler)
	RegisterFundingRoutes(api, fundingHandler)
	RegisterBalanceRoutes(api, balanceHandler)
	RegisterPatientRoutes(api, patientHandler)

	return nil
}
