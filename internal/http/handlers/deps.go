package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nynth/internal/config"
	"nynth/internal/domain"
	"nynth/internal/payment"
	"nynth/internal/repos"
	"nynth/internal/services"
)

// Gateway is the payment adapter surface the handlers need; the concrete
// Paystack client satisfies it, tests substitute a stub.
type Gateway interface {
	Ready() bool
	PublicKey() string
	Open(ctx context.Context, orderID string, amountMajor int64, email string, metadata map[string]any) (*payment.InitResult, error)
	Verify(ctx context.Context, reference string) (*payment.VerifyResult, error)
}

type Deps struct {
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	PaymentHandler  *PaymentHandler
	AdminHandler    *AdminHandler
	SettingsHandler *SettingsHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, gw Gateway) *Deps {
	kvRepo := repos.NewKVRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	outboxRepo := repos.NewOutboxRepo(db)

	cartStore := services.NewCartStore(kvRepo)
	orderSvc := services.NewOrderService(orderRepo, outboxRepo)
	reconciler := services.NewReconciler(orderSvc, cartStore)
	settingsSvc := services.NewSettingsService(settingsRepo, domain.Settings{
		ShippingFeeDefault: cfg.ShippingFeeDefault,
		CurrencySymbol:     cfg.CurrencySymbol,
	})
	_ = settingsSvc.Load()

	return &Deps{
		CartHandler:     &CartHandler{Cart: cartStore, Products: prodRepo},
		CheckoutHandler: &CheckoutHandler{Cart: cartStore, Orders: orderSvc, Repo: orderRepo, Settings: settingsSvc, Gateway: gw, Reconciler: reconciler},
		PaymentHandler:  &PaymentHandler{Repo: orderRepo, Gateway: gw, Reconciler: reconciler, Orders: orderSvc, WebhookSecret: cfg.PaystackSecretKey},
		AdminHandler:    &AdminHandler{Orders: orderRepo, Products: prodRepo, Settings: settingsSvc, Gateway: gw, OrderSvc: orderSvc},
		SettingsHandler: &SettingsHandler{Settings: settingsSvc},
	}
}
