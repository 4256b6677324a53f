package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nynth/internal/config"
	"nynth/internal/http/handlers"
	"nynth/internal/payment"
	"nynth/internal/repos"
)

const (
	testSecretKey  = "sk_test_123"
	testAdminToken = "nynth-admin-test"
)

// stubGateway satisfies handlers.Gateway without touching the network.
type stubGateway struct {
	ready     bool
	openErr   error
	verifyRes *payment.VerifyResult
	verifyErr error

	openedOrder string
	openedMajor int64
}

func (g *stubGateway) Ready() bool       { return g.ready }
func (g *stubGateway) PublicKey() string { return "pk_test_stub" }

func (g *stubGateway) Open(_ context.Context, orderID string, amountMajor int64, _ string, _ map[string]any) (*payment.InitResult, error) {
	if g.openErr != nil {
		return nil, g.openErr
	}
	g.openedOrder = orderID
	g.openedMajor = amountMajor
	return &payment.InitResult{
		AuthorizationURL: "https://checkout.paystack.test/x",
		AccessCode:       "code_1",
		Reference:        "abc123",
	}, nil
}

func (g *stubGateway) Verify(_ context.Context, reference string) (*payment.VerifyResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyRes == nil {
		return nil, errors.New("stub: no verify result configured")
	}
	res := *g.verifyRes
	res.Reference = reference
	return &res, nil
}

// testApp wires the full route table over an in-memory database and keeps the
// session cookie across requests, like one browser tab.
type testApp struct {
	app     *fiber.App
	db      *sqlx.DB
	gw      *stubGateway
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminToken), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Config{
		PaystackSecretKey:  testSecretKey,
		AdminTokenHash:     string(hash),
		CurrencySymbol:     "₦",
		ShippingFeeDefault: 1500,
	}
	gw := &stubGateway{ready: true}
	deps := handlers.NewDeps(db, cfg, gw)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/remove", deps.CartHandler.Remove)
	api.Post("/cart/quantity", deps.CartHandler.SetQuantity)
	api.Get("/checkout", deps.CheckoutHandler.View)
	api.Post("/orders", deps.CheckoutHandler.Place)
	api.Get("/orders", deps.CheckoutHandler.History)
	api.Get("/orders/confirmed", deps.CheckoutHandler.Confirmed)
	api.Post("/payments/callback", deps.PaymentHandler.Callback)
	api.Post("/payments/closed", deps.PaymentHandler.Closed)
	api.Post("/payments/webhook", deps.PaymentHandler.Webhook)
	api.Get("/settings", deps.SettingsHandler.Get)

	admin := app.Group("/admin", handlers.RequireAdmin(cfg.AdminTokenHash))
	admin.Get("/orders", deps.AdminHandler.OrdersPage)
	admin.Get("/orders/pending-payment", deps.AdminHandler.PendingPayments)
	admin.Post("/orders/:id/reverify", deps.AdminHandler.Reverify)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/inventory", deps.AdminHandler.Inventory)
	admin.Post("/inventory/:id", deps.AdminHandler.UpdateStock)
	admin.Put("/settings", deps.AdminHandler.UpdateSettings)

	return &testApp{app: app, db: db, gw: gw, cookies: map[string]*http.Cookie{}}
}

func (ta *testApp) request(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reqBody *bytes.Reader
	if raw, ok := body.([]byte); ok {
		reqBody = bytes.NewReader(raw)
	} else if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range ta.cookies {
		req.AddCookie(c)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		ta.cookies[c.Name] = c
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func validCustomer() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"name":    "Ada Obi",
			"email":   "ada@example.test",
			"phone":   "+2348012345678",
			"address": "12 Broad Street",
			"city":    "Lagos",
			"state":   "Lagos",
		},
	}
}

func (ta *testApp) addToCart(t *testing.T, productID string, qty int) *http.Response {
	t.Helper()
	return ta.request(t, http.MethodPost, "/api/v1/cart", map[string]any{
		"productId": productID, "quantity": qty, "size": "M", "color": "black",
	}, nil)
}

func (ta *testApp) orderCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, ta.db.Get(&n, `SELECT COUNT(*) FROM orders`))
	return n
}
