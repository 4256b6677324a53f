package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nynth/internal/payment"
)

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Token": testAdminToken}
}

func TestAdminGuard(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodGet, "/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "no token")

	resp = ta.request(t, http.MethodGet, "/admin/orders", nil, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "wrong token")

	resp = ta.request(t, http.MethodGet, "/admin/orders", nil, adminHeaders())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminPendingPaymentsAndReverify(t *testing.T) {
	ta := newTestApp(t)
	orderID := placeTestOrder(t, ta)

	resp := ta.request(t, http.MethodGet, "/admin/orders/pending-payment", nil, adminHeaders())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending struct {
		Orders []struct {
			ID string `json:"id"`
		} `json:"orders"`
	}
	decode(t, resp, &pending)
	require.Len(t, pending.Orders, 1)
	assert.Equal(t, orderID, pending.Orders[0].ID)

	// The popup never called back; admin reconciles with the dashboard reference.
	ta.gw.verifyRes = &payment.VerifyResult{Status: "success", AmountMinor: 3850000}
	resp = ta.request(t, http.MethodPost, "/admin/orders/"+orderID+"/reverify",
		map[string]any{"reference": "abc123"}, adminHeaders())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status string
	require.NoError(t, ta.db.Get(&status, `SELECT payment_status FROM orders WHERE id = ?`, orderID))
	assert.Equal(t, "paid", status)

	resp = ta.request(t, http.MethodGet, "/admin/orders/pending-payment", nil, adminHeaders())
	decode(t, resp, &pending)
	assert.Empty(t, pending.Orders)
}

func TestAdminReverifyRejectsUnsuccessfulCharge(t *testing.T) {
	ta := newTestApp(t)
	orderID := placeTestOrder(t, ta)
	ta.gw.verifyRes = &payment.VerifyResult{Status: "failed"}

	resp := ta.request(t, http.MethodPost, "/admin/orders/"+orderID+"/reverify",
		map[string]any{"reference": "abc123"}, adminHeaders())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assertOrderPending(t, ta, orderID)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	ta := newTestApp(t)
	orderID := placeTestOrder(t, ta)

	resp := ta.request(t, http.MethodPost, "/admin/orders/"+orderID+"/status",
		map[string]any{"status": "shipped"}, adminHeaders())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.request(t, http.MethodPost, "/admin/orders/"+orderID+"/status",
		map[string]any{"status": "teleported"}, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminStockAndSettings(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodPost, "/admin/inventory/cargo-wide-olive",
		map[string]any{"inStock": true, "stockQty": 5}, adminHeaders())
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The restocked item can now be ordered.
	ta.addToCart(t, "cargo-wide-olive", 1)
	resp = ta.request(t, http.MethodPost, "/api/v1/orders", validCustomer(), nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ta.request(t, http.MethodPut, "/admin/settings",
		map[string]any{"shippingFeeDefault": 2500, "currencySymbol": "₦"}, adminHeaders())
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ta.request(t, http.MethodGet, "/api/v1/settings", nil, nil)
	var settings struct {
		ShippingFeeDefault int64 `json:"shippingFeeDefault"`
	}
	decode(t, resp, &settings)
	assert.Equal(t, int64(2500), settings.ShippingFeeDefault)
}
