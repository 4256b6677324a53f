package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nynth/internal/domain"
)

// flakySettings fails its first n Gets, then succeeds.
type flakySettings struct {
	failures int
	calls    int
	stored   domain.Settings
}

func (f *flakySettings) Get() (domain.Settings, error) {
	f.calls++
	if f.calls <= f.failures {
		return domain.Settings{}, errors.New("settings backend down")
	}
	return f.stored, nil
}

func (f *flakySettings) Upsert(s domain.Settings) error {
	f.stored = s
	return nil
}

func TestSettingsLoadRetriesThenCaches(t *testing.T) {
	src := &flakySettings{failures: 2, stored: domain.Settings{ShippingFeeDefault: 2000, CurrencySymbol: "₦"}}
	svc := NewSettingsService(src, domain.Settings{ShippingFeeDefault: 1500, CurrencySymbol: "₦"})
	svc.LoadBackoff = time.Millisecond

	require.NoError(t, svc.Load())
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, int64(2000), svc.ShippingFee("lagos"))
}

func TestSettingsFallbackWhenLoadExhausted(t *testing.T) {
	src := &flakySettings{failures: 99}
	svc := NewSettingsService(src, domain.Settings{ShippingFeeDefault: 1500, CurrencySymbol: "₦"})
	svc.LoadBackoff = time.Millisecond

	require.Error(t, svc.Load())
	assert.Equal(t, 3, src.calls, "stops after the configured attempts")

	// Checkout keeps working on the fallback fee.
	got := svc.Current()
	assert.Equal(t, int64(1500), got.ShippingFeeDefault)
	assert.Equal(t, "₦", got.CurrencySymbol)
}

func TestSettingsUpdateRefreshesCache(t *testing.T) {
	src := &flakySettings{stored: domain.Settings{ShippingFeeDefault: 1500, CurrencySymbol: "₦"}}
	svc := NewSettingsService(src, domain.Settings{ShippingFeeDefault: 1500, CurrencySymbol: "₦"})
	require.NoError(t, svc.Load())

	require.NoError(t, svc.Update(domain.Settings{ShippingFeeDefault: 2500, CurrencySymbol: "₦"}))
	assert.Equal(t, int64(2500), svc.ShippingFee("abuja"))
	assert.Equal(t, int64(2500), src.stored.ShippingFeeDefault, "write reached the store")
}
