package repos

import (
	"github.com/jmoiron/sqlx"

	"nynth/internal/domain"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get() (domain.Settings, error) {
	var s domain.Settings
	err := r.db.Get(&s, `SELECT shipping_fee_default, currency_symbol FROM settings WHERE id = 1`)
	return s, err
}

func (r *SettingsRepo) Upsert(s domain.Settings) error {
	_, err := r.db.Exec(`
		INSERT INTO settings(id, shipping_fee_default, currency_symbol, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  shipping_fee_default = excluded.shipping_fee_default,
		  currency_symbol = excluded.currency_symbol,
		  updated_at = CURRENT_TIMESTAMP
	`, s.ShippingFeeDefault, s.CurrencySymbol)
	return err
}
