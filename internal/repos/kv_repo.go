package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// KVRepo is a durable string key-value store backed by sqlite. The cart store
// persists session snapshots through it.
type KVRepo struct{ db *sqlx.DB }

func NewKVRepo(db *sqlx.DB) *KVRepo { return &KVRepo{db: db} }

// Get returns the stored value and whether the key exists.
func (r *KVRepo) Get(key string) (string, bool, error) {
	var value string
	err := r.db.Get(&value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *KVRepo) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO kv_store(key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
