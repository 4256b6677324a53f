package repos

import (
	"github.com/jmoiron/sqlx"

	"nynth/internal/domain"
)

// OutboxRepo queues confirmation emails. Enqueue failures are the caller's
// problem to swallow; rows stay pending until the notifier marks them sent.
type OutboxRepo struct{ db *sqlx.DB }

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

func (r *OutboxRepo) Enqueue(recipient, subject, body string) error {
	_, err := r.db.Exec(`
		INSERT INTO notification_outbox(recipient, subject, body) VALUES (?, ?, ?)
	`, recipient, subject, body)
	return err
}

func (r *OutboxRepo) FetchPending(limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Notification
	err := r.db.Select(&out, `
		SELECT id, recipient, subject, body, created_at, sent_at
		FROM notification_outbox
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OutboxRepo) MarkSent(id int64) error {
	_, err := r.db.Exec(`
		UPDATE notification_outbox SET sent_at = CURRENT_TIMESTAMP WHERE id = ?
	`, id)
	return err
}

// PendingCount supports tests and the admin dashboard.
func (r *OutboxRepo) PendingCount() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM notification_outbox WHERE sent_at IS NULL`)
	return n, err
}
