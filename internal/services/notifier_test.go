package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nynth/internal/repos"
	"nynth/internal/services"
)

type recordingMailer struct {
	sent    []string
	failing bool
}

func (m *recordingMailer) Send(to, subject, _ string) error {
	if m.failing {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func outboxdb(t *testing.T) *repos.OutboxRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewOutboxRepo(db)
}

func TestNotifierSweepDeliversAndMarksSent(t *testing.T) {
	outbox := outboxdb(t)
	require.NoError(t, outbox.Enqueue("ada@example.test", "Your NYNTH order abc is confirmed", "<p>hi</p>"))
	require.NoError(t, outbox.Enqueue("bola@example.test", "Your NYNTH order def is confirmed", "<p>hi</p>"))

	mailer := &recordingMailer{}
	n := services.NewNotifier(outbox, mailer)

	sent, err := n.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, mailer.sent, 2)

	pending, err := outbox.PendingCount()
	require.NoError(t, err)
	assert.Zero(t, pending)

	// A second sweep finds nothing to resend.
	sent, err = n.Sweep()
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestNotifierFailedSendStaysPending(t *testing.T) {
	outbox := outboxdb(t)
	require.NoError(t, outbox.Enqueue("ada@example.test", "Your NYNTH order abc is confirmed", "<p>hi</p>"))

	mailer := &recordingMailer{failing: true}
	n := services.NewNotifier(outbox, mailer)

	sent, err := n.Sweep()
	require.NoError(t, err)
	assert.Zero(t, sent)

	pending, err := outbox.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, 1, pending, "failed delivery is retried on the next sweep")

	// Transport recovers; the stuck row drains.
	mailer.failing = false
	sent, err = n.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
