package services

import (
	"log"
	"time"

	"nynth/internal/repos"
)

// Mailer delivers one email. The real transport belongs to the notification
// collaborator; the default implementation only logs.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// LogMailer writes deliveries to the application log and always succeeds.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	log.Printf("[mail] to=%s subject=%q", to, subject)
	return nil
}

// Notifier drains the confirmation-email outbox in the background. A failed
// send leaves the row pending for the next sweep; nothing here can affect an
// already-confirmed payment.
type Notifier struct {
	Outbox   *repos.OutboxRepo
	Mailer   Mailer
	Interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewNotifier(outbox *repos.OutboxRepo, mailer Mailer) *Notifier {
	return &Notifier{
		Outbox:   outbox,
		Mailer:   mailer,
		Interval: 15 * time.Second,
	}
}

// Sweep delivers pending notifications once and reports how many were sent.
func (n *Notifier) Sweep() (int, error) {
	pending, err := n.Outbox.FetchPending(50)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, msg := range pending {
		if err := n.Mailer.Send(msg.Recipient, msg.Subject, msg.Body); err != nil {
			log.Printf("[notifier] send %d failed, will retry: %v", msg.ID, err)
			continue
		}
		if err := n.Outbox.MarkSent(msg.ID); err != nil {
			// Worst case the next sweep resends; confirmation emails are
			// tolerable duplicates.
			log.Printf("[notifier] mark sent %d failed: %v", msg.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *Notifier) Start() {
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go func() {
		defer close(n.done)
		ticker := time.NewTicker(n.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := n.Sweep(); err != nil {
					log.Printf("[notifier] sweep failed: %v", err)
				}
			case <-n.stop:
				return
			}
		}
	}()
}

func (n *Notifier) Stop() {
	if n.stop == nil {
		return
	}
	close(n.stop)
	<-n.done
}
