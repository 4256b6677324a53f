package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"nynth/internal/domain"
	"nynth/internal/repos"
)

// OrderStore is the persistence surface the order service writes through.
// *repos.OrderRepo is the production implementation.
type OrderStore interface {
	Create(order domain.Order) error
	MarkPaid(orderID, reference string) (updated bool, err error)
	Get(orderID string) (domain.Order, error)
}

type OrderService struct {
	Orders OrderStore
	Outbox *repos.OutboxRepo

	// Confirmation-write retry policy. The gateway has already taken the
	// money by the time ConfirmPayment runs, so transient write failures are
	// worth a few attempts before giving up.
	ConfirmAttempts int
	ConfirmBackoff  time.Duration
}

func NewOrderService(orders OrderStore, outbox *repos.OutboxRepo) *OrderService {
	return &OrderService{
		Orders:          orders,
		Outbox:          outbox,
		ConfirmAttempts: 3,
		ConfirmBackoff:  250 * time.Millisecond,
	}
}

// CreateOrder snapshots the cart into a pending order inside one transaction.
// The caller must treat a failed create as a hard stop: the payment gateway
// is never opened without a confirmed order id.
func (s *OrderService) CreateOrder(userID *string, customer domain.Customer, lines []domain.CartLine, shippingFee int64) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}

	items := make([]domain.OrderItem, 0, len(lines))
	var subtotal int64
	for _, l := range lines {
		if l.Quantity < 1 {
			return domain.Order{}, fmt.Errorf("line %s has invalid quantity %d", l.ProductID, l.Quantity)
		}
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			ImageRef:  l.ImageRef,
		})
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Customer:      customer,
		Items:         items,
		Subtotal:      subtotal,
		ShippingFee:   shippingFee,
		Total:         subtotal + shippingFee,
		PaymentStatus: domain.PaymentPending,
		OrderStatus:   domain.OrderPending,
	}
	if err := s.Orders.Create(order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// ConfirmPayment marks the order paid and stores the gateway reference.
// Repeat calls for an already-paid order are a no-op; the confirmation email
// is enqueued only on the first transition, best effort.
func (s *OrderService) ConfirmPayment(orderID, reference string) error {
	attempts := s.ConfirmAttempts
	if attempts < 1 {
		attempts = 1
	}

	var updated bool
	var lastErr error
	backoff := s.ConfirmBackoff
	for i := 0; i < attempts; i++ {
		var err error
		updated, err = s.Orders.MarkPaid(orderID, reference)
		if err == nil {
			lastErr = nil
			break
		}
		if errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if lastErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfirmationWriteFailed, lastErr)
	}
	if !updated {
		// Already paid: idempotent no-op, no second email.
		return nil
	}

	order, err := s.Orders.Get(orderID)
	if err != nil {
		log.Printf("[order] confirmed %s but could not load it for notification: %v", orderID, err)
		return nil
	}
	subject := fmt.Sprintf("Your NYNTH order %s is confirmed", shortID(order.ID))
	if err := s.Outbox.Enqueue(order.Customer.Email, subject, confirmationBody(order, reference)); err != nil {
		// The payment itself succeeded; a lost email never fails the confirm.
		log.Printf("[order] notification enqueue failed for %s: %v", orderID, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func confirmationBody(order domain.Order, reference string) string {
	body := fmt.Sprintf("<h1>Thank you, %s!</h1><p>Your payment (ref <b>%s</b>) is confirmed.</p><ul>",
		order.Customer.Name, reference)
	for _, item := range order.Items {
		body += fmt.Sprintf("<li>%s (%s/%s) × %d — %d</li>", item.Name, item.Size, item.Color, item.Quantity, item.UnitPrice*int64(item.Quantity))
	}
	body += fmt.Sprintf("</ul><p>Subtotal %d · Shipping %d · Total <b>%d</b></p>", order.Subtotal, order.ShippingFee, order.Total)
	return body
}
