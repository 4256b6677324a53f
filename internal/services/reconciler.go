package services

import (
	"log"
	"net/url"
	"sync"
)

// Reconciler sequences post-payment side effects. The ordering is a hard
// contract: the session is marked complete BEFORE the cart is cleared, so the
// "cart is empty, send the user back to the cart" effect can consult the flag
// and skip the redirect during checkout completion.
type Reconciler struct {
	Orders *OrderService
	Cart   *CartStore

	mu        sync.Mutex
	completed map[string]string // sessionID -> payment reference
}

func NewReconciler(orders *OrderService, cart *CartStore) *Reconciler {
	return &Reconciler{
		Orders:    orders,
		Cart:      cart,
		completed: make(map[string]string),
	}
}

// Complete runs the fixed post-payment sequence:
//  1. mark the session completed,
//  2. confirm the payment (with the order service's retry policy),
//  3. clear the cart,
//  4. return the confirmation route carrying the reference.
//
// Reversing steps 1 and 3 reintroduces the redirect race.
func (r *Reconciler) Complete(sessionID, orderID, reference string) (string, error) {
	r.mu.Lock()
	r.completed[sessionID] = reference
	r.mu.Unlock()

	if err := r.Orders.ConfirmPayment(orderID, reference); err != nil {
		// Confirmation failed: the cart is untouched and the session should
		// behave like a normal checkout again.
		r.mu.Lock()
		delete(r.completed, sessionID)
		r.mu.Unlock()
		return "", err
	}

	if err := r.Cart.Clear(sessionID); err != nil {
		// The order is paid; a stale cart snapshot is an annoyance, not a
		// reason to fail the flow.
		log.Printf("[reconciler] cart clear failed for %s: %v", sessionID, err)
	}

	return "/order/confirmed?ref=" + url.QueryEscape(reference), nil
}

// Completed reports whether this session just finished a checkout.
func (r *Reconciler) Completed(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.completed[sessionID]
	return ok
}

// RedirectToCart is the guard for the "empty cart bounces back to the cart
// page" effect: suppressed while the session's checkout is completing.
func (r *Reconciler) RedirectToCart(sessionID string, cartEmpty bool) bool {
	return cartEmpty && !r.Completed(sessionID)
}
