package services

import (
	"encoding/json"
	"log"

	"nynth/internal/domain"
)

// KV is the durable key-value store cart snapshots persist to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// CartStore keeps one cart per session, persisted as a JSON snapshot after
// every mutation so the cart survives reloads without a server round trip.
type CartStore struct {
	kv KV
}

func NewCartStore(kv KV) *CartStore { return &CartStore{kv: kv} }

const cartKeyPrefix = "cart:"

// Load returns the session's cart. Malformed persisted data is treated as an
// empty cart, never a fatal error.
func (s *CartStore) Load(sessionID string) domain.Cart {
	raw, ok, err := s.kv.Get(cartKeyPrefix + sessionID)
	if err != nil {
		log.Printf("[cart] load failed for %s: %v", sessionID, err)
		return domain.Cart{}
	}
	if !ok {
		return domain.Cart{}
	}
	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		log.Printf("[cart] corrupt snapshot for %s, starting empty: %v", sessionID, err)
		return domain.Cart{}
	}
	// Drop lines that violate the quantity floor, same fallback posture as
	// corrupt JSON.
	kept := cart.Lines[:0]
	for _, l := range cart.Lines {
		if l.Quantity >= 1 {
			kept = append(kept, l)
		}
	}
	cart.Lines = kept
	return cart
}

func (s *CartStore) save(sessionID string, cart domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.kv.Set(cartKeyPrefix+sessionID, string(raw))
}

// Add merges the product variant into the session cart and persists the full
// snapshot.
func (s *CartStore) Add(sessionID string, p domain.Product, qty int, size, color string) (domain.Cart, error) {
	cart := s.Load(sessionID)
	cart.Add(domain.CartLine{
		ProductID: p.ID,
		Name:      p.Title,
		UnitPrice: p.Price,
		Quantity:  qty,
		Size:      size,
		Color:     color,
		ImageRef:  p.ImageRef,
	})
	if err := s.save(sessionID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Remove drops a line by variant identity; removing an absent line succeeds.
func (s *CartStore) Remove(sessionID, productID, size, color string) (domain.Cart, error) {
	cart := s.Load(sessionID)
	cart.Remove(domain.CartLine{ProductID: productID, Size: size, Color: color}.Key())
	if err := s.save(sessionID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// SetQuantity overwrites a line's quantity; below 1 behaves as Remove.
func (s *CartStore) SetQuantity(sessionID, productID, size, color string, qty int) (domain.Cart, error) {
	cart := s.Load(sessionID)
	cart.SetQuantity(domain.CartLine{ProductID: productID, Size: size, Color: color}.Key(), qty)
	if err := s.save(sessionID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *CartStore) Clear(sessionID string) error {
	return s.save(sessionID, domain.Cart{})
}
