package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCartEmpty               = errors.New("cart is empty")
	ErrProductVanished         = errors.New("product no longer exists")
	ErrOrderNotFound           = errors.New("order not found")
	ErrGatewayNotReady         = errors.New("payment system not ready")
	ErrPaymentUnavailable      = errors.New("payment service unavailable")
	ErrVerificationFailed      = errors.New("payment could not be verified")
	ErrConfirmationWriteFailed = errors.New("payment confirmation write failed")
)

// OutOfStockError names the offending item so checkout can surface it.
type OutOfStockError struct {
	ProductID string
	Title     string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock", e.Title)
}
