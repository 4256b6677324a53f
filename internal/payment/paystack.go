// Package payment wraps the Paystack hosted checkout: transaction
// initialization, verification, and webhook signature checks. The gateway is
// the source of truth for payment success; nothing here confirms a payment
// without a gateway-issued signal.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"nynth/internal/domain"
)

// State is the adapter lifecycle. Open is rejected before Ready.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
)

// MinorUnitsPerMajor converts naira to kobo. Paystack amounts are minor
// units; this is the single conversion site in the codebase.
const MinorUnitsPerMajor = 100

// AmountMinor converts an integer major-unit amount to the gateway's minor unit.
func AmountMinor(major int64) int64 { return major * MinorUnitsPerMajor }

type Config struct {
	PublicKey string
	SecretKey string
	BaseURL   string
	Client    *http.Client
}

type Gateway struct {
	publicKey string
	secretKey string
	baseURL   string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]

	mu    sync.RWMutex
	state State
}

func NewGateway(cfg Config) *Gateway {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{
		publicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "paystack",
			Timeout: 30 * time.Second,
		}),
		state: StateIdle,
	}
}

// Init moves the adapter from Idle to Ready. It validates key material the
// way the hosted checkout validates its script load: until it succeeds, every
// Open call fails with a user-visible not-ready condition.
func (g *Gateway) Init() error {
	g.mu.Lock()
	if g.state == StateReady {
		g.mu.Unlock()
		return nil
	}
	g.state = StateInitializing
	g.mu.Unlock()

	if !strings.HasPrefix(g.publicKey, "pk_") || !strings.HasPrefix(g.secretKey, "sk_") {
		g.mu.Lock()
		g.state = StateIdle
		g.mu.Unlock()
		return fmt.Errorf("paystack keys missing or malformed: %w", domain.ErrGatewayNotReady)
	}

	g.mu.Lock()
	g.state = StateReady
	g.mu.Unlock()
	return nil
}

func (g *Gateway) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gateway) Ready() bool { return g.State() == StateReady }

// PublicKey is handed to the browser so the inline popup can mount.
func (g *Gateway) PublicKey() string { return g.publicKey }

// InitResult is Paystack's handle for one checkout attempt.
type InitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Open initializes a gateway transaction for an already-created order.
// amountMajor is the order total in major units; conversion to minor units
// happens here and nowhere else. Calling Open before Ready returns
// domain.ErrGatewayNotReady.
func (g *Gateway) Open(ctx context.Context, orderID string, amountMajor int64, email string, metadata map[string]any) (*InitResult, error) {
	if !g.Ready() {
		return nil, domain.ErrGatewayNotReady
	}
	if orderID == "" {
		return nil, errors.New("order id required before opening payment")
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["order_id"] = orderID

	payload := map[string]any{
		"email":    email,
		"amount":   AmountMinor(amountMajor),
		"metadata": metadata,
	}
	body, err := g.do(ctx, http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status  bool       `json:"status"`
		Message string     `json:"message"`
		Data    InitResult `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("paystack initialize: decode: %w", err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack initialize: %s", resp.Message)
	}
	return &resp.Data, nil
}

// VerifyResult is the gateway's word on a transaction.
type VerifyResult struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount"`
	PaidAt      string `json:"paid_at"`
	Channel     string `json:"channel"`
}

// Succeeded reports a gateway-confirmed successful charge.
func (v *VerifyResult) Succeeded() bool { return v != nil && v.Status == "success" }

// Verify asks Paystack for the authoritative state of a transaction. Client
// callbacks are treated as hints; this call (or a signed webhook) is what
// payment confirmation trusts.
func (g *Gateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if !g.Ready() {
		return nil, domain.ErrGatewayNotReady
	}
	if reference == "" {
		return nil, fmt.Errorf("%w: empty reference", domain.ErrVerificationFailed)
	}

	body, err := g.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status  bool         `json:"status"`
		Message string       `json:"message"`
		Data    VerifyResult `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("paystack verify: decode: %w", err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("%w: %s", domain.ErrVerificationFailed, resp.Message)
	}
	return &resp.Data, nil
}

// do runs one REST call through the circuit breaker. A tripped breaker
// surfaces as domain.ErrPaymentUnavailable, never as a confirmed payment.
func (g *Gateway) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	body, err := g.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			reqBody = bytes.NewReader(raw)
		}
		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+g.secretKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("paystack %s %s: status %d", method, path, resp.StatusCode)
		}
		return raw, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit open", domain.ErrPaymentUnavailable)
	}
	return body, err
}
