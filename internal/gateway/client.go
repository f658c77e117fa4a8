package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vitalislabs/vitalis/internal/config"
	"go.uber.org/zap"
)

var (
	ErrGatewayUnavailable = errors.New("gateway_unavailable")
	// ErrGatewayTimeout means the outcome is unknown: the request may have
	// been applied remotely. Callers must not mark local state as succeeded.
	ErrGatewayTimeout = errors.New("gateway_timeout")
	ErrInvalidRequest = errors.New("gateway_rejected_request")
)

type Customer struct {
	ID string `json:"id"`
}

type Subaccount struct {
	WalletID   string `json:"walletId"`
	CustomerID string `json:"id"`
}

type Subscription struct {
	ID          string    `json:"id"`
	NextDueDate time.Time `json:"nextDueDate"`
}

type Charge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CreateCustomerRequest struct {
	Name     string `json:"name"`
	TaxID    string `json:"cpfCnpj"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Postcode string `json:"postalCode,omitempty"`
}

type CreateSubaccountRequest struct {
	Name     string `json:"name"`
	TaxID    string `json:"cpfCnpj"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address"`
	Postcode string `json:"postalCode,omitempty"`
}

type CreateSubscriptionRequest struct {
	CustomerID  string    `json:"customer"`
	ValueCents  int64     `json:"value"`
	NextDueDate time.Time `json:"nextDueDate"`
	Description string    `json:"description,omitempty"`
}

type CreateChargeRequest struct {
	CustomerID  string    `json:"customer"`
	ValueCents  int64     `json:"value"`
	DueDate     time.Time `json:"dueDate"`
	Description string    `json:"description,omitempty"`
}

// Client is the outbound surface of the external payment gateway. The gateway
// remains the source of truth for money movement; every mutating call here is
// confirmed asynchronously through webhooks before local state treats it as
// settled.
type Client interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	CreateSubaccount(ctx context.Context, req CreateSubaccountRequest) (Subaccount, error)
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// CreateCharge bills an aggregate amount. idempotencyKey must be stable
	// across retries of the same logical charge so the gateway can dedupe.
	CreateCharge(ctx context.Context, req CreateChargeRequest, idempotencyKey string) (Charge, error)
}

type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewHTTPClient(cfg config.Config, log *zap.Logger) *HTTPClient {
	timeout := cfg.Gateway.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.Gateway.BaseURL,
		apiKey:  cfg.Gateway.APIKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.Named("gateway.client"),
	}
}

func (c *HTTPClient) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/v3/customers", req, "", &out); err != nil {
		return Customer{}, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return Customer{}, ErrGatewayUnavailable
	}
	return out, nil
}

func (c *HTTPClient) CreateSubaccount(ctx context.Context, req CreateSubaccountRequest) (Subaccount, error) {
	var out Subaccount
	if err := c.do(ctx, http.MethodPost, "/v3/accounts", req, "", &out); err != nil {
		return Subaccount{}, err
	}
	if strings.TrimSpace(out.WalletID) == "" {
		return Subaccount{}, ErrGatewayUnavailable
	}
	return out, nil
}

func (c *HTTPClient) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPost, "/v3/subscriptions", req, "", &out); err != nil {
		return Subscription{}, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return Subscription{}, ErrGatewayUnavailable
	}
	return out, nil
}

func (c *HTTPClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return ErrInvalidRequest
	}
	return c.do(ctx, http.MethodDelete, "/v3/subscriptions/"+subscriptionID, nil, "", nil)
}

func (c *HTTPClient) CreateCharge(ctx context.Context, req CreateChargeRequest, idempotencyKey string) (Charge, error) {
	var out Charge
	if err := c.do(ctx, http.MethodPost, "/v3/payments", req, idempotencyKey, &out); err != nil {
		return Charge{}, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return Charge{}, ErrGatewayUnavailable
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, idempotencyKey string, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.log.Warn("gateway call timed out", zap.String("path", path))
			return ErrGatewayTimeout
		}
		c.log.Warn("gateway call failed", zap.String("path", path), zap.Error(err))
		return ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return ErrGatewayUnavailable
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", ErrInvalidRequest, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
