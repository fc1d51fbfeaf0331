package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coursegate/internal/platform/config"
	dErrors "coursegate/pkg/domain-errors"
)

// Order is the gateway's order-creation result, passed through to the caller
// so the client-side checkout can reference it.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates orders against the payment provider's API.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error)
}

// HTTPGateway talks to the real payment gateway with basic-auth credentials.
type HTTPGateway struct {
	cfg    config.Gateway
	client *http.Client
}

func NewHTTPGateway(cfg config.Gateway) *HTTPGateway {
	return &HTTPGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayError struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder posts an order for amount in major units; the gateway expects
// minor units, so the amount is multiplied by 100.
func (g *HTTPGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error) {
	if !g.cfg.Configured() {
		return Order{}, dErrors.New(dErrors.CodeInvariantViolation, "payment gateway credentials not configured").WithDetails("gateway")
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   int64(amount * 100),
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return Order{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode order request").WithDetails("gateway")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build order request").WithDetails("gateway")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return Order{}, dErrors.Wrap(err, dErrors.CodeUpstream, "payment gateway unreachable").WithDetails("gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ge gatewayError
		msg := fmt.Sprintf("payment gateway rejected order (status %d)", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&ge); err == nil && ge.Error.Description != "" {
			msg = ge.Error.Description
		}
		// 4xx means the provider understood us and said no (bad amount, bad
		// currency); only 5xx indicates the provider itself is in trouble.
		code := dErrors.CodeBadRequest
		if resp.StatusCode >= 500 {
			code = dErrors.CodeUpstream
		}
		return Order{}, dErrors.New(code, msg).WithDetails("gateway")
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return Order{}, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to decode gateway response").WithDetails("gateway")
	}
	return order, nil
}
