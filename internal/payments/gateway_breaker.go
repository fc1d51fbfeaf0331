package payments

import (
	"context"
	"log/slog"

	dErrors "coursegate/pkg/domain-errors"
	"coursegate/pkg/platform/circuit"
)

// BreakerGateway fails order creation fast while the payment provider is
// down, instead of holding request slots on a timing-out upstream. Only
// upstream faults (transport errors, provider 5xx) trip the breaker;
// rejections the provider itself returns (bad amount, bad currency) are
// CodeBadRequest and count as successes for circuit purposes. An open
// circuit admits trial calls again after the breaker's cooldown, so the
// path heals itself once the provider recovers.
type BreakerGateway struct {
	inner   Gateway
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerGateway(inner Gateway, breaker *circuit.Breaker, logger *slog.Logger) *BreakerGateway {
	return &BreakerGateway{inner: inner, breaker: breaker, logger: logger}
}

func (g *BreakerGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error) {
	if g.breaker.IsOpen() {
		return Order{}, dErrors.New(dErrors.CodeUpstream, "payment gateway unavailable").WithDetails("gateway")
	}

	order, err := g.inner.CreateOrder(ctx, amount, currency, receipt)
	if err != nil && dErrors.HasCode(err, dErrors.CodeUpstream) {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "payment gateway circuit opened", "breaker", g.breaker.Name())
		}
		return Order{}, err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "payment gateway circuit closed", "breaker", g.breaker.Name())
	}
	return order, err
}
