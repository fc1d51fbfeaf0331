package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegate/internal/platform/config"
	"coursegate/internal/platform/logger"
	dErrors "coursegate/pkg/domain-errors"
	"coursegate/pkg/platform/circuit"
)

type scriptedGateway struct {
	err   error
	calls int
}

func (g *scriptedGateway) CreateOrder(context.Context, float64, string, string) (Order, error) {
	g.calls++
	if g.err != nil {
		return Order{}, g.err
	}
	return Order{ID: "order_1"}, nil
}

func TestBreakerGatewayOpensOnUpstreamFaults(t *testing.T) {
	inner := &scriptedGateway{err: dErrors.New(dErrors.CodeUpstream, "payment gateway unreachable")}
	g := NewBreakerGateway(inner, circuit.New("gateway", circuit.WithFailureThreshold(2)), logger.New())
	ctx := context.Background()

	_, err := g.CreateOrder(ctx, 100, "INR", "r1")
	require.Error(t, err)
	_, err = g.CreateOrder(ctx, 100, "INR", "r2")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)

	// Circuit is open: fail fast without touching the provider.
	_, err = g.CreateOrder(ctx, 100, "INR", "r3")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerGatewayIgnoresProviderRejections(t *testing.T) {
	inner := &scriptedGateway{err: dErrors.New(dErrors.CodeBadRequest, "amount exceeds maximum")}
	g := NewBreakerGateway(inner, circuit.New("gateway", circuit.WithFailureThreshold(1)), logger.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.CreateOrder(ctx, 100, "INR", "r")
		require.Error(t, err)
	}
	// Rejections never open the circuit; every call reached the provider.
	assert.Equal(t, 3, inner.calls)
}

// Repeated 4xx rejections from the real HTTP client must keep reaching the
// provider; only the provider being down may open the circuit.
func TestBreakerGatewayProviderRejectionsNeverOpenCircuit(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"amount exceeds maximum"}}`))
	}))
	defer srv.Close()

	breaker := circuit.New("gateway", circuit.WithFailureThreshold(2))
	g := NewBreakerGateway(
		NewHTTPGateway(config.Gateway{KeyID: "k", KeySecret: "s", BaseURL: srv.URL}),
		breaker,
		logger.New(),
	)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := g.CreateOrder(ctx, 100, "INR", "r")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
	assert.Equal(t, 5, hits)
	assert.False(t, breaker.IsOpen())
}

// An open circuit must heal on its own once the provider recovers: after the
// cooldown a trial call reaches the provider and its success closes the
// breaker.
func TestBreakerGatewayRecoversAfterCooldown(t *testing.T) {
	inner := &scriptedGateway{err: dErrors.New(dErrors.CodeUpstream, "payment gateway unreachable")}
	breaker := circuit.New("gateway",
		circuit.WithFailureThreshold(1),
		circuit.WithCooldown(30*time.Millisecond),
	)
	g := NewBreakerGateway(inner, breaker, logger.New())
	ctx := context.Background()

	_, err := g.CreateOrder(ctx, 100, "INR", "r1")
	require.Error(t, err)
	assert.True(t, breaker.IsOpen())

	inner.err = nil

	require.Eventually(t, func() bool {
		order, err := g.CreateOrder(ctx, 100, "INR", "r2")
		return err == nil && order.ID == "order_1"
	}, time.Second, 10*time.Millisecond)
	assert.False(t, breaker.IsOpen())
	assert.Greater(t, inner.calls, 1)
}

func TestBreakerGatewayOperatorReset(t *testing.T) {
	inner := &scriptedGateway{err: dErrors.New(dErrors.CodeUpstream, "payment gateway unreachable")}
	breaker := circuit.New("gateway", circuit.WithFailureThreshold(1))
	g := NewBreakerGateway(inner, breaker, logger.New())
	ctx := context.Background()

	_, err := g.CreateOrder(ctx, 100, "INR", "r1")
	require.Error(t, err)
	assert.True(t, breaker.IsOpen())

	breaker.Reset()
	inner.err = nil

	order, err := g.CreateOrder(ctx, 100, "INR", "r2")
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.False(t, breaker.IsOpen())
}
