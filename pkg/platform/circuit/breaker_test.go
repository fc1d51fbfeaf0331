package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("gateway")
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "gateway", b.Name())
}

func TestBreakerOpensAtFailureThreshold(t *testing.T) {
	b := New("gateway", WithFailureThreshold(3))

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	useFallback, change = b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestBreakerNeedsConsecutiveFailures(t *testing.T) {
	b := New("gateway", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess() // clears the streak

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreakerClosesAfterSuccessStreak(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreakerFailureClearsSuccessStreak(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1), WithSuccessThreshold(3))

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure() // stays open, streak gone
	assert.True(t, b.IsOpen())

	b.RecordSuccess()
	b.RecordSuccess()
	assert.True(t, b.IsOpen())
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreakerFailureWhileOpenIsNotATransition(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1))
	b.RecordFailure()

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestBreakerAdmitsTrialCallsAfterCooldown(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1), WithCooldown(30*time.Millisecond))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	assert.Eventually(t, func() bool { return !b.IsOpen() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreakerReopensWhenTrialCallFails(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1), WithCooldown(0))
	b.RecordFailure()
	assert.Equal(t, StateHalfOpen, b.State()) // cooldown already elapsed

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
}

func TestBreakerClosesWhenTrialCallSucceeds(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1), WithCooldown(0))
	b.RecordFailure()
	assert.Equal(t, StateHalfOpen, b.State())

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReset(t *testing.T) {
	b := New("gateway", WithFailureThreshold(1))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}
