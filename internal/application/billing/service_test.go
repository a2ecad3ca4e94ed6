package billing

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithNumberRetry(t *testing.T) {
	cfg := ServiceConfig{NumberRetries: 3, RetryBaseDelay: time.Millisecond}

	t.Run("cancelled context stops before the next attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := withNumberRetry(ctx, zap.NewNop(), cfg, func() error {
			calls++
			cancel()
			return shared.ErrDuplicateNumber
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("done context makes no attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := withNumberRetry(ctx, zap.NewNop(), cfg, func() error {
			calls++
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})

	t.Run("waits between attempts", func(t *testing.T) {
		var stamps []time.Time
		err := withNumberRetry(context.Background(), zap.NewNop(),
			ServiceConfig{NumberRetries: 3, RetryBaseDelay: 5 * time.Millisecond},
			func() error {
				stamps = append(stamps, time.Now())
				return shared.ErrDuplicateNumber
			})
		assert.ErrorIs(t, err, shared.ErrDuplicateNumber)
		assert.Len(t, stamps, 3)
		assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 5*time.Millisecond)
		assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 10*time.Millisecond)
	})
}

func TestRetryBackoff(t *testing.T) {
	base := 20 * time.Millisecond
	assert.Equal(t, 20*time.Millisecond, retryBackoff(base, 1))
	assert.Equal(t, 40*time.Millisecond, retryBackoff(base, 2))
	assert.Equal(t, 80*time.Millisecond, retryBackoff(base, 3))
	assert.Equal(t, maxRetryDelay, retryBackoff(base, 12))
	assert.Zero(t, retryBackoff(0, 2))
}
