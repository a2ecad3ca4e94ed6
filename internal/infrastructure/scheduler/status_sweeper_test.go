package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingSweeper struct {
	calls   atomic.Int32
	updated int
	err     error
	lastNow atomic.Value
}

func (c *countingSweeper) SweepStale(_ context.Context, now time.Time) (int, error) {
	c.calls.Add(1)
	c.lastNow.Store(now)
	return c.updated, c.err
}

func TestNewStatusSweeper_RejectsZeroInterval(t *testing.T) {
	_, err := NewStatusSweeper(&countingSweeper{}, StatusSweeperConfig{Enabled: true}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewStatusSweeper(&countingSweeper{}, StatusSweeperConfig{Enabled: false}, nil)
	assert.NoError(t, err)
}

func TestStatusSweeper_RunOnce(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	sw := &countingSweeper{updated: 3}
	s, err := NewStatusSweeper(sw, StatusSweeperConfig{Enabled: true, Interval: time.Hour}, zap.New(core))
	require.NoError(t, err)
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Equal(t, 3, s.RunOnce(context.Background()))
	assert.Equal(t, fixed, sw.lastNow.Load())
	assert.Equal(t, 1, recorded.FilterMessage("Status sweep completed").Len())

	sw.err = errors.New("db down")
	sw.updated = 1
	assert.Equal(t, 1, s.RunOnce(context.Background()))
	assert.Equal(t, 1, recorded.FilterMessage("Status sweep failed").Len())
}

func TestStatusSweeper_StartStop(t *testing.T) {
	sw := &countingSweeper{}
	s, err := NewStatusSweeper(sw, StatusSweeperConfig{
		Enabled:    true,
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return sw.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))

	after := sw.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, sw.calls.Load())
}

func TestStatusSweeper_DisabledDoesNothing(t *testing.T) {
	sw := &countingSweeper{}
	s, err := NewStatusSweeper(sw, StatusSweeperConfig{Enabled: false, RunOnStart: true}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.Zero(t, sw.calls.Load())
}
