package poll

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/toychauz/toycha-backend/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestNewPoller_Validation(t *testing.T) {
	_, err := NewPoller(PollerParams{Run: func(context.Context) error { return nil }})
	require.Error(t, err)

	_, err = NewPoller(PollerParams{Logger: testLogger(t)})
	require.Error(t, err)

	p, err := NewPoller(PollerParams{Logger: testLogger(t), Run: func(context.Context) error { return nil }})
	require.NoError(t, err)
	require.Equal(t, defaultInterval, p.Interval())
}

func TestPoller_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	p, err := NewPoller(PollerParams{
		Logger:   testLogger(t),
		Name:     "chat",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPoller_ErrorsDoNotStopPolling(t *testing.T) {
	var calls atomic.Int32
	p, err := NewPoller(PollerParams{
		Logger:   testLogger(t),
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			calls.Add(1)
			return errors.New("transient")
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx) //nolint:errcheck

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
}
