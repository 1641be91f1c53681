package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"slotBooker/internal/lib/logger/handlers/slogdiscard"
)

type purgerFunc func(ctx context.Context) (int64, error)

func (f purgerFunc) PurgeStale(ctx context.Context) (int64, error) { return f(ctx) }

func TestRunSweeperPurgesUntilCancelled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		runSweeper(ctx, slogdiscard.NewDiscardLogger(), purgerFunc(func(context.Context) (int64, error) {
			if calls.Add(1) == 2 {
				return 0, errors.New("db down")
			}
			return 1, nil
		}), time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRunSweeperDisabled(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runSweeper(context.Background(), slogdiscard.NewDiscardLogger(), purgerFunc(func(context.Context) (int64, error) {
			t.Error("purge must not run when the sweeper is disabled")
			return 0, nil
		}), 0)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper did not return")
	}
}
