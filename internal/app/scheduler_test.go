package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (r *countingReconciler) ReconcileOccupancy(context.Context) (int, error) {
	r.calls.Add(1)
	return 1, r.err
}

func TestScheduler_RunsImmediatelyAndOnTicks(t *testing.T) {
	rec := &countingReconciler{}
	s := NewScheduler(rec, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return rec.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	after := rec.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, rec.calls.Load())

	// Повторный Stop не паникует
	s.Stop()
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	rec := &countingReconciler{err: errors.New("database is down")}
	s := NewScheduler(rec, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return rec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	s.Stop()
}

func TestScheduler_Disabled(t *testing.T) {
	rec := &countingReconciler{}
	s := NewScheduler(rec, 0, zap.NewNop())

	s.Start(context.Background())
	s.Stop()
	assert.Zero(t, rec.calls.Load())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	rec := &countingReconciler{}
	s := NewScheduler(rec, 10*time.Millisecond, zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a scheduler that was never started")
	}

	// Start после Stop ничего не запускает
	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, rec.calls.Load())
}
