package usecase

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnTimer(t *testing.T) {
	t.Run("Counts down until the callback stops it", func(t *testing.T) {
		// Given: a three tick timer
		var calls atomic.Int32
		done := make(chan struct{})

		startTurnTimer(3, time.Millisecond, func(timer *turnTimer) bool {
			calls.Add(1)
			timer.remaining--
			if timer.remaining == 0 {
				close(done)
				return false
			}
			return true
		})

		// Then: the callback ran once per tick
		select {
		case <-done:
		case <-time.After(waitFor):
			t.Fatal("timer did not finish")
		}

		time.Sleep(10 * time.Millisecond)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Cancel is idempotent and stops ticking", func(t *testing.T) {
		// Given: a running timer
		var calls atomic.Int32
		timer := startTurnTimer(1000, time.Millisecond, func(*turnTimer) bool {
			calls.Add(1)
			return true
		})

		// When: it is cancelled twice
		timer.Cancel()
		require.NotPanics(t, timer.Cancel)

		// Then: it stops calling back
		time.Sleep(5 * time.Millisecond)
		before := calls.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, before, calls.Load())
	})
}

func TestHub(t *testing.T) {
	// Given: a hub with one observer
	h := newHub()
	rec := &recorder{}
	h.subscribe(rec)

	// When: many events are emitted and the hub is closed
	for i := 0; i < 100; i++ {
		remaining := i
		h.emit(func(o Observer) { o.OnTimerTick(remaining) })
	}
	h.close()
	h.emit(func(o Observer) { o.OnTimerTick(-1) })

	// Then: every event before close arrives in order, nothing after
	require.Eventually(t, func() bool {
		return len(rec.timerTicks()) == 100
	}, waitFor, tick)

	for i, value := range rec.timerTicks() {
		require.Equal(t, i, value)
	}
}

func TestHub_EmitTo(t *testing.T) {
	// Given: a hub with two observers
	h := newHub()
	t.Cleanup(h.close)

	first, second := &recorder{}, &recorder{}
	h.subscribe(first)
	secondID := h.subscribe(second)

	// When: one event is targeted and one is broadcast
	h.emitTo(secondID, func(o Observer) { o.OnTimerTick(1) })
	h.emit(func(o Observer) { o.OnTimerTick(2) })

	// Then: only the target got the first event
	require.Eventually(t, func() bool {
		return len(first.timerTicks()) == 1 && len(second.timerTicks()) == 2
	}, waitFor, tick)
	require.Equal(t, []int{2}, first.timerTicks())
	require.Equal(t, []int{1, 2}, second.timerTicks())
}
