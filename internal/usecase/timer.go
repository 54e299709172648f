package usecase

import (
	"sync"
	"time"
)

// turnTimer is a cancellable countdown. onTick runs once per tick with the
// remaining count and returns false to stop the countdown.
type turnTimer struct {
	remaining int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func startTurnTimer(ticks int, interval time.Duration, onTick func(timer *turnTimer) bool) *turnTimer {
	timer := &turnTimer{
		remaining: ticks,
		stopCh:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-timer.stopCh:
				return
			case <-ticker.C:
				if !onTick(timer) {
					timer.Cancel()
					return
				}
			}
		}
	}()

	return timer
}

// Cancel is idempotent.
func (that *turnTimer) Cancel() {
	that.stopOnce.Do(func() {
		close(that.stopCh)
	})
}
