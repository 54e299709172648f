package usecase

import "sync"

type event func(Observer)

// queued is an event waiting for delivery; target 0 means every observer.
type queued struct {
	ev     event
	target int
}

type subscription struct {
	id       int
	observer Observer
}

// hub queues events without blocking the emitter and delivers them from one
// goroutine so every observer sees the same order.
type hub struct {
	mu       sync.Mutex
	subs     []subscription
	nextID   int
	pending  []queued
	wake     chan struct{}
	isClosed bool
}

func newHub() *hub {
	h := &hub{
		wake: make(chan struct{}, 1),
	}
	go h.run()

	return h
}

func (that *hub) subscribe(observer Observer) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	that.subs = append(that.subs, subscription{id: that.nextID, observer: observer})

	return that.nextID
}

func (that *hub) unsubscribe(id int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, sub := range that.subs {
		if sub.id == id {
			that.subs = append(that.subs[:i:i], that.subs[i+1:]...)
			return
		}
	}
}

func (that *hub) emit(ev event) {
	that.enqueue(queued{ev: ev})
}

// emitTo delivers ev only to the subscription with the given id.
func (that *hub) emitTo(id int, ev event) {
	that.enqueue(queued{ev: ev, target: id})
}

func (that *hub) enqueue(q queued) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.isClosed {
		return
	}

	that.pending = append(that.pending, q)

	select {
	case that.wake <- struct{}{}:
	default:
	}
}

// close stops the dispatcher after the events already queued are delivered.
func (that *hub) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.isClosed {
		return
	}

	that.isClosed = true
	close(that.wake)
}

func (that *hub) run() {
	for range that.wake {
		for {
			that.mu.Lock()
			if len(that.pending) == 0 {
				that.mu.Unlock()
				break
			}

			q := that.pending[0]
			that.pending = that.pending[1:]
			subs := make([]subscription, len(that.subs))
			copy(subs, that.subs)
			that.mu.Unlock()

			for _, sub := range subs {
				if q.target == 0 || q.target == sub.id {
					q.ev(sub.observer)
				}
			}
		}
	}
}
