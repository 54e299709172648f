package usecase

import (
	"context"
	"time"

	"github.com/rocketscienceinc/othello/internal/entity"
)

const outboxSize = 64

// outbox relays messages to the peer in order without blocking the session.
type outbox struct {
	queue chan entity.Message
}

func newOutbox(channel Channel, timeout time.Duration, onFailure func(msg entity.Message, err error)) *outbox {
	that := &outbox{
		queue: make(chan entity.Message, outboxSize),
	}

	go func() {
		for msg := range that.queue {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err := channel.Send(ctx, msg)
			cancel()

			if err != nil {
				onFailure(msg, err)
			}
		}
	}()

	return that
}

func (that *outbox) push(msg entity.Message) bool {
	select {
	case that.queue <- msg:
		return true
	default:
		return false
	}
}

func (that *outbox) close() {
	close(that.queue)
}
