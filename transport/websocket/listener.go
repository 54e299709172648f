package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/usecase"
)

const unregisterTimeout = 5 * time.Second

type listener struct {
	network *Network
	roomID  string
	guests  chan *conn
	done    chan struct{}
	claimed atomic.Bool
	once    sync.Once
}

func (that *listener) Accept(ctx context.Context) (usecase.Channel, error) {
	select {
	case c := <-that.guests:
		return c, nil
	case <-that.done:
		return nil, apperror.ErrConnectionClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to accept guest: %w", ctx.Err())
	}
}

// Close stops accepting guests and removes the room from the registry.
func (that *listener) Close() error {
	var err error

	that.once.Do(func() {
		close(that.done)
		that.network.removeListener(that.roomID)

		ctx, cancel := context.WithTimeout(context.Background(), unregisterTimeout)
		defer cancel()

		if delErr := that.network.rooms.DeleteByID(ctx, that.roomID); delErr != nil && !errors.Is(delErr, apperror.ErrRoomNotFound) {
			err = fmt.Errorf("failed to unregister room: %w", delErr)
		}
	})

	return err
}
