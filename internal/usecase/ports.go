package usecase

import (
	"context"

	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/service"
)

// Channel is an ordered, reliable, bidirectional link to the peer.
// Delivery of inbound messages starts once a message handler is registered.
type Channel interface {
	Send(ctx context.Context, msg entity.Message) error
	OnMessage(handler func(msg entity.Message))
	OnClose(handler func(err error))
	IsOpen() bool
	PeerName() string
	Close() error
}

type Listener interface {
	// Accept blocks until a guest connects or ctx is done.
	Accept(ctx context.Context) (Channel, error)
	Close() error
}

type Network interface {
	Listen(ctx context.Context, roomID, hostName string) (Listener, error)
	Dial(ctx context.Context, roomID, playerName string) (Channel, error)
}

// Observer receives session events in the order they happened. Callbacks run
// on a single dispatcher goroutine and may call back into the session.
type Observer interface {
	OnSnapshot(state entity.GameState)
	OnMoveApplied(event entity.MoveEvent)
	OnGameOver(winner entity.Winner)
	OnTimerTick(secondsRemaining int)
	OnTimerHidden()
	OnStatus(message string, severity entity.Severity)
}

type botPolicy interface {
	SelectMove(view service.BoardView, difficulty entity.Difficulty) (entity.Move, bool)
}
