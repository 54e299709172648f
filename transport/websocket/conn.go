package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/pkg"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// conn is one peer connection. Reading starts with the first message handler.
type conn struct {
	logger   *slog.Logger
	ws       *websocket.Conn
	peerName string

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	onMessage []func(entity.Message)
	onClose   []func(error)
	reading   bool
	closed    bool
	closeOnce sync.Once
}

func newConn(logger *slog.Logger, ws *websocket.Conn, peerName string) *conn {
	ctx, cancel := context.WithCancel(context.Background())

	return &conn{
		logger:   logger.With("conn_id", pkg.GeneratePeerID(), "peer", peerName),
		ws:       ws,
		peerName: peerName,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (that *conn) Send(ctx context.Context, msg entity.Message) error {
	if !that.IsOpen() {
		return apperror.ErrConnectionClosed
	}

	if err := wsjson.Write(ctx, that.ws, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *conn) OnMessage(handler func(entity.Message)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onMessage = append(that.onMessage, handler)

	if !that.reading && !that.closed {
		that.reading = true
		go that.readLoop()
	}
}

func (that *conn) OnClose(handler func(error)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onClose = append(that.onClose, handler)
}

func (that *conn) IsOpen() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return !that.closed
}

func (that *conn) PeerName() string {
	return that.peerName
}

func (that *conn) Close() error {
	that.finish(nil)

	return nil
}

func (that *conn) readLoop() {
	for {
		var msg entity.Message
		if err := wsjson.Read(that.ctx, that.ws, &msg); err != nil {
			that.finish(err)
			return
		}

		that.logger.Debug("message received", "action", msg.Action)

		that.mu.Lock()
		handlers := make([]func(entity.Message), len(that.onMessage))
		copy(handlers, that.onMessage)
		that.mu.Unlock()

		for _, handler := range handlers {
			handler(msg)
		}
	}
}

// finish closes the connection once and runs the close handlers.
func (that *conn) finish(cause error) {
	that.closeOnce.Do(func() {
		that.mu.Lock()
		that.closed = true
		handlers := make([]func(error), len(that.onClose))
		copy(handlers, that.onClose)
		that.mu.Unlock()

		if err := that.ws.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			that.logger.Debug("close handshake failed", "error", err)
		}
		that.cancel()

		if cause == nil {
			cause = apperror.ErrConnectionClosed
		}
		that.logger.Info("connection closed", "cause", cause)

		for _, handler := range handlers {
			handler(cause)
		}
	})
}
