package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/usecase"
	"nhooyr.io/websocket"
)

const shutdownTimeout = 5 * time.Second

type roomRepo interface {
	Register(ctx context.Context, room *entity.Room, ttl time.Duration) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

// Network carries peer connections over WebSocket. Hosts serve their rooms
// at /rooms/{id}; guests find the host address through the room registry.
type Network struct {
	logger        *slog.Logger
	rooms         roomRepo
	advertiseAddr string
	roomTTL       time.Duration

	mu        sync.Mutex
	listeners map[string]*listener
}

func New(logger *slog.Logger, rooms roomRepo, advertiseAddr string, roomTTL time.Duration) *Network {
	return &Network{
		logger:        logger.With("component", "websocket"),
		rooms:         rooms,
		advertiseAddr: advertiseAddr,
		roomTTL:       roomTTL,
		listeners:     make(map[string]*listener),
	}
}

func (that *Network) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{id}", that.handleRoom)

	return mux
}

// Start - starts the WebSocket server and stops it when ctx is done.
func (that *Network) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Listen publishes the room and waits for a guest on it.
func (that *Network) Listen(ctx context.Context, roomID, hostName string) (usecase.Listener, error) {
	that.mu.Lock()
	if _, ok := that.listeners[roomID]; ok {
		that.mu.Unlock()
		return nil, apperror.ErrRoomOccupied
	}

	l := &listener{
		network: that,
		roomID:  roomID,
		guests:  make(chan *conn, 1),
		done:    make(chan struct{}),
	}
	that.listeners[roomID] = l
	that.mu.Unlock()

	room := &entity.Room{
		ID:        roomID,
		HostName:  hostName,
		Address:   that.advertiseAddr,
		CreatedAt: time.Now().UTC(),
	}

	if err := that.rooms.Register(ctx, room, that.roomTTL); err != nil {
		that.removeListener(roomID)
		return nil, fmt.Errorf("failed to register room: %w", err)
	}

	that.logger.Info("room registered", "room_id", roomID, "address", that.advertiseAddr)

	return l, nil
}

// Dial looks the room up and connects to its host.
func (that *Network) Dial(ctx context.Context, roomID, playerName string) (usecase.Channel, error) {
	log := that.logger.With("method", "Dial")

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to find room %s: %w", roomID, err)
	}

	target := fmt.Sprintf("ws://%s/rooms/%s?name=%s", room.Address, url.PathEscape(roomID), url.QueryEscape(playerName))

	ws, resp, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return nil, apperror.ErrRoomNotFound
			case http.StatusConflict:
				return nil, apperror.ErrRoomOccupied
			}
		}

		return nil, fmt.Errorf("failed to dial %s: %w", room.Address, err)
	}

	log.Info("connected to host", "room_id", roomID, "host", room.HostName)

	return newConn(that.logger, ws, room.HostName), nil
}

func (that *Network) handleRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRoom")

	roomID := r.PathValue("id")

	that.mu.Lock()
	l, ok := that.listeners[roomID]
	that.mu.Unlock()

	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if !l.claimed.CompareAndSwap(false, true) {
		http.Error(w, "room already has a guest", http.StatusConflict)
		return
	}

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("failed to accept websocket", "room_id", roomID, "error", err)
		l.claimed.Store(false)

		return
	}

	guestName := r.URL.Query().Get("name")
	c := newConn(that.logger, ws, guestName)

	select {
	case l.guests <- c:
		log.Info("guest connected", "room_id", roomID, "guest", guestName)
	case <-l.done:
		_ = c.Close()
	}
}

func (that *Network) removeListener(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.listeners, roomID)
}
