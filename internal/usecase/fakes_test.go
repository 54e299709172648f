package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/stretchr/testify/mock"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// slowTimer keeps the turn timer out of the way in tests that are not about it.
func slowTimer(conf SessionConfig) SessionConfig {
	conf.TurnTimeLimit = time.Hour
	conf.TurnTick = time.Minute

	return conf
}

// memNetwork connects sessions in the same process.
type memNetwork struct {
	mu    sync.Mutex
	rooms map[string]*memListener
}

func newMemNetwork() *memNetwork {
	return &memNetwork{rooms: make(map[string]*memListener)}
}

func (that *memNetwork) Listen(_ context.Context, roomID, hostName string) (Listener, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[roomID]; ok {
		return nil, apperror.ErrRoomOccupied
	}

	listener := &memListener{
		network:  that,
		roomID:   roomID,
		hostName: hostName,
		guests:   make(chan Channel, 1),
		done:     make(chan struct{}),
	}
	that.rooms[roomID] = listener

	return listener, nil
}

func (that *memNetwork) Dial(ctx context.Context, roomID, playerName string) (Channel, error) {
	that.mu.Lock()
	listener, ok := that.rooms[roomID]
	that.mu.Unlock()

	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	hostEnd, guestEnd := newMemPipe(listener.hostName, playerName)

	select {
	case listener.guests <- hostEnd:
		return guestEnd, nil
	case <-listener.done:
		return nil, apperror.ErrRoomNotFound
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memListener struct {
	network  *memNetwork
	roomID   string
	hostName string
	guests   chan Channel
	done     chan struct{}
	once     sync.Once
}

func (that *memListener) Accept(ctx context.Context) (Channel, error) {
	select {
	case channel := <-that.guests:
		return channel, nil
	case <-that.done:
		return nil, apperror.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (that *memListener) Close() error {
	that.once.Do(func() {
		close(that.done)

		that.network.mu.Lock()
		delete(that.network.rooms, that.roomID)
		that.network.mu.Unlock()
	})

	return nil
}

type memPipe struct {
	closed chan struct{}
	once   sync.Once
}

type memChannel struct {
	pipe     *memPipe
	peer     *memChannel
	peerName string
	inbox    chan entity.Message

	mu        sync.Mutex
	onMessage []func(entity.Message)
	onClose   []func(error)
	started   bool
}

func newMemPipe(hostName, guestName string) (*memChannel, *memChannel) {
	pipe := &memPipe{closed: make(chan struct{})}
	hostEnd := &memChannel{pipe: pipe, peerName: guestName, inbox: make(chan entity.Message, 128)}
	guestEnd := &memChannel{pipe: pipe, peerName: hostName, inbox: make(chan entity.Message, 128)}
	hostEnd.peer, guestEnd.peer = guestEnd, hostEnd

	return hostEnd, guestEnd
}

func (that *memChannel) Send(ctx context.Context, msg entity.Message) error {
	if !that.IsOpen() {
		return apperror.ErrConnectionClosed
	}

	select {
	case that.peer.inbox <- msg:
		return nil
	case <-that.pipe.closed:
		return apperror.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (that *memChannel) OnMessage(handler func(entity.Message)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onMessage = append(that.onMessage, handler)
	if !that.started {
		that.started = true
		go that.run()
	}
}

func (that *memChannel) OnClose(handler func(error)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onClose = append(that.onClose, handler)
}

func (that *memChannel) run() {
	for {
		select {
		case msg := <-that.inbox:
			that.mu.Lock()
			handlers := append([]func(entity.Message){}, that.onMessage...)
			that.mu.Unlock()

			for _, handler := range handlers {
				handler(msg)
			}
		case <-that.pipe.closed:
			that.mu.Lock()
			handlers := append([]func(error){}, that.onClose...)
			that.mu.Unlock()

			for _, handler := range handlers {
				handler(apperror.ErrConnectionClosed)
			}

			return
		}
	}
}

func (that *memChannel) IsOpen() bool {
	select {
	case <-that.pipe.closed:
		return false
	default:
		return true
	}
}

func (that *memChannel) PeerName() string {
	return that.peerName
}

func (that *memChannel) Close() error {
	that.pipe.once.Do(func() {
		close(that.pipe.closed)
	})

	return nil
}

// mockChannel is a testify mock of Channel.
type mockChannel struct {
	mock.Mock
}

func (that *mockChannel) Send(ctx context.Context, msg entity.Message) error {
	args := that.Called(ctx, msg)
	return args.Error(0)
}

func (that *mockChannel) OnMessage(handler func(entity.Message)) {
	that.Called(handler)
}

func (that *mockChannel) OnClose(handler func(error)) {
	that.Called(handler)
}

func (that *mockChannel) IsOpen() bool {
	return that.Called().Bool(0)
}

func (that *mockChannel) PeerName() string {
	return that.Called().String(0)
}

func (that *mockChannel) Close() error {
	return that.Called().Error(0)
}

// stubNetwork hands out one prepared channel to the host.
type stubNetwork struct {
	channel Channel
}

func (that *stubNetwork) Listen(context.Context, string, string) (Listener, error) {
	return &stubListener{channel: that.channel}, nil
}

func (that *stubNetwork) Dial(context.Context, string, string) (Channel, error) {
	return that.channel, nil
}

type stubListener struct {
	channel Channel
}

func (that *stubListener) Accept(context.Context) (Channel, error) {
	return that.channel, nil
}

func (that *stubListener) Close() error {
	return nil
}

type statusLine struct {
	message  string
	severity entity.Severity
}

// recorder is an Observer that keeps everything it is told.
type recorder struct {
	mu        sync.Mutex
	snapshots []entity.GameState
	moves     []entity.MoveEvent
	winners   []entity.Winner
	ticks     []int
	hidden    int
	statuses  []statusLine

	onMove func(entity.MoveEvent)
}

func (that *recorder) OnSnapshot(state entity.GameState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.snapshots = append(that.snapshots, state)
}

func (that *recorder) OnMoveApplied(event entity.MoveEvent) {
	that.mu.Lock()
	that.moves = append(that.moves, event)
	onMove := that.onMove
	that.mu.Unlock()

	if onMove != nil {
		onMove(event)
	}
}

func (that *recorder) OnGameOver(winner entity.Winner) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.winners = append(that.winners, winner)
}

func (that *recorder) OnTimerTick(secondsRemaining int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.ticks = append(that.ticks, secondsRemaining)
}

func (that *recorder) OnTimerHidden() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.hidden++
}

func (that *recorder) OnStatus(message string, severity entity.Severity) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.statuses = append(that.statuses, statusLine{message: message, severity: severity})
}

func (that *recorder) moveEvents() []entity.MoveEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.MoveEvent{}, that.moves...)
}

func (that *recorder) movesFrom(source entity.MoveSource) int {
	count := 0
	for _, move := range that.moveEvents() {
		if move.Source == source {
			count++
		}
	}

	return count
}

func (that *recorder) timerTicks() []int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]int{}, that.ticks...)
}

func (that *recorder) countTicks(value int) int {
	count := 0
	for _, remaining := range that.timerTicks() {
		if remaining == value {
			count++
		}
	}

	return count
}

func (that *recorder) hiddenCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.hidden
}

func (that *recorder) gameOvers() []entity.Winner {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.Winner{}, that.winners...)
}

func (that *recorder) snapshotCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.snapshots)
}

func (that *recorder) lastSnapshot() entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.snapshots) == 0 {
		return entity.GameState{}
	}

	return that.snapshots[len(that.snapshots)-1]
}

func (that *recorder) hasStatus(severity entity.Severity, fragment string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, line := range that.statuses {
		if line.severity == severity && strings.Contains(line.message, fragment) {
			return true
		}
	}

	return false
}

func newTestSession(t *testing.T, conf SessionConfig, network Network) (*Session, *recorder) {
	t.Helper()

	session := NewSession(testLogger(), conf, newTestBot(), network)
	t.Cleanup(session.Close)

	rec := &recorder{}
	session.Subscribe(rec)

	return session, rec
}
