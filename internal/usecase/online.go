package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/pkg"
)

type role string

const (
	roleNone  role = ""
	roleHost  role = "host"
	roleGuest role = "guest"
)

// onlineLink is the networking state of a session. epoch changes on every
// teardown so callbacks from a previous connection are ignored.
type onlineLink struct {
	epoch        uint64
	role         role
	roomID       string
	listener     Listener
	cancelAccept context.CancelFunc
	channel      Channel
	outbox       *outbox
	started      bool
}

type NetworkInfo struct {
	SessionID    string `json:"session_id"`
	PlayerName   string `json:"player_name"`
	Role         string `json:"role,omitempty"`
	RoomID       string `json:"room_id,omitempty"`
	Connected    bool   `json:"connected"`
	OpponentName string `json:"opponent_name,omitempty"`
}

func (that *Session) Info() NetworkInfo {
	that.mu.Lock()
	defer that.mu.Unlock()

	return NetworkInfo{
		SessionID:    that.id,
		PlayerName:   that.conf.PlayerName,
		Role:         string(that.link.role),
		RoomID:       that.link.roomID,
		Connected:    that.link.channel != nil && that.link.channel.IsOpen(),
		OpponentName: that.opponentName,
	}
}

// HostGame opens a room and returns its code. The first guest to connect
// plays White; the host plays Black and moves first.
func (that *Session) HostGame(ctx context.Context) (string, error) {
	log := that.logger.With("method", "HostGame")

	that.mu.Lock()
	if err := that.canGoOnlineLocked(); err != nil {
		that.mu.Unlock()
		return "", err
	}

	roomID, err := pkg.GenerateRoomID()
	if err != nil {
		that.mu.Unlock()
		log.Error("failed to create room", "error", err)

		return "", err
	}

	that.prepareOnlineLocked(roleHost)
	that.link.roomID = roomID
	epoch := that.link.epoch
	that.emitStatusLocked(fmt.Sprintf("creating room %s", roomID), entity.SeverityConnecting)
	that.emitSnapshotLocked()
	that.mu.Unlock()

	listenCtx, cancel := withTimeout(ctx, that.conf.ConnectTimeout)
	listener, err := that.network.Listen(listenCtx, roomID, that.conf.PlayerName)
	cancel()

	that.mu.Lock()
	defer that.mu.Unlock()

	if err != nil {
		err = classifyNetworkError(err)
		log.Error("failed to open room", "room_id", roomID, "error", err)

		if epoch == that.link.epoch {
			that.link.role = roleNone
			that.emitStatusLocked(fmt.Sprintf("failed to create room: %v", err), entity.SeverityError)
		}

		return "", fmt.Errorf("failed to host room %s: %w", roomID, err)
	}

	if epoch != that.link.epoch || that.isClosed {
		go that.closeQuietly("listener", listener)
		return "", apperror.ErrConnectionClosed
	}

	acceptCtx, cancelAccept := context.WithCancel(context.Background())
	that.link.listener = listener
	that.link.cancelAccept = cancelAccept

	go that.acceptGuest(acceptCtx, listener, epoch)

	log.Info("room opened", "room_id", roomID)
	that.emitStatusLocked(fmt.Sprintf("room %s is open, waiting for an opponent", roomID), entity.SeverityConnecting)

	return roomID, nil
}

func (that *Session) acceptGuest(ctx context.Context, listener Listener, epoch uint64) {
	log := that.logger.With("method", "acceptGuest")

	channel, err := listener.Accept(ctx)

	that.mu.Lock()
	defer that.mu.Unlock()

	if epoch != that.link.epoch {
		if err == nil {
			go that.closeQuietly("channel", channel)
		}

		return
	}

	if err != nil {
		log.Error("failed to accept opponent", "error", err)
		that.emitStatusLocked(fmt.Sprintf("failed to accept opponent: %v", classifyNetworkError(err)), entity.SeverityError)

		return
	}

	// one guest per room; stop advertising it
	that.link.cancelAccept()
	that.link.cancelAccept = nil
	that.link.listener = nil
	go that.closeQuietly("listener", listener)

	that.attachLocked(channel, epoch)
	that.link.started = true
	that.onlineColor = entity.Black
	that.opponentName = channel.PeerName()

	that.sendLocked(entity.NewGameStartMessage(that.conf.PlayerName, entity.White, that.link.roomID))
	that.restartLocked()

	log.Info("opponent joined", "room_id", that.link.roomID, "opponent", that.opponentName)
	that.emitStatusLocked(fmt.Sprintf("%s joined, you play black", that.opponentName), entity.SeverityConnected)
	that.emitSnapshotLocked()
}

// JoinGame connects to the room with the given code. The host assigns the
// color with its game start message.
func (that *Session) JoinGame(ctx context.Context, roomID string) error {
	log := that.logger.With("method", "JoinGame")

	that.mu.Lock()
	if err := that.canGoOnlineLocked(); err != nil {
		that.mu.Unlock()
		return err
	}

	that.prepareOnlineLocked(roleGuest)
	that.link.roomID = roomID
	epoch := that.link.epoch
	that.emitStatusLocked(fmt.Sprintf("joining room %s", roomID), entity.SeverityConnecting)
	that.emitSnapshotLocked()
	that.mu.Unlock()

	dialCtx, cancel := withTimeout(ctx, that.conf.ConnectTimeout)
	channel, err := that.network.Dial(dialCtx, roomID, that.conf.PlayerName)
	cancel()

	that.mu.Lock()
	defer that.mu.Unlock()

	if err != nil {
		err = classifyNetworkError(err)
		log.Error("failed to join room", "room_id", roomID, "error", err)

		if epoch == that.link.epoch {
			that.link.role = roleNone
			that.emitStatusLocked(fmt.Sprintf("failed to join room %s: %v", roomID, err), entity.SeverityError)
		}

		return fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	if epoch != that.link.epoch || that.isClosed {
		go that.closeQuietly("channel", channel)
		return apperror.ErrConnectionClosed
	}

	that.attachLocked(channel, epoch)
	time.AfterFunc(that.conf.OpenTimeout, func() {
		that.checkGameStarted(epoch)
	})

	log.Info("joined room", "room_id", roomID)
	that.emitStatusLocked("connected, waiting for the host to start the game", entity.SeverityConnected)

	return nil
}

func (that *Session) checkGameStarted(epoch uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if epoch != that.link.epoch || that.link.started {
		return
	}

	that.logger.Error("game did not start in time", "room_id", that.link.roomID, "error", apperror.ErrConnectionTimeout)
	that.teardownNetworkLocked()
	that.enterTurnLocked()
	that.emitStatusLocked(fmt.Sprintf("%v: the host did not start the game", apperror.ErrConnectionTimeout), entity.SeverityError)
	that.emitSnapshotLocked()
}

func (that *Session) canGoOnlineLocked() error {
	if that.isClosed {
		return apperror.ErrConnectionClosed
	}

	if that.network == nil {
		return apperror.ErrNotConnected
	}

	return nil
}

func (that *Session) prepareOnlineLocked(r role) {
	that.teardownNetworkLocked()
	that.cancelAILocked()
	that.stopTimerLocked()

	that.mode = entity.ModeOnline
	that.onlineColor = entity.Empty
	that.opponentName = ""
	that.engine.Initialize()
	that.link.role = r
	that.state = entity.StateIdle
}

func (that *Session) attachLocked(channel Channel, epoch uint64) {
	that.link.channel = channel
	that.link.outbox = newOutbox(channel, that.conf.SendTimeout, func(msg entity.Message, err error) {
		that.handleSendFailure(epoch, msg, err)
	})

	channel.OnClose(func(err error) {
		that.handleClose(epoch, err)
	})
	channel.OnMessage(func(msg entity.Message) {
		that.handleMessage(epoch, msg)
	})
}

func (that *Session) teardownNetworkLocked() {
	link := that.link
	that.link = onlineLink{epoch: link.epoch + 1}

	if link.cancelAccept != nil {
		link.cancelAccept()
	}

	if link.outbox != nil {
		link.outbox.close()
	}

	if link.listener != nil {
		go that.closeQuietly("listener", link.listener)
	}

	if link.channel != nil {
		go that.closeQuietly("channel", link.channel)
	}
}

func (that *Session) closeQuietly(name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		that.logger.Debug("close failed", "what", name, "error", err)
	}
}

// sendLocked queues msg for the peer. A failed relay is reported but the local
// board is kept as is.
func (that *Session) sendLocked(msg entity.Message) {
	if that.link.outbox == nil {
		that.logger.Warn("no peer to send to", "action", msg.Action)
		that.emitStatusLocked(fmt.Sprintf("failed to send %s: %v", msg.Action, apperror.ErrNotConnected), entity.SeverityError)

		return
	}

	if !that.link.outbox.push(msg) {
		that.logger.Error("outbound queue is full", "action", msg.Action, "error", apperror.ErrSendFailed)
		that.emitStatusLocked(fmt.Sprintf("%v: outbound queue is full", apperror.ErrSendFailed), entity.SeverityError)
	}
}

func (that *Session) handleSendFailure(epoch uint64, msg entity.Message, err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if epoch != that.link.epoch {
		return
	}

	err = fmt.Errorf("%w: %w", apperror.ErrSendFailed, classifyNetworkError(err))
	that.logger.Error("failed to send message", "action", msg.Action, "error", err)
	that.emitStatusLocked(fmt.Sprintf("failed to send %s to opponent: %v", msg.Action, err), entity.SeverityError)
}

// handleClose ends the online game. The session either waits idle or, when
// configured, keeps the board and continues as a local game.
func (that *Session) handleClose(epoch uint64, err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if epoch != that.link.epoch || that.isClosed {
		return
	}

	that.logger.Info("connection closed", "room_id", that.link.roomID, "error", err)

	that.stopTimerLocked()
	that.teardownNetworkLocked()
	that.emitStatusLocked("connection to opponent closed", entity.SeverityDisconnected)

	if that.conf.FallbackToLocal {
		that.mode = entity.ModeLocal
		that.onlineColor = entity.Empty
		that.emitStatusLocked("continuing as a local game", entity.SeverityReady)
	}

	that.enterTurnLocked()
	that.emitSnapshotLocked()
}

func (that *Session) handleMessage(epoch uint64, msg entity.Message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "handleMessage")

	if epoch != that.link.epoch || that.isClosed {
		return
	}

	switch msg.Action {
	case entity.ActionMove:
		move, err := msg.DecodeMove()
		if err != nil {
			log.Error("bad move message", "error", err)
			that.emitStatusLocked("game out of sync: unreadable move from opponent", entity.SeverityError)

			return
		}

		that.handleRemoteMoveLocked(move)
	case entity.ActionGameStart:
		that.handleGameStartLocked(msg)
	case entity.ActionReset:
		that.handleResetLocked()
	default:
		log.Warn("ignoring message", "action", msg.Action, "error", apperror.ErrUnknownAction)
	}
}

// handleRemoteMoveLocked applies the peer's move for the peer's color. The peer
// is trusted to have checked legality unless VerifyRemoteMoves is set.
func (that *Session) handleRemoteMoveLocked(move entity.Move) {
	log := that.logger.With("method", "handleRemoteMove")

	peerColor := that.onlineColor.Opponent()
	if !that.link.started || that.engine.IsGameOver() || that.engine.CurrentPlayer() != peerColor {
		log.Warn("remote move out of turn", "row", move.Row, "col", move.Col, "current", that.engine.CurrentPlayer().String())
		that.emitStatusLocked("game out of sync: opponent moved out of turn", entity.SeverityError)

		return
	}

	if that.conf.VerifyRemoteMoves && !that.engine.IsLegal(move, peerColor) {
		err := fmt.Errorf("%w: %s", apperror.ErrRemoteTrustViolation, move)
		log.Error("rejecting remote move", "row", move.Row, "col", move.Col, "error", err)

		that.restartLocked()
		that.sendLocked(entity.NewResetMessage())
		that.emitStatusLocked(fmt.Sprintf("%v, starting a new game", err), entity.SeverityError)
		that.emitSnapshotLocked()

		return
	}

	outcome := that.engine.Apply(move, peerColor, true)
	if !outcome.Success {
		log.Error("failed to apply remote move", "row", move.Row, "col", move.Col, "error", outcome.Err)
		that.emitStatusLocked(fmt.Sprintf("game out of sync: %v", outcome.Err), entity.SeverityError)

		return
	}

	that.afterMoveLocked(move, peerColor, entity.SourceRemote, outcome)
}

func (that *Session) handleGameStartLocked(msg entity.Message) {
	log := that.logger.With("method", "handleGameStart")

	if that.link.role != roleGuest {
		log.Warn("ignoring game start as host")
		return
	}

	payload, err := msg.DecodeGameStart()
	if err != nil {
		log.Error("bad game start message", "error", err)
		that.emitStatusLocked(fmt.Sprintf("failed to start game: %v", err), entity.SeverityError)

		return
	}

	that.link.started = true
	that.onlineColor = payload.YourColor
	that.opponentName = payload.HostName
	if payload.RoomID != "" {
		that.link.roomID = payload.RoomID
	}

	that.restartLocked()

	log.Info("game started", "room_id", that.link.roomID, "opponent", that.opponentName, "color", that.onlineColor.String())
	that.emitStatusLocked(fmt.Sprintf("game started against %s, you play %s", that.opponentName, that.onlineColor), entity.SeverityConnected)
	that.emitSnapshotLocked()
}

func (that *Session) handleResetLocked() {
	if !that.link.started {
		return
	}

	that.restartLocked()
	that.emitStatusLocked("opponent started a new game", entity.SeverityReady)
	that.emitSnapshotLocked()
}

func classifyNetworkError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, apperror.ErrConnectionTimeout) {
		return fmt.Errorf("%w: %w", apperror.ErrConnectionTimeout, err)
	}

	return err
}
