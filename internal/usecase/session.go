package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/othello"
	"github.com/rocketscienceinc/othello/internal/pkg"
)

// aiColor is the side played by the computer in AI mode.
const aiColor = entity.White

type SessionConfig struct {
	PlayerName        string
	Mode              entity.Mode
	Difficulty        entity.Difficulty
	AIDelay           time.Duration
	TurnTimeLimit     time.Duration
	TurnTick          time.Duration
	ConnectTimeout    time.Duration
	OpenTimeout       time.Duration
	SendTimeout       time.Duration
	VerifyRemoteMoves bool
	FallbackToLocal   bool
}

// Session orchestrates one game: it owns the engine, decides whose turn it is,
// schedules the computer opponent and the turn timer, and keeps the peer in sync.
type Session struct {
	logger  *slog.Logger
	conf    SessionConfig
	bot     botPolicy
	network Network
	hub     *hub

	id string

	mu           sync.Mutex
	engine       *othello.Engine
	mode         entity.Mode
	state        entity.SessionState
	difficulty   entity.Difficulty
	onlineColor  entity.Cell
	opponentName string

	timer   *turnTimer
	aiTimer *time.Timer
	aiEpoch uint64

	link onlineLink

	isClosed bool
}

func NewSession(logger *slog.Logger, conf SessionConfig, bot botPolicy, network Network) *Session {
	if conf.PlayerName == "" {
		conf.PlayerName = pkg.DefaultPlayerName()
	}

	if conf.Mode == "" {
		conf.Mode = entity.ModeLocal
	}

	if conf.Difficulty == "" {
		conf.Difficulty = entity.DifficultyNormal
	}

	if conf.TurnTick <= 0 {
		conf.TurnTick = time.Second
	}

	if conf.TurnTimeLimit < conf.TurnTick {
		conf.TurnTimeLimit = 30 * conf.TurnTick
	}

	if conf.OpenTimeout <= 0 {
		conf.OpenTimeout = 5 * time.Second
	}

	if conf.SendTimeout <= 0 {
		conf.SendTimeout = 5 * time.Second
	}

	session := &Session{
		logger:     logger.With("component", "session"),
		conf:       conf,
		bot:        bot,
		network:    network,
		hub:        newHub(),
		id:         pkg.GeneratePeerID(),
		engine:     othello.NewEngine(),
		mode:       conf.Mode,
		difficulty: conf.Difficulty,
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.enterTurnLocked()
	session.emitSnapshotLocked()

	return session
}

// Subscribe registers an observer and sends the current snapshot to it alone.
func (that *Session) Subscribe(observer Observer) int {
	id := that.hub.subscribe(observer)

	that.mu.Lock()
	defer that.mu.Unlock()

	state := that.snapshotLocked()
	that.hub.emitTo(id, func(o Observer) { o.OnSnapshot(state) })

	return id
}

func (that *Session) Unsubscribe(id int) {
	that.hub.unsubscribe(id)
}

// Close stops timers and the computer opponent, drops the peer connection and
// stops event delivery. The session cannot be used afterwards.
func (that *Session) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.isClosed {
		return
	}

	that.isClosed = true
	that.cancelAILocked()
	that.stopTimerLocked()
	that.teardownNetworkLocked()
	that.hub.close()
}

// SubmitMove is the move intent from the local player. Rejected intents
// change nothing and are reported only through the returned error.
func (that *Session) SubmitMove(row, col int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.submitLocked(entity.Move{Row: row, Col: col}, entity.SourceLocal)
}

func (that *Session) ChangeMode(mode entity.Mode) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "ChangeMode")

	if that.isClosed {
		return
	}

	that.teardownNetworkLocked()
	that.cancelAILocked()
	that.stopTimerLocked()

	that.mode = mode
	that.onlineColor = entity.Empty
	that.opponentName = ""
	that.engine.Initialize()
	that.enterTurnLocked()

	log.Info("mode changed", "mode", mode)

	switch mode {
	case entity.ModeAI:
		that.emitStatusLocked(fmt.Sprintf("playing against the computer (%s)", that.difficulty), entity.SeverityReady)
	case entity.ModeOnline:
		that.emitStatusLocked("online mode: host a room or join one", entity.SeverityReady)
	default:
		that.emitStatusLocked("local game", entity.SeverityReady)
	}

	that.emitSnapshotLocked()
}

// ResetSession starts a new game in the current mode and tells the peer.
func (that *Session) ResetSession() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.isClosed {
		return
	}

	that.restartLocked()

	if that.mode == entity.ModeOnline && that.link.channel != nil {
		that.sendLocked(entity.NewResetMessage())
	}

	that.emitStatusLocked("new game", entity.SeverityReady)
	that.emitSnapshotLocked()
}

func (that *Session) SetDifficulty(difficulty entity.Difficulty) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.difficulty = difficulty
	that.emitStatusLocked(fmt.Sprintf("computer difficulty set to %s", difficulty), entity.SeverityReady)
	that.emitSnapshotLocked()
}

func (that *Session) Snapshot() entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

// restartLocked reinitializes the board and re-enters the turn loop.
func (that *Session) restartLocked() {
	that.cancelAILocked()
	that.stopTimerLocked()
	that.engine.Initialize()
	that.enterTurnLocked()
}

// submitLocked runs one move through the pipeline shared by the local player,
// the computer and the turn timer.
func (that *Session) submitLocked(move entity.Move, source entity.MoveSource) error {
	log := that.logger.With("method", "submitMove")

	if err := that.acceptsLocked(move, source); err != nil {
		log.Debug("move rejected", "row", move.Row, "col", move.Col, "source", source, "error", err)
		return err
	}

	player := that.engine.CurrentPlayer()
	outcome := that.engine.Apply(move, player, false)
	if !outcome.Success {
		return fmt.Errorf("failed to apply move: %w", outcome.Err)
	}

	if that.mode == entity.ModeOnline {
		that.sendLocked(entity.NewMoveMessage(move))
	}

	that.afterMoveLocked(move, player, source, outcome)

	return nil
}

func (that *Session) acceptsLocked(move entity.Move, source entity.MoveSource) error {
	if that.isClosed || that.engine.IsGameOver() {
		return apperror.ErrGameFinished
	}

	switch that.state {
	case entity.StateIdle, entity.StateGameOver:
		return apperror.ErrWrongState
	case entity.StateAIThinking:
		if source != entity.SourceAI {
			return apperror.ErrWrongState
		}
	case entity.StateTimedOut:
		if source != entity.SourceTimeout {
			return apperror.ErrWrongState
		}
	case entity.StateAwaitingRemoteMove:
		return apperror.ErrNotYourTurn
	}

	if !that.engine.IsLegal(move, that.engine.CurrentPlayer()) {
		return apperror.ErrIllegalMove
	}

	if that.mode == entity.ModeOnline && that.engine.CurrentPlayer() != that.onlineColor {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// afterMoveLocked reports an applied move and moves the state machine on.
func (that *Session) afterMoveLocked(move entity.Move, player entity.Cell, source entity.MoveSource, outcome othello.Outcome) {
	that.stopTimerLocked()

	that.logger.Info("move applied",
		"row", move.Row, "col", move.Col, "player", player.String(), "source", source,
		"flipped", len(outcome.Flipped))

	moveEvent := entity.MoveEvent{Move: move, Player: player, Source: source}

	if outcome.GameOver {
		that.state = entity.StateGameOver
		that.emitSnapshotLocked()
		that.hub.emit(func(o Observer) { o.OnMoveApplied(moveEvent) })
		that.hub.emit(func(o Observer) { o.OnGameOver(outcome.Winner) })
		that.logger.Info("game over", "winner", outcome.Winner)

		return
	}

	if outcome.Passed {
		passer := player.Opponent()
		that.logger.Info("player passes", "player", passer.String())
		that.emitStatusLocked(fmt.Sprintf("%s has no legal move and passes", passer), entity.SeverityWarning)
	}

	that.enterTurnLocked()
	that.emitSnapshotLocked()
	that.hub.emit(func(o Observer) { o.OnMoveApplied(moveEvent) })
}

// enterTurnLocked derives the state from mode and side to move and starts
// whatever drives the next move.
func (that *Session) enterTurnLocked() {
	if that.engine.IsGameOver() {
		that.state = entity.StateGameOver
		return
	}

	current := that.engine.CurrentPlayer()

	switch that.mode {
	case entity.ModeAI:
		if current == aiColor {
			that.state = entity.StateAIThinking
			that.scheduleAILocked()
			return
		}

		that.state = entity.StateHumanTurn
	case entity.ModeOnline:
		if that.link.channel == nil || !that.onlineColor.IsPlayer() {
			that.state = entity.StateIdle
			return
		}

		if current != that.onlineColor {
			that.state = entity.StateAwaitingRemoteMove
			return
		}

		that.state = entity.StateHumanTurn
		that.startTimerLocked()
	default:
		that.state = entity.StateHumanTurn
	}
}

func (that *Session) scheduleAILocked() {
	that.cancelAILocked()

	epoch := that.aiEpoch
	that.aiTimer = time.AfterFunc(that.conf.AIDelay, func() {
		that.playAI(epoch)
	})
}

func (that *Session) cancelAILocked() {
	that.aiEpoch++

	if that.aiTimer != nil {
		that.aiTimer.Stop()
		that.aiTimer = nil
	}
}

func (that *Session) playAI(epoch uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if epoch != that.aiEpoch || that.state != entity.StateAIThinking {
		return
	}

	that.aiTimer = nil

	move, ok := that.bot.SelectMove(that.engine, that.difficulty)
	if !ok {
		that.logger.Warn("computer has no legal move", "player", that.engine.CurrentPlayer().String())
		that.state = entity.StateHumanTurn
		that.emitSnapshotLocked()

		return
	}

	if err := that.submitLocked(move, entity.SourceAI); err != nil {
		that.logger.Error("computer move rejected", "row", move.Row, "col", move.Col, "error", err)
	}
}

func (that *Session) startTimerLocked() {
	that.stopTimerLocked()

	ticks := int(that.conf.TurnTimeLimit / that.conf.TurnTick)
	that.timer = startTurnTimer(ticks, that.conf.TurnTick, that.onTimerTick)
	that.hub.emit(func(o Observer) { o.OnTimerTick(ticks) })
}

func (that *Session) stopTimerLocked() {
	if that.timer == nil {
		return
	}

	that.timer.Cancel()
	that.timer = nil
	that.hub.emit(func(o Observer) { o.OnTimerHidden() })
}

func (that *Session) onTimerTick(timer *turnTimer) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.timer != timer {
		return false
	}

	timer.remaining--
	remaining := timer.remaining
	that.hub.emit(func(o Observer) { o.OnTimerTick(remaining) })

	if remaining > 0 {
		return true
	}

	that.handleTimeoutLocked()

	return false
}

// handleTimeoutLocked plays a random legal move for the local player.
func (that *Session) handleTimeoutLocked() {
	log := that.logger.With("method", "handleTimeout")

	that.stopTimerLocked()
	that.state = entity.StateTimedOut
	that.emitStatusLocked("time is up, a random move was played", entity.SeverityWarning)

	move, ok := that.bot.SelectMove(that.engine, entity.DifficultyEasy)
	if !ok {
		log.Warn("no legal move on timeout", "player", that.engine.CurrentPlayer().String())
		that.enterTurnLocked()
		that.emitSnapshotLocked()

		return
	}

	if err := that.submitLocked(move, entity.SourceTimeout); err != nil {
		log.Error("timeout move rejected", "row", move.Row, "col", move.Col, "error", err)
		that.enterTurnLocked()
		that.emitSnapshotLocked()
	}
}

func (that *Session) snapshotLocked() entity.GameState {
	state := entity.GameState{
		Board:         that.engine.Board(),
		CurrentPlayer: that.engine.CurrentPlayer(),
		Scores:        that.engine.Score(),
		GameOver:      that.engine.IsGameOver(),
		Mode:          that.mode,
		OpponentName:  that.opponentName,
		State:         that.state,
	}

	if state.GameOver {
		state.Winner = that.engine.Winner()
	}

	switch that.mode {
	case entity.ModeOnline:
		state.OnlinePlayerColor = that.onlineColor
	case entity.ModeAI:
		state.Difficulty = that.difficulty
	}

	return state
}

func (that *Session) emitSnapshotLocked() {
	state := that.snapshotLocked()
	that.hub.emit(func(o Observer) { o.OnSnapshot(state) })
}

func (that *Session) emitStatusLocked(message string, severity entity.Severity) {
	that.hub.emit(func(o Observer) { o.OnStatus(message, severity) })
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}
