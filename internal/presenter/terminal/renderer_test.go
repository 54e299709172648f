package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/othello"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func openingState() entity.GameState {
	engine := othello.NewEngine()

	return entity.GameState{
		Board:         engine.Board(),
		CurrentPlayer: entity.Black,
		Scores:        engine.Score(),
		Mode:          entity.ModeLocal,
		State:         entity.StateHumanTurn,
	}
}

func TestRenderer_Snapshot(t *testing.T) {
	t.Run("Opening position shows discs and hints", func(t *testing.T) {
		var out bytes.Buffer
		view := NewRenderer(&out)

		// When: the opening snapshot is drawn
		view.OnSnapshot(openingState())

		// Then: four discs, four legal move hints and the turn label
		text := out.String()
		assert.Equal(t, 2, strings.Count(text, blackDisc)-1)
		assert.Equal(t, 2, strings.Count(text, whiteDisc)-1)
		assert.Equal(t, 4, strings.Count(text, hintCell))
		assert.Contains(t, text, "a b c d e f g h")
		assert.Contains(t, text, "black to move")
		assert.Contains(t, text, "[local, human_turn]")
	})

	t.Run("No hints while waiting for someone else", func(t *testing.T) {
		var out bytes.Buffer
		view := NewRenderer(&out)

		state := openingState()
		state.Mode = entity.ModeOnline
		state.State = entity.StateAwaitingRemoteMove
		state.OnlinePlayerColor = entity.White
		state.OpponentName = "alice"

		view.OnSnapshot(state)

		text := out.String()
		assert.Zero(t, strings.Count(text, hintCell))
		assert.Contains(t, text, "you are white vs alice")
	})
}

func TestRenderer_Events(t *testing.T) {
	var out bytes.Buffer
	view := NewRenderer(&out)

	view.OnMoveApplied(entity.MoveEvent{Move: entity.Move{Row: 2, Col: 3}, Player: entity.Black, Source: entity.SourceLocal})
	view.OnMoveApplied(entity.MoveEvent{Move: entity.Move{Row: 2, Col: 2}, Player: entity.White, Source: entity.SourceAI})
	view.OnStatus("opponent started a new game", entity.SeverityWarning)
	view.OnGameOver(entity.WinnerTie)
	view.OnGameOver(entity.WinnerBlack)

	text := out.String()
	assert.Contains(t, text, "black played d3\n")
	assert.Contains(t, text, "white played c3 (computer)")
	assert.Contains(t, text, "[warning] opponent started a new game")
	assert.Contains(t, text, "game over: draw")
	assert.Contains(t, text, "game over: black wins")
}

func TestRenderer_TimerTicks(t *testing.T) {
	var out bytes.Buffer
	view := NewRenderer(&out)

	for remaining := 30; remaining >= 0; remaining-- {
		view.OnTimerTick(remaining)
	}
	view.OnTimerHidden()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"30s left", "20s left", "10s left", "5s left", "4s left", "3s left", "2s left", "1s left", "0s left"}, lines)
}
