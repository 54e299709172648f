package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/othello"
)

const (
	blackDisc = "●"
	whiteDisc = "○"
	emptyCell = "."
	hintCell  = "*"
)

// Renderer prints session events as plain text lines. It is safe for use by
// the session's event goroutine and the input loop at the same time.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer

	black  *color.Color
	white  *color.Color
	hint   *color.Color
	label  *color.Color
	colors map[entity.Severity]*color.Color
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:   out,
		black: color.New(color.FgHiBlue, color.Bold),
		white: color.New(color.FgHiWhite, color.Bold),
		hint:  color.New(color.FgGreen),
		label: color.New(color.FgHiBlack),
		colors: map[entity.Severity]*color.Color{
			entity.SeverityReady:        color.New(color.Reset),
			entity.SeverityConnecting:   color.New(color.FgCyan),
			entity.SeverityConnected:    color.New(color.FgGreen),
			entity.SeverityWarning:      color.New(color.FgYellow),
			entity.SeverityError:        color.New(color.FgRed),
			entity.SeverityDisconnected: color.New(color.FgMagenta),
		},
	}
}

func (that *Renderer) OnSnapshot(state entity.GameState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.drawBoard(state)
	that.drawLabel(state)
}

func (that *Renderer) OnMoveApplied(event entity.MoveEvent) {
	that.mu.Lock()
	defer that.mu.Unlock()

	line := fmt.Sprintf("%s played %s", event.Player, event.Move)

	switch event.Source {
	case entity.SourceAI:
		line += " (computer)"
	case entity.SourceRemote:
		line += " (opponent)"
	case entity.SourceTimeout:
		line += " (out of time)"
	}

	fmt.Fprintln(that.out, line)
}

func (that *Renderer) OnGameOver(winner entity.Winner) {
	that.mu.Lock()
	defer that.mu.Unlock()

	bold := color.New(color.Bold)

	if winner == entity.WinnerTie {
		bold.Fprintln(that.out, "game over: draw")
		return
	}

	bold.Fprintf(that.out, "game over: %s wins\n", winner)
}

// OnTimerTick prints every ten seconds and then each of the last five.
func (that *Renderer) OnTimerTick(secondsRemaining int) {
	if secondsRemaining%10 != 0 && secondsRemaining > 5 {
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	c := that.label
	if secondsRemaining <= 5 {
		c = that.colors[entity.SeverityWarning]
	}

	c.Fprintf(that.out, "%ds left\n", secondsRemaining)
}

func (that *Renderer) OnTimerHidden() {}

func (that *Renderer) OnStatus(message string, severity entity.Severity) {
	that.mu.Lock()
	defer that.mu.Unlock()

	c, ok := that.colors[severity]
	if !ok {
		c = that.colors[entity.SeverityReady]
	}

	c.Fprintf(that.out, "[%s] %s\n", severity, message)
}

// Println writes a line for the input loop.
func (that *Renderer) Println(a ...any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	fmt.Fprintln(that.out, a...)
}

// Errorln writes an error line for the input loop.
func (that *Renderer) Errorln(err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.colors[entity.SeverityError].Fprintf(that.out, "error: %v\n", err)
}

func (that *Renderer) drawBoard(state entity.GameState) {
	hints := make(map[entity.Move]bool)
	if state.State == entity.StateHumanTurn {
		engine := othello.NewEngineFromBoard(state.Board, state.CurrentPlayer)
		for _, move := range engine.LegalMoves(state.CurrentPlayer) {
			hints[move] = true
		}
	}

	var files strings.Builder
	files.WriteString("  ")
	for col := 0; col < entity.BoardSize; col++ {
		files.WriteString(" " + string(rune('a'+col)))
	}
	that.label.Fprintln(that.out, files.String())

	for row := 0; row < entity.BoardSize; row++ {
		that.label.Fprintf(that.out, "%2d", row+1)

		for col := 0; col < entity.BoardSize; col++ {
			fmt.Fprint(that.out, " ")

			move := entity.Move{Row: row, Col: col}
			switch state.Board.At(move) {
			case entity.Black:
				that.black.Fprint(that.out, blackDisc)
			case entity.White:
				that.white.Fprint(that.out, whiteDisc)
			default:
				if hints[move] {
					that.hint.Fprint(that.out, hintCell)
				} else {
					fmt.Fprint(that.out, emptyCell)
				}
			}
		}

		fmt.Fprintln(that.out)
	}
}

func (that *Renderer) drawLabel(state entity.GameState) {
	line := fmt.Sprintf("%s %d  %s %d", blackDisc, state.Scores.Black, whiteDisc, state.Scores.White)

	if !state.GameOver {
		line += fmt.Sprintf("  %s to move", state.CurrentPlayer)
	}

	line += fmt.Sprintf("  [%s", state.Mode)
	if state.Mode == entity.ModeAI {
		line += ", " + string(state.Difficulty)
	}
	if state.Mode == entity.ModeOnline && state.OnlinePlayerColor.IsPlayer() {
		line += fmt.Sprintf(", you are %s", state.OnlinePlayerColor)
		if state.OpponentName != "" {
			line += " vs " + state.OpponentName
		}
	}
	line += fmt.Sprintf(", %s]", state.State)

	fmt.Fprintln(that.out, line)
}
