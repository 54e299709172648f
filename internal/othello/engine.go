package othello

import (
	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
)

// Outcome is the result of Apply. A rejected move leaves the engine untouched
// and carries the reason in Err.
type Outcome struct {
	Success  bool
	GameOver bool
	Winner   entity.Winner
	// Passed is set when the opponent had no reply and the turn went back to the mover.
	Passed  bool
	Flipped []entity.Move
	Err     error
}

// Engine owns one board and enforces the rules on it. It is not safe for
// concurrent use; the session serializes access.
type Engine struct {
	board         entity.Board
	currentPlayer entity.Cell
	gameOver      bool
}

func NewEngine() *Engine {
	engine := &Engine{}
	engine.Initialize()

	return engine
}

// NewEngineFromBoard builds an engine around an arbitrary position.
func NewEngineFromBoard(board entity.Board, currentPlayer entity.Cell) *Engine {
	engine := &Engine{
		board:         board,
		currentPlayer: currentPlayer,
	}
	engine.gameOver = !engine.HasLegalMove(entity.Black) && !engine.HasLegalMove(entity.White)

	return engine
}

// Initialize resets to the opening position with Black to move.
func (that *Engine) Initialize() {
	that.board = entity.Board{}

	mid := entity.BoardSize / 2
	that.board[mid-1][mid-1] = entity.White
	that.board[mid-1][mid] = entity.Black
	that.board[mid][mid-1] = entity.Black
	that.board[mid][mid] = entity.White

	that.currentPlayer = entity.Black
	that.gameOver = false
}

func (that *Engine) IsLegal(move entity.Move, player entity.Cell) bool {
	if !move.InBounds() || !player.IsPlayer() || that.board.At(move) != entity.Empty {
		return false
	}

	for _, dir := range entity.Directions {
		if that.runLength(move, dir, player) > 0 {
			return true
		}
	}

	return false
}

// Apply places player at move and flips every flanked run. With
// skipLegalityCheck the flanking requirement is waived, but the cell must
// still be on the board and empty.
func (that *Engine) Apply(move entity.Move, player entity.Cell, skipLegalityCheck bool) Outcome {
	if err := that.validateMove(move, player, skipLegalityCheck); err != nil {
		return Outcome{Err: err}
	}

	flipped := make([]entity.Move, 0, 8)
	for _, dir := range entity.Directions {
		n := that.runLength(move, dir, player)
		for i := 1; i <= n; i++ {
			flipped = append(flipped, entity.Move{Row: move.Row + dir.DRow*i, Col: move.Col + dir.DCol*i})
		}
	}

	that.board[move.Row][move.Col] = player
	for _, cell := range flipped {
		that.board[cell.Row][cell.Col] = player
	}

	outcome := Outcome{Success: true, Flipped: flipped}
	that.advanceTurn(player, &outcome)

	return outcome
}

// validateMove - checks that a move may be applied.
func (that *Engine) validateMove(move entity.Move, player entity.Cell, skipLegalityCheck bool) error {
	if that.gameOver {
		return apperror.ErrGameFinished
	}

	if !move.InBounds() || !player.IsPlayer() {
		return apperror.ErrInvalidCell
	}

	if that.board.At(move) != entity.Empty {
		return apperror.ErrCellOccupied
	}

	if !skipLegalityCheck && !that.IsLegal(move, player) {
		return apperror.ErrIllegalMove
	}

	return nil
}

// advanceTurn hands the turn to the opponent. If the opponent cannot move the
// turn reverts to the mover, and if the mover cannot move either the game ends.
func (that *Engine) advanceTurn(mover entity.Cell, outcome *Outcome) {
	that.currentPlayer = mover.Opponent()
	if that.HasLegalMove(that.currentPlayer) {
		return
	}

	that.currentPlayer = mover
	if that.HasLegalMove(mover) {
		outcome.Passed = true
		return
	}

	that.gameOver = true
	outcome.GameOver = true
	outcome.Winner = that.Winner()
}

// runLength returns how many opponent pieces lie between move and the nearest
// piece of player in dir, or 0 when the run is not closed by player.
func (that *Engine) runLength(move entity.Move, dir entity.Direction, player entity.Cell) int {
	opponent := player.Opponent()
	row, col := move.Row+dir.DRow, move.Col+dir.DCol
	count := 0

	for row >= 0 && row < entity.BoardSize && col >= 0 && col < entity.BoardSize {
		switch that.board[row][col] {
		case opponent:
			count++
		case player:
			return count
		default:
			return 0
		}

		row += dir.DRow
		col += dir.DCol
	}

	return 0
}

// LegalMoves lists the legal moves of player in row-major order.
func (that *Engine) LegalMoves(player entity.Cell) []entity.Move {
	moves := make([]entity.Move, 0, 16)

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			move := entity.Move{Row: row, Col: col}
			if that.IsLegal(move, player) {
				moves = append(moves, move)
			}
		}
	}

	return moves
}

func (that *Engine) HasLegalMove(player entity.Cell) bool {
	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			if that.IsLegal(entity.Move{Row: row, Col: col}, player) {
				return true
			}
		}
	}

	return false
}

// CountFlips reports how many pieces move would flip for player without
// touching the board.
func (that *Engine) CountFlips(move entity.Move, player entity.Cell) int {
	if !that.IsLegal(move, player) {
		return 0
	}

	total := 0
	for _, dir := range entity.Directions {
		total += that.runLength(move, dir, player)
	}

	return total
}

func (that *Engine) Score() entity.Scores {
	scores, _ := that.board.Count()

	return scores
}

// Winner compares the scores. It is only meaningful once the game is over.
func (that *Engine) Winner() entity.Winner {
	scores := that.Score()

	switch {
	case scores.Black > scores.White:
		return entity.WinnerBlack
	case scores.White > scores.Black:
		return entity.WinnerWhite
	default:
		return entity.WinnerTie
	}
}

func (that *Engine) CurrentPlayer() entity.Cell {
	return that.currentPlayer
}

func (that *Engine) IsGameOver() bool {
	return that.gameOver
}

func (that *Engine) Cell(move entity.Move) entity.Cell {
	if !move.InBounds() {
		return entity.Empty
	}

	return that.board.At(move)
}

// Board returns a copy of the board.
func (that *Engine) Board() entity.Board {
	return that.board
}
