package service

import (
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/othello/internal/entity"
)

// BoardView is the read-only part of the engine the bot needs.
type BoardView interface {
	CurrentPlayer() entity.Cell
	LegalMoves(player entity.Cell) []entity.Move
	CountFlips(move entity.Move, player entity.Cell) int
	Cell(move entity.Move) entity.Cell
}

type BotService struct {
	mu  sync.Mutex
	rnd *rand.Rand

	excludeCornerAdjacent bool
}

// NewBotService creates the computer opponent. With excludeCornerAdjacent the
// hard bot ignores edge cells next to an empty corner when picking an edge.
func NewBotService(source rand.Source, excludeCornerAdjacent bool) *BotService {
	return &BotService{
		rnd:                   rand.New(source), //nolint: gosec // game moves, not secrets
		excludeCornerAdjacent: excludeCornerAdjacent,
	}
}

// SelectMove picks a move for the side to move. It returns false when that
// side has no legal move; the caller handles the pass.
func (that *BotService) SelectMove(view BoardView, difficulty entity.Difficulty) (entity.Move, bool) {
	player := view.CurrentPlayer()
	candidates := view.LegalMoves(player)
	if len(candidates) == 0 {
		return entity.Move{}, false
	}

	switch difficulty {
	case entity.DifficultyEasy:
		return that.randomMove(candidates), true
	case entity.DifficultyHard:
		return that.strategicMove(view, player, candidates), true
	default:
		return greedyMove(view, player, candidates), true
	}
}

func (that *BotService) randomMove(candidates []entity.Move) entity.Move {
	that.mu.Lock()
	defer that.mu.Unlock()

	return candidates[that.rnd.Intn(len(candidates))]
}

// greedyMove maximizes immediate flips; the earliest candidate wins a tie.
func greedyMove(view BoardView, player entity.Cell, candidates []entity.Move) entity.Move {
	best := candidates[0]
	bestFlips := -1

	for _, move := range candidates {
		if flips := view.CountFlips(move, player); flips > bestFlips {
			best, bestFlips = move, flips
		}
	}

	return best
}

func (that *BotService) strategicMove(view BoardView, player entity.Cell, candidates []entity.Move) entity.Move {
	for _, move := range candidates {
		if move.IsCorner() {
			return move
		}
	}

	edges := make([]entity.Move, 0, len(candidates))
	for _, move := range candidates {
		if !move.IsEdge() {
			continue
		}
		if that.excludeCornerAdjacent && nextToEmptyCorner(view, move) {
			continue
		}
		edges = append(edges, move)
	}

	if len(edges) > 0 {
		return greedyMove(view, player, edges)
	}

	return greedyMove(view, player, candidates)
}

func nextToEmptyCorner(view BoardView, move entity.Move) bool {
	for _, corner := range entity.Corners {
		if view.Cell(corner) != entity.Empty {
			continue
		}

		if abs(corner.Row-move.Row) <= 1 && abs(corner.Col-move.Col) <= 1 {
			return true
		}
	}

	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
