package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/othello"
	"github.com/rocketscienceinc/othello/internal/usecase"
)

type stateResponse struct {
	Game    entity.GameState    `json:"game"`
	Network usecase.NetworkInfo `json:"network"`
	Legal   []entity.Move       `json:"legal_moves"`
}

// stateHandler dumps the running session for debugging.
func (that *Server) stateHandler(w http.ResponseWriter, _ *http.Request) {
	log := that.logger.With("method", "stateHandler")

	game := that.session.Snapshot()

	resp := stateResponse{
		Game:    game,
		Network: that.session.Info(),
		Legal:   legalMoves(game),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to encode state", "error", err)
	}
}

func legalMoves(game entity.GameState) []entity.Move {
	if game.GameOver {
		return []entity.Move{}
	}

	moves := othello.NewEngineFromBoard(game.Board, game.CurrentPlayer).LegalMoves(game.CurrentPlayer)
	if moves == nil {
		return []entity.Move{}
	}

	return moves
}
