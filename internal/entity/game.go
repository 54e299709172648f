package entity

import "fmt"

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeAI     Mode = "ai"
	ModeOnline Mode = "online"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeLocal, ModeAI, ModeOnline:
		return m, nil
	default:
		return "", fmt.Errorf("unknown game mode %q", s)
	}
}

// Difficulty selects the computer opponent policy: easy is random,
// normal is greedy and hard prefers corners and edges.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

type Winner string

const (
	WinnerNone  Winner = ""
	WinnerBlack Winner = "black"
	WinnerWhite Winner = "white"
	WinnerTie   Winner = "tie"
)

type SessionState string

const (
	StateIdle               SessionState = "idle"
	StateHumanTurn          SessionState = "human_turn"
	StateAIThinking         SessionState = "ai_thinking"
	StateAwaitingRemoteMove SessionState = "awaiting_remote_move"
	StateTimedOut           SessionState = "timed_out"
	StateGameOver           SessionState = "game_over"
)

// GameState is an immutable snapshot taken after every mutation.
type GameState struct {
	Board             Board        `json:"board"`
	CurrentPlayer     Cell         `json:"current_player"`
	Scores            Scores       `json:"scores"`
	GameOver          bool         `json:"game_over"`
	Winner            Winner       `json:"winner,omitempty"`
	Mode              Mode         `json:"mode"`
	OnlinePlayerColor Cell         `json:"online_player_color,omitempty"`
	OpponentName      string       `json:"opponent_name,omitempty"`
	State             SessionState `json:"state"`
	Difficulty        Difficulty   `json:"difficulty,omitempty"`
}
