package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
)

type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandMode
	CommandHost
	CommandJoin
	CommandReset
	CommandDifficulty
	CommandState
	CommandHelp
	CommandQuit
)

type Command struct {
	Kind       CommandKind
	Move       entity.Move
	Mode       entity.Mode
	Difficulty entity.Difficulty
	RoomID     string
}

const helpText = `commands:
  d3 | 2 3             place a disc (column letter + row, or zero-based row col)
  mode local|ai|online switch game mode
  difficulty easy|normal|hard
  host                 open an online room
  join <room>          join an online room
  reset                start a new game
  state                show the current state
  help                 show this text
  quit                 leave`

// ParseCommand turns one input line into a Command.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command: %w", apperror.ErrUnknownAction)
	}

	switch fields[0] {
	case "mode":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: mode local|ai|online: %w", apperror.ErrUnknownAction)
		}

		mode, err := entity.ParseMode(fields[1])
		if err != nil {
			return Command{}, err
		}

		return Command{Kind: CommandMode, Mode: mode}, nil
	case "difficulty":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: difficulty easy|normal|hard: %w", apperror.ErrUnknownAction)
		}

		difficulty, err := entity.ParseDifficulty(fields[1])
		if err != nil {
			return Command{}, err
		}

		return Command{Kind: CommandDifficulty, Difficulty: difficulty}, nil
	case "host":
		return Command{Kind: CommandHost}, nil
	case "join":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: join <room>: %w", apperror.ErrUnknownAction)
		}

		return Command{Kind: CommandJoin, RoomID: fields[1]}, nil
	case "reset", "new":
		return Command{Kind: CommandReset}, nil
	case "state":
		return Command{Kind: CommandState}, nil
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CommandQuit}, nil
	}

	move, err := parseMove(fields)
	if err != nil {
		return Command{}, err
	}

	return Command{Kind: CommandMove, Move: move}, nil
}

// parseMove accepts "d3" or "2 3".
func parseMove(fields []string) (entity.Move, error) {
	var move entity.Move

	switch len(fields) {
	case 1:
		token := fields[0]
		if len(token) != 2 || token[0] < 'a' || token[0] > 'z' {
			return move, fmt.Errorf("unknown command %q: %w", token, apperror.ErrUnknownAction)
		}

		row, err := strconv.Atoi(token[1:])
		if err != nil {
			return move, fmt.Errorf("unknown command %q: %w", token, apperror.ErrUnknownAction)
		}

		move = entity.Move{Row: row - 1, Col: int(token[0] - 'a')}
	case 2:
		row, rowErr := strconv.Atoi(fields[0])
		col, colErr := strconv.Atoi(fields[1])
		if rowErr != nil || colErr != nil {
			return move, fmt.Errorf("unknown command %q: %w", strings.Join(fields, " "), apperror.ErrUnknownAction)
		}

		move = entity.Move{Row: row, Col: col}
	default:
		return move, fmt.Errorf("unknown command %q: %w", strings.Join(fields, " "), apperror.ErrUnknownAction)
	}

	if !move.InBounds() {
		return move, fmt.Errorf("%s is off the board: %w", strings.Join(fields, " "), apperror.ErrInvalidCell)
	}

	return move, nil
}
