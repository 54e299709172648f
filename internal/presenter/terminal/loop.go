package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rocketscienceinc/othello/internal/entity"
)

type sessionController interface {
	SubmitMove(row, col int) error
	ChangeMode(mode entity.Mode)
	ResetSession()
	SetDifficulty(difficulty entity.Difficulty)
	HostGame(ctx context.Context) (string, error)
	JoinGame(ctx context.Context, roomID string) error
	Snapshot() entity.GameState
}

// Loop reads commands from in until quit, EOF or ctx is done.
func Loop(ctx context.Context, logger *slog.Logger, in io.Reader, session sessionController, view *Renderer) error {
	log := logger.With("method", "Loop")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	view.Println("type help for commands")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			return nil
		case line := <-lines:
			cmd, err := ParseCommand(line)
			if err != nil {
				view.Errorln(err)
				continue
			}

			if cmd.Kind == CommandQuit {
				return nil
			}

			if err = execute(ctx, cmd, session, view); err != nil {
				log.Debug("command rejected", "line", line, "error", err)
				view.Errorln(err)
			}
		}
	}
}

func execute(ctx context.Context, cmd Command, session sessionController, view *Renderer) error {
	switch cmd.Kind {
	case CommandMove:
		return session.SubmitMove(cmd.Move.Row, cmd.Move.Col)
	case CommandMode:
		session.ChangeMode(cmd.Mode)
	case CommandDifficulty:
		session.SetDifficulty(cmd.Difficulty)
	case CommandReset:
		session.ResetSession()
	case CommandHost:
		roomID, err := session.HostGame(ctx)
		if err != nil {
			return err
		}

		view.Println("room code:", roomID)
	case CommandJoin:
		return session.JoinGame(ctx, cmd.RoomID)
	case CommandState:
		view.OnSnapshot(session.Snapshot())
	case CommandHelp:
		view.Println(helpText)
	}

	return nil
}
