package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/othello/internal/config"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/internal/presenter/terminal"
	"github.com/rocketscienceinc/othello/internal/repository"
	"github.com/rocketscienceinc/othello/internal/repository/storage"
	"github.com/rocketscienceinc/othello/internal/service"
	"github.com/rocketscienceinc/othello/internal/usecase"
	"github.com/rocketscienceinc/othello/transport/rest"
	"github.com/rocketscienceinc/othello/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionConf, err := newSessionConfig(conf)
	if err != nil {
		return err
	}

	// Local and computer games do not need redis; online play is disabled
	// when it cannot be reached.
	var network usecase.Network

	wsNetwork, closeNetwork, err := openNetwork(ctx, logger, conf)
	if err != nil {
		log.Warn("online play disabled", "error", err)
	} else {
		defer closeNetwork()
		network = wsNetwork
	}

	bot := service.NewBotService(rand.NewSource(time.Now().UnixNano()), conf.Game.StrategicExcludeCornerAdjacent)

	session := usecase.NewSession(logger, sessionConf, bot, network)
	defer session.Close()

	view := terminal.NewRenderer(os.Stdout)
	session.Subscribe(view)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, session).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	if wsNetwork != nil {
		go func() {
			log.Info("Starting WebSocket server", "port", conf.SocketPort)
			if wsErr := wsNetwork.Start(ctx, conf.SocketPort); wsErr != nil {
				log.Error("WebSocket server error", "error", wsErr)
				wsErrCh <- wsErr
			}
		}()
	}

	// run terminal input
	inputDone := make(chan error, 1)
	go func() {
		inputDone <- terminal.Loop(ctx, logger, os.Stdin, session, view)
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case err = <-inputDone:
		log.Info("Input closed, shutting down")
		return err
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// openNetwork connects to the room registry and builds the websocket network.
// The returned func closes the registry connection.
func openNetwork(ctx context.Context, logger *slog.Logger, conf *config.Config) (*websocket.Network, func(), error) {
	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			logger.Error("could not close redis storage", "error", closeErr)
		}
	}

	roomRepo := repository.NewRoomRepository(redisStorage.Connection)

	return websocket.New(logger, roomRepo, conf.GetSocketAddr(), conf.Game.RoomTTL), closeStorage, nil
}

func newSessionConfig(conf *config.Config) (usecase.SessionConfig, error) {
	mode, err := entity.ParseMode(conf.Game.Mode)
	if err != nil {
		return usecase.SessionConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	difficulty, err := entity.ParseDifficulty(conf.Game.AIDifficulty)
	if err != nil {
		return usecase.SessionConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	return usecase.SessionConfig{
		PlayerName:        conf.Game.PlayerName,
		Mode:              mode,
		Difficulty:        difficulty,
		AIDelay:           conf.Game.AIDelay,
		TurnTimeLimit:     conf.Game.TurnTimeLimit,
		TurnTick:          conf.Game.TurnTick,
		ConnectTimeout:    conf.Game.ConnectTimeout,
		OpenTimeout:       conf.Game.OpenTimeout,
		SendTimeout:       conf.Game.SendTimeout,
		VerifyRemoteMoves: conf.Game.VerifyRemoteMoves,
		FallbackToLocal:   conf.Game.FallbackToLocalOnDisconnect,
	}, nil
}
