// Package main provides the game server binary: a WebSocket endpoint that
// matches players from a queue and coordinates rock-paper-scissors matches.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roshambo/internal/config"
	"github.com/cory-johannsen/roshambo/internal/frontend/ws"
	"github.com/cory-johannsen/roshambo/internal/game/lobby"
	"github.com/cory-johannsen/roshambo/internal/game/match"
	"github.com/cory-johannsen/roshambo/internal/game/nickname"
	"github.com/cory-johannsen/roshambo/internal/game/room"
	"github.com/cory-johannsen/roshambo/internal/gameserver"
	"github.com/cory-johannsen/roshambo/internal/observability"
	"github.com/cory-johannsen/roshambo/internal/protocol"
	"github.com/cory-johannsen/roshambo/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("win_threshold", cfg.Game.WinThreshold),
	)

	// Nickname generator, optionally backed by a word list file.
	seed := time.Now().UnixNano()
	var names *nickname.Generator
	if cfg.Nicknames.WordsFile != "" {
		names, err = nickname.NewGeneratorFromFile(cfg.Nicknames.WordsFile, seed)
		if err != nil {
			logger.Fatal("loading nickname word lists",
				zap.String("path", cfg.Nicknames.WordsFile),
				zap.Error(err),
			)
		}
		logger.Info("nickname word lists loaded",
			zap.String("path", cfg.Nicknames.WordsFile),
		)
	} else {
		names = nickname.NewGenerator(seed)
	}

	queue := lobby.NewQueue()
	rooms := room.NewRegistry()

	matchCfg := match.Config{
		WinThreshold:      cfg.Game.WinThreshold,
		FirstRoundDelay:   cfg.Game.FirstRoundDelay,
		NextRoundDelay:    cfg.Game.NextRoundDelay,
		MatchSummaryDelay: cfg.Game.MatchSummaryDelay,
		RematchRoundDelay: cfg.Game.RematchRoundDelay,
	}

	// The acceptor is both the transport and the coordinator's publisher,
	// so wire them in two steps.
	var acceptor *ws.Acceptor
	coordinator := match.NewCoordinator(matchCfg, queue, rooms, names, match.PublisherFunc(func(connID string, ev protocol.Event) {
		acceptor.Publish(connID, ev)
	}), logger)
	dispatcher := gameserver.NewDispatcher(coordinator, logger)
	acceptor = ws.NewAcceptor(cfg.Server, cfg.Websocket, dispatcher, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
