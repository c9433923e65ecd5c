package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"grendel/config"
	"grendel/engine"
	"grendel/uci"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.LogLevel()).
		With().Timestamp().Logger()
	log.Debug().Interface("config", cfg.AllSettings()).Msg("starting")

	diag, closeDiag, err := uci.OpenDiagnostics(cfg.DiagnosticLog())
	if err != nil {
		log.Warn().Err(err).Msg("diagnostic log disabled")
	}
	defer closeDiag()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := uci.NewSession(os.Stdout, newSearcher(cfg),
		uci.WithIdentity(cfg.EngineName(), cfg.EngineAuthor()),
		uci.WithInfo(cfg.ReportInfo()),
		uci.WithTimeManager(engine.TimeManager{Fixed: cfg.SearchTime(), UseClock: cfg.UseClock()}),
		uci.WithDiagnostics(diag),
	)
	uciLoop(ctx, session)
}

func newSearcher(cfg *config.Config) *engine.Searcher {
	return engine.NewSearcher(
		engine.WithTimeBudget(cfg.SearchTime()),
		engine.WithIterations(cfg.Iterations()),
		engine.WithSeed(cfg.Seed()),
		engine.WithWorkers(cfg.Workers()),
		engine.WithMaxRolloutPlies(cfg.MaxRolloutPlies()),
		engine.WithExploration(cfg.Exploration()),
		engine.WithSideRelativeSelection(cfg.SideRelativeSelection()),
	)
}

// uciLoop serves stdin until quit, end of input or a signal. A blocked read
// on stdin does not keep a signalled process alive.
func uciLoop(ctx context.Context, session *uci.Session) {
	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx, os.Stdin)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("reading stdin")
		}
	case <-ctx.Done():
		log.Info().Msg("interrupted")
	}
}
