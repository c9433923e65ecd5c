package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"grendel/engine"
	"grendel/rules"
)

func main() {
	iterations := pflag.Int("iterations", 20000, "MCTS iterations per search")
	repeat := pflag.Int("repeat", 1, "number of searches to run")
	fenFlag := pflag.String("fen", rules.StartFEN, "FEN to search")
	seed := pflag.Uint64("seed", 1, "rollout seed, 0 for a fresh seed per search")
	workers := pflag.Int("workers", 1, "root-parallel search trees")
	maxPlies := pflag.Int("max-rollout-plies", 0, "rollout length cap, 0 for none")
	cpuProfile := pflag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := pflag.String("memprofile", "", "write memory profile (heap) to file")
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *iterations <= 0 {
		log.Fatal().Int("iterations", *iterations).Msg("iterations must be positive")
	}
	pos, err := rules.ParseFEN(*fenFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing FEN")
	}

	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	// The iteration cap ends each search; the budget only guards against a
	// runaway run.
	searcher := engine.NewSearcher(
		engine.WithTimeBudget(time.Hour),
		engine.WithIterations(*iterations),
		engine.WithSeed(*seed),
		engine.WithWorkers(*workers),
		engine.WithMaxRolloutPlies(*maxPlies),
	)

	fmt.Printf("searchbench: fen=%q iterations=%d repeat=%d workers=%d\n", *fenFlag, *iterations, *repeat, *workers)

	startAll := time.Now()
	var total int
	for i := 0; i < *repeat; i++ {
		res := searcher.Search(context.Background(), pos, engine.Limits{})
		total += res.Iterations
		fmt.Printf("iteration %d: bestmove %s  score=%.3f  iterations=%d  time=%v\n",
			i+1, res.BestMove(), res.Score(), res.Iterations, res.Elapsed)
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v  (%.0f iterations/s)\n", totalElapsed, float64(total)/totalElapsed.Seconds())

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
