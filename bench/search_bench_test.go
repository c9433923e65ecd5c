package bench

import (
	"context"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"grendel/engine"
	"grendel/rules"
)

func benchSearch(b *testing.B, fen string, iterations, workers int) {
	pos, err := rules.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	searcher := engine.NewSearcher(
		engine.WithTimeBudget(time.Minute),
		engine.WithIterations(iterations),
		engine.WithSeed(1),
		engine.WithWorkers(workers),
	)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = searcher.Search(context.Background(), pos, engine.Limits{})
	}
}

func BenchmarkSearch_Initial_1000(b *testing.B) {
	benchSearch(b, rules.StartFEN, 1000, 1)
}

func BenchmarkSearch_Kiwipete_1000(b *testing.B) {
	benchSearch(b, kiwipete, 1000, 1)
}

func BenchmarkSearch_Initial_4x1000(b *testing.B) {
	benchSearch(b, rules.StartFEN, 4000, 4)
}

func BenchmarkRollout_Initial(b *testing.B) {
	pos := rules.NewPosition()
	rng := rand.New(rand.NewSource(1))
	var undo []func()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Simulate(pos, rng, 0, &undo)
		for j := len(undo) - 1; j >= 0; j-- {
			undo[j]()
		}
		undo = undo[:0]
	}
}
