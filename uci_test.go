package main

import (
	"context"
	"io"
	"testing"

	"grendel/config"
	"grendel/uci"
)

func BenchmarkMain(b *testing.B) {
	cfg, err := config.Load([]string{"--iterations=2000", "--seed=1", "--diagnostic-log="})
	if err != nil {
		b.Fatal(err)
	}
	session := uci.NewSession(io.Discard, newSearcher(cfg))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		session.Handle(ctx, "position startpos moves e2e4 e7e5 g1f3 b8c6")
		session.Handle(ctx, "go")
	}
}

func TestNewSearcherFromConfig(t *testing.T) {
	cfg, err := config.Load([]string{"--iterations=30", "--workers=2", "--seed=5"})
	if err != nil {
		t.Fatal(err)
	}
	session := uci.NewSession(io.Discard, newSearcher(cfg))
	session.Handle(context.Background(), "position startpos")
	if !session.Handle(context.Background(), "go") {
		t.Fatal("go ended the session")
	}
}
