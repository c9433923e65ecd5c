package rules_test

import (
	"testing"

	"grendel/rules"
)

func mustParse(t *testing.T, fen string) *rules.Position {
	t.Helper()
	p, err := rules.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) failed: %v", fen, err)
	}
	return p
}

func play(t *testing.T, p *rules.Position, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := p.ParseMove(s)
		if err != nil {
			t.Fatalf("ParseMove(%q) failed: %v", s, err)
		}
		p.Apply(m)
	}
}

func TestCheckmate_FoolsMate(t *testing.T) {
	// Fool's mate: Black just played Qh4#, White to move and is checkmated
	p := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if !p.InCheck() {
		t.Fatalf("expected White to be in check")
	}
	if len(p.LegalMoves()) != 0 {
		t.Fatalf("expected no legal moves for White in mate")
	}
	if got := p.Status(); got != rules.Checkmate {
		t.Fatalf("status: got %v want checkmate", got)
	}
	if p.SideToMove() != rules.White {
		t.Fatalf("expected White to move")
	}
}

func TestStalemate_Basic(t *testing.T) {
	p := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if p.InCheck() {
		t.Fatalf("expected Black not in check")
	}
	if got := p.Status(); got != rules.Stalemate {
		t.Fatalf("status: got %v want stalemate", got)
	}
	if !p.IsGameOver() || p.IsCheckmate() {
		t.Fatalf("stalemate must be game over but not checkmate")
	}
}

// Mate-in-one: make the mating move and verify the updated board detects checkmate
func TestMateInOne_MakeAndDetect(t *testing.T) {
	p := mustParse(t, "7k/6pp/6Q1/8/8/2B5/8/6K1 w - - 0 1")
	m, err := p.ParseMove("g6g7")
	if err != nil {
		t.Fatalf("expected Qxg7 to be legal: %v", err)
	}
	undo := p.Apply(m)
	if !p.IsCheckmate() {
		t.Fatalf("expected checkmate after Qxg7#")
	}
	if p.SideToMove() != rules.Black {
		t.Fatalf("expected Black to move after the mate")
	}
	undo()
	if p.IsGameOver() {
		t.Fatalf("position before the mate should be ongoing")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want rules.Status
	}{
		{"bare kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", rules.InsufficientMaterial},
		{"king and knight", "8/8/8/4k3/8/8/8/4KN2 w - - 0 1", rules.InsufficientMaterial},
		{"same colored bishops", "5b2/8/8/4k3/8/8/8/2B1K3 w - - 0 1", rules.InsufficientMaterial},
		{"opposite colored bishops", "4kb2/8/8/8/8/8/8/3BK3 w - - 0 1", rules.Ongoing},
		{"two knights", "8/8/8/4k3/8/8/8/3NKN2 w - - 0 1", rules.Ongoing},
		{"rook", "8/8/8/4k3/8/8/8/4K2R w - - 0 1", rules.Ongoing},
		{"pawn", "8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", rules.Ongoing},
	}
	for _, c := range cases {
		p := mustParse(t, c.fen)
		if got := p.Status(); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestSeventyFiveMoveRule(t *testing.T) {
	p := mustParse(t, "4k3/8/8/8/8/8/8/R3K3 w - - 149 80")
	if p.IsGameOver() {
		t.Fatalf("149 halfmoves should not end the game")
	}
	play(t, p, "a1a2")
	if got := p.Status(); got != rules.SeventyFiveMoves {
		t.Fatalf("status: got %v want seventy-five moves (halfmove clock %d)", got, p.HalfmoveClock())
	}
}

func TestSeventyFiveMoveRule_MateTakesPrecedence(t *testing.T) {
	p := mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 149 80")
	play(t, p, "a1a8")
	if got := p.Status(); got != rules.Checkmate {
		t.Fatalf("status: got %v want checkmate", got)
	}
}

func TestFivefoldRepetition_KnightShuffle(t *testing.T) {
	p := rules.NewPosition()
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i := 0; i < 3; i++ {
		play(t, p, cycle...)
	}
	if p.IsGameOver() {
		t.Fatalf("fourth occurrence must not end the game")
	}
	play(t, p, cycle...)
	if got := p.Status(); got != rules.FivefoldRepetition {
		t.Fatalf("status: got %v want fivefold repetition", got)
	}
}

func TestRepetitionReset_ByPawnMove(t *testing.T) {
	p := rules.NewPosition()
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i := 0; i < 3; i++ {
		play(t, p, cycle...)
	}
	play(t, p, "e2e4", "e7e5")
	for i := 0; i < 3; i++ {
		play(t, p, cycle...)
	}
	if p.IsGameOver() {
		t.Fatalf("repetitions before a pawn move must not count")
	}
}

func TestFivefoldRepetition_AfterDoublePush(t *testing.T) {
	// e2e4 leaves an en passant square no black pawn can use, so the
	// position right after it repeats with every knight cycle.
	p := rules.NewPosition()
	play(t, p, "e2e4")
	cycle := []string{"g8f6", "g1f3", "f6g8", "f3g1"}
	for i := 0; i < 3; i++ {
		play(t, p, cycle...)
	}
	if p.IsGameOver() {
		t.Fatalf("fourth occurrence must not end the game")
	}
	play(t, p, cycle...)
	if got := p.Status(); got != rules.FivefoldRepetition {
		t.Fatalf("status after %s: got %v want fivefold repetition", p.FEN(), got)
	}
}

func TestFivefoldRepetition_UsableEnPassantDiffers(t *testing.T) {
	// After d7d5 white may capture e5d6, so that position differs from its
	// later repeats where the right is gone.
	p := mustParse(t, "rnbqkbnr/pppppppp/8/4P3/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2")
	play(t, p, "d7d5")
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i := 0; i < 4; i++ {
		play(t, p, cycle...)
	}
	if p.IsGameOver() {
		t.Fatalf("position with a usable en passant capture must not count as a repeat")
	}
	play(t, p, cycle...)
	if got := p.Status(); got != rules.FivefoldRepetition {
		t.Fatalf("status: got %v want fivefold repetition", got)
	}
}

func TestApplyUndoRestoresPosition(t *testing.T) {
	p := rules.NewPosition()
	fen, hash := p.FEN(), p.Hash()
	var undos []func()
	for _, s := range []string{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3"} {
		m, err := p.ParseMove(s)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		undos = append(undos, p.Apply(m))
	}
	for i := len(undos) - 1; i >= 0; i-- {
		undos[i]()
	}
	if p.FEN() != fen || p.Hash() != hash {
		t.Fatalf("undo did not restore position: got %s", p.FEN())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := rules.NewPosition()
	c := p.Clone()
	play(t, c, "e2e4")
	if p.FEN() == c.FEN() {
		t.Fatalf("clone shares state with original")
	}
	if len(p.LegalMoves()) != 20 {
		t.Fatalf("original changed: %d legal moves", len(p.LegalMoves()))
	}
}

func TestPhase(t *testing.T) {
	if got := rules.NewPosition().Phase(); got != 24 {
		t.Fatalf("start phase: got %d want 24", got)
	}
	if got := mustParse(t, "8/8/8/4k3/8/8/8/4K3 w - - 0 1").Phase(); got != 0 {
		t.Fatalf("bare kings phase: got %d want 0", got)
	}
}
