// Package rules adapts the dragontoothmg move generator to the queries the
// search and the protocol layer need: FEN import/export with validation, UCI
// move notation, legal moves, apply/undo and game termination.
package rules

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Color is the side to move.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Move is a dragontoothmg move; String() yields UCI notation (e2e4, e7e8q).
type Move = dragontoothmg.Move

// Position is a board plus the hashes of every position reached in the game
// line so far (current position last), used for repetition detection.
type Position struct {
	board   dragontoothmg.Board
	history []uint64
}

// NewPosition returns the standard initial position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Clone returns an independent copy. Undo closures obtained from the original
// do not affect the copy.
func (p *Position) Clone() *Position {
	c := &Position{board: p.board}
	c.history = make([]uint64, len(p.history), len(p.history)+64)
	copy(c.history, p.history)
	return c
}

// LegalMoves enumerates the legal moves in generator order.
func (p *Position) LegalMoves() []Move {
	return p.board.GenerateLegalMoves()
}

// Apply plays a legal move and returns the closure that takes it back.
// Undo closures must be called in reverse order of application.
func (p *Position) Apply(m Move) func() {
	ep, double := p.doublePushTarget(m)
	unapply := p.board.Apply(m)
	if !double {
		ep = 0
	}
	p.history = append(p.history, p.repetitionKey(ep))
	return func() {
		unapply()
		p.history = p.history[:len(p.history)-1]
	}
}

func (p *Position) SideToMove() Color {
	if p.board.Wtomove {
		return White
	}
	return Black
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.board.OurKingInCheck() }

func (p *Position) Hash() uint64 { return p.board.Hash() }

func (p *Position) HalfmoveClock() int { return int(p.board.Halfmoveclock) }

func (p *Position) FullmoveNumber() int { return int(p.board.Fullmoveno) }

// FEN serialises the position.
func (p *Position) FEN() string { return p.board.ToFen() }

// Phase returns the remaining non-pawn material on a 0 (bare kings) to 24
// (opening) scale: minors count 1, rooks 2, queens 4.
func (p *Position) Phase() int {
	w, b := &p.board.White, &p.board.Black
	phase := bits.OnesCount64(w.Knights|b.Knights) +
		bits.OnesCount64(w.Bishops|b.Bishops) +
		2*bits.OnesCount64(w.Rooks|b.Rooks) +
		4*bits.OnesCount64(w.Queens|b.Queens)
	if phase > 24 {
		phase = 24
	}
	return phase
}

// doublePushTarget returns the square m skips over when it is a pawn double
// push by the side to move.
func (p *Position) doublePushTarget(m Move) (uint8, bool) {
	from, to := m.From(), m.To()
	pawns := p.board.White.Pawns
	if !p.board.Wtomove {
		pawns = p.board.Black.Pawns
	}
	if pawns&(uint64(1)<<from) == 0 || (to != from+16 && from != to+16) {
		return 0, false
	}
	return (from + to) / 2, true
}

// repetitionKey is the board hash with the en passant square ep (0 for none)
// removed unless an en passant capture onto it is legal, so that positions
// differing only in an unusable en passant right repeat.
func (p *Position) repetitionKey(ep uint8) uint64 {
	key := p.board.Hash()
	if ep != 0 && !p.canCaptureEnPassant(ep) {
		key ^= uint64(ep)
	}
	return key
}

func (p *Position) canCaptureEnPassant(ep uint8) bool {
	us, victim := &p.board.White, ep-8
	if !p.board.Wtomove {
		us, victim = &p.board.Black, ep+8
	}
	var adjacent uint64
	if victim%8 > 0 {
		adjacent |= uint64(1) << (victim - 1)
	}
	if victim%8 < 7 {
		adjacent |= uint64(1) << (victim + 1)
	}
	if us.Pawns&adjacent == 0 {
		return false
	}
	for _, mv := range p.LegalMoves() {
		if mv.To() == ep && us.Pawns&(uint64(1)<<mv.From()) != 0 {
			return true
		}
	}
	return false
}
