package rules

import "math/bits"

// Status is the game state of a position.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	SeventyFiveMoves
	FivefoldRepetition
)

const (
	seventyFiveMoveLimit = 150 // halfmoves
	fivefold             = 5
	darkSquares          = uint64(0xaa55aa55aa55aa55)
)

var statusNames = [...]string{"ongoing", "checkmate", "stalemate", "insufficient material", "seventy-five moves", "fivefold repetition"}

func (s Status) String() string { return statusNames[s] }

// GameOver reports whether s ends the game.
func (s Status) GameOver() bool { return s != Ongoing }

// Status evaluates the game state, generating the legal moves itself.
func (p *Position) Status() Status {
	return p.StatusFor(p.LegalMoves())
}

// StatusFor evaluates the game state given the legal moves of p, letting
// callers that already generated them avoid a second generation.
// Checkmate takes precedence over every draw rule.
func (p *Position) StatusFor(moves []Move) Status {
	if len(moves) == 0 {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if p.insufficientMaterial() {
		return InsufficientMaterial
	}
	if p.HalfmoveClock() >= seventyFiveMoveLimit {
		return SeventyFiveMoves
	}
	if p.repetitions() >= fivefold {
		return FivefoldRepetition
	}
	return Ongoing
}

func (p *Position) IsGameOver() bool { return p.Status().GameOver() }

func (p *Position) IsCheckmate() bool { return p.Status() == Checkmate }

// repetitions counts how often the current position occurred since the last
// irreversible move, the current occurrence included.
func (p *Position) repetitions() int {
	last := len(p.history) - 1
	if last < 0 {
		return 0
	}
	start := last - p.HalfmoveClock()
	if start < 0 {
		start = 0
	}
	curr := p.history[last]
	count := 1
	for i := last - 2; i >= start; i -= 2 {
		if p.history[i] == curr {
			count++
		}
	}
	return count
}

// insufficientMaterial reports whether neither side can possibly deliver mate.
func (p *Position) insufficientMaterial() bool {
	return p.cannotMate(White) && p.cannotMate(Black)
}

func (p *Position) cannotMate(c Color) bool {
	own, opp := &p.board.White, &p.board.Black
	if c == Black {
		own, opp = opp, own
	}
	if own.Pawns|own.Rooks|own.Queens != 0 {
		return false
	}
	if own.Knights != 0 {
		// A lone knight mates only with help from enemy minors, rooks or pawns.
		return bits.OnesCount64(own.All) <= 2 && opp.All&^opp.Kings&^opp.Queens == 0
	}
	if own.Bishops != 0 {
		bishops := p.board.White.Bishops | p.board.Black.Bishops
		sameColor := bishops&darkSquares == 0 || bishops&^darkSquares == 0
		return sameColor && p.board.White.Pawns|p.board.Black.Pawns == 0 &&
			p.board.White.Knights|p.board.Black.Knights == 0
	}
	return true
}
