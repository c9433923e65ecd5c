package engine

import (
	"time"

	"grendel/rules"
)

// Clock holds the time controls of a `go` command, in milliseconds. Zero means
// the field was not given.
type Clock struct {
	WTime, BTime int
	WInc, BInc   int
	MovesToGo    int
	MoveTime     int
}

// TimeManager turns the clock of a `go` command into a search budget.
type TimeManager struct {
	Fixed    time.Duration // used when no movetime is given and the clock is ignored
	UseClock bool
}

// Budget returns the time to spend on pos. An explicit movetime always wins.
func (tm TimeManager) Budget(clock Clock, pos *rules.Position) time.Duration {
	if clock.MoveTime > 0 {
		return time.Duration(clock.MoveTime) * time.Millisecond
	}
	rem, inc := clock.WTime, clock.WInc
	if pos.SideToMove() == rules.Black {
		rem, inc = clock.BTime, clock.BInc
	}
	if !tm.UseClock || rem <= 0 {
		return tm.fixed()
	}

	movesLeft := clock.MovesToGo
	if movesLeft <= 0 {
		movesLeft = estimateMovesRemaining(pos.Phase()) // 20..45
	}
	return time.Duration(allocate(rem, inc, movesLeft)) * time.Millisecond
}

func (tm TimeManager) fixed() time.Duration {
	if tm.Fixed <= 0 {
		return DefaultTimeBudget
	}
	return tm.Fixed
}

func allocate(rem, inc, movesLeft int) int {
	const overheadMs = 30      // reserve for UCI/IO jitter
	const minMoveMs = 5        // never less than this
	const maxFrac = 0.7        // never spend >70% of remaining time
	const panicThreshMs = 1000 // below this, live off the increment
	const panicFrac = 0.90

	var moveTime int
	if inc > 0 {
		if rem < panicThreshMs {
			moveTime = int(float64(inc) * panicFrac)
		} else {
			moveTime = rem/movesLeft + inc
		}
	} else {
		moveTime = rem / movesLeft
	}

	if moveTime > int(float64(rem)*maxFrac) {
		moveTime = int(float64(rem) * maxFrac)
	}
	if moveTime > rem-overheadMs {
		moveTime = rem - overheadMs
	}
	if moveTime < minMoveMs {
		moveTime = minMoveMs
	}
	return moveTime
}

func estimateMovesRemaining(phase int) int {
	// Linearly interpolate between 20 (endgame) and 45 (opening/midgame)
	return (phase*25)/24 + 20
}
