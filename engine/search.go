package engine

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"grendel/rules"
)

const DefaultTimeBudget = 5 * time.Second

type Option func(s *Searcher)

// Searcher runs Monte Carlo Tree Search with UCT selection and uniformly
// random rollouts. A fresh tree is built for every search.
type Searcher struct {
	budget          time.Duration
	iterations      int
	seed            uint64
	workers         int
	maxRolloutPlies int
	cSquared        float64
	sideRelative    bool
}

func WithTimeBudget(budget time.Duration) Option {
	return func(s *Searcher) {
		if budget > 0 {
			s.budget = budget
		}
	}
}

// WithIterations caps the number of iterations per search; 0 means the time
// budget alone decides.
func WithIterations(iterations int) Option {
	return func(s *Searcher) {
		if iterations > 0 {
			s.iterations = iterations
		}
	}
}

// WithSeed fixes the rollout random source. Seed 0 draws a fresh seed per search.
func WithSeed(seed uint64) Option {
	return func(s *Searcher) {
		s.seed = seed
	}
}

// WithWorkers searches n independent trees concurrently and merges their root
// statistics before choosing the move.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxRolloutPlies scores a rollout as a draw once it reaches the given
// length; 0 plays every rollout to the end of the game.
func WithMaxRolloutPlies(plies int) Option {
	return func(s *Searcher) {
		if plies >= 0 {
			s.maxRolloutPlies = plies
		}
	}
}

func WithExploration(cSquared float64) Option {
	return func(s *Searcher) {
		if cSquared > 0 {
			s.cSquared = cSquared
		}
	}
}

// WithSideRelativeSelection makes selection at Black-to-move nodes prefer
// children with low (Black-favouring) scores. Scores are still accumulated
// from White's point of view.
func WithSideRelativeSelection(enabled bool) Option {
	return func(s *Searcher) {
		s.sideRelative = enabled
	}
}

func NewSearcher(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		budget:   DefaultTimeBudget,
		workers:  1,
		cSquared: DefaultCSquared,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Limits overrides the searcher's configured budget and iteration cap for a
// single search. Zero fields keep the configured values.
type Limits struct {
	Budget     time.Duration
	Iterations int
}

// ChildStat holds the statistics of one root move.
type ChildStat struct {
	Move     rules.Move
	Visits   int
	ScoreSum float64
}

// Result of a search. Found is false when the root position is already over.
type Result struct {
	Move       rules.Move
	Found      bool
	Iterations int
	Elapsed    time.Duration
	Children   []ChildStat
}

// BestMove returns the chosen move in UCI notation, or "(none)".
func (r Result) BestMove() string {
	if !r.Found {
		return "(none)"
	}
	return r.Move.String()
}

// Score is the average White-relative outcome of the chosen move, in [-1, 1].
func (r Result) Score() float64 {
	for _, c := range r.Children {
		if c.Move == r.Move && c.Visits > 0 {
			return c.ScoreSum / float64(c.Visits)
		}
	}
	return 0
}

// Search picks a move for pos. pos is not modified; the search works on a
// private copy. The deadline is checked between iterations only, so the
// iteration in flight when it passes still completes. At least one iteration
// runs for a position that is not over.
func (s *Searcher) Search(ctx context.Context, pos *rules.Position, limits Limits) Result {
	start := time.Now()
	budget, iterations := s.budget, s.iterations
	if limits.Budget > 0 {
		budget = limits.Budget
	}
	if limits.Iterations > 0 {
		iterations = limits.Iterations
	}

	if status := pos.Status(); status.GameOver() {
		log.Debug().Stringer("status", status).Msg("search on finished position")
		return Result{Elapsed: time.Since(start)}
	}

	seed := s.seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64) + 1
	}
	deadline := start.Add(budget)

	var res Result
	if s.workers <= 1 {
		w := s.newWorker(pos, seed)
		if err := w.run(ctx, deadline, iterations); err != nil {
			log.Debug().Err(err).Msg("search interrupted")
		}
		res = resultOf(w.tree)
	} else {
		res = s.searchParallel(ctx, pos, seed, deadline, iterations)
	}
	res.Elapsed = time.Since(start)

	log.Debug().
		Int("iterations", res.Iterations).
		Dur("elapsed", res.Elapsed).
		Str("bestmove", res.BestMove()).
		Float64("score", res.Score()).
		Msg("search finished")
	return res
}

// worker owns one tree, a position positioned at the root between
// iterations, and its own random source.
type worker struct {
	tree            *tree
	pos             *rules.Position
	rng             *rand.Rand
	path            []func()
	rollout         []func()
	cSquared        float64
	sideRelative    bool
	maxRolloutPlies int
}

func (s *Searcher) newWorker(pos *rules.Position, seed uint64) *worker {
	return &worker{
		tree:            newTree(),
		pos:             pos.Clone(),
		rng:             rand.New(rand.NewSource(seed)),
		cSquared:        s.cSquared,
		sideRelative:    s.sideRelative,
		maxRolloutPlies: s.maxRolloutPlies,
	}
}

// run iterates until the iteration cap or the deadline is reached, or ctx is
// done, in which case it returns ctx.Err().
func (w *worker) run(ctx context.Context, deadline time.Time, iterations int) error {
	for {
		w.iterate()
		if iterations > 0 && w.tree.at(root).visits >= iterations {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return nil
		}
	}
}

// iterate performs one select/expand/simulate/backpropagate cycle.
func (w *worker) iterate() {
	t := w.tree
	id := root
	moves := t.inspect(id, w.pos)
	for !t.isTerminal(id) && t.isFullyExpanded(id) {
		negate := w.sideRelative && w.pos.SideToMove() == rules.Black
		id = t.bestChild(id, w.cSquared, negate)
		w.path = append(w.path, w.pos.Apply(t.at(id).move))
		moves = t.inspect(id, w.pos)
	}

	if !t.isTerminal(id) {
		if moves == nil {
			moves = w.pos.LegalMoves()
		}
		t.expandAll(id, moves)
	}

	outcome := w.simulate()
	t.backpropagate(id, outcome)

	for i := len(w.path) - 1; i >= 0; i-- {
		w.path[i]()
	}
	w.path = w.path[:0]
}

// simulate plays uniformly random moves from the current position until the
// game ends and returns the White-relative outcome. The position is restored.
func (w *worker) simulate() float64 {
	outcome := Simulate(w.pos, w.rng, w.maxRolloutPlies, &w.rollout)
	for i := len(w.rollout) - 1; i >= 0; i-- {
		w.rollout[i]()
	}
	w.rollout = w.rollout[:0]
	return outcome
}

// Simulate runs a random rollout on pos and returns its outcome: +1 when White
// mates, -1 when Black mates, 0 for every other ending. The undo closure of
// each played move is appended to undo; the caller restores pos with them.
func Simulate(pos *rules.Position, rng *rand.Rand, maxPlies int, undo *[]func()) float64 {
	for plies := 0; ; plies++ {
		moves := pos.LegalMoves()
		if status := pos.StatusFor(moves); status.GameOver() {
			return Outcome(status, pos.SideToMove())
		}
		if maxPlies > 0 && plies >= maxPlies {
			return 0
		}
		*undo = append(*undo, pos.Apply(moves[rng.Intn(len(moves))]))
	}
}

// Outcome maps a finished game to a White-relative score. The side to move in
// a checkmate is the side that got mated.
func Outcome(status rules.Status, toMove rules.Color) float64 {
	if status != rules.Checkmate {
		return 0
	}
	if toMove == rules.Black {
		return 1
	}
	return -1
}

func resultOf(t *tree) Result {
	res := Result{Iterations: t.at(root).visits}
	first, end := t.children(root)
	for c := first; c < end; c++ {
		n := t.at(c)
		res.Children = append(res.Children, ChildStat{Move: n.move, Visits: n.visits, ScoreSum: n.scoreSum})
	}
	if best := t.mostVisited(); best != noNode {
		res.Move, res.Found = t.at(best).move, true
	}
	return res
}
