package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"grendel/rules"
)

// searchParallel runs root parallelism: every worker grows its own tree from
// its own copy of the root with seed+i. An iteration cap is split so that the
// workers' caps add up to it exactly. The root children are generated in the
// same order in every tree, so their statistics merge by index.
func (s *Searcher) searchParallel(ctx context.Context, pos *rules.Position, seed uint64, deadline time.Time, iterations int) Result {
	n := s.workers
	if iterations > 0 && iterations < n {
		n = iterations
	}
	workers := make([]*worker, n)
	for i := range workers {
		workers[i] = s.newWorker(pos, seed+uint64(i))
	}

	var g errgroup.Group
	for i := range workers {
		w := workers[i]
		quota := 0
		if iterations > 0 {
			quota = iterations / n
			if i < iterations%n {
				quota++
			}
		}
		g.Go(func() error {
			return w.run(ctx, deadline, quota)
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Msg("search interrupted")
	}

	res := resultOf(workers[0].tree)
	for _, w := range workers[1:] {
		other := resultOf(w.tree)
		if len(other.Children) != len(res.Children) {
			log.Warn().Int("want", len(res.Children)).Int("got", len(other.Children)).Msg("worker tree disagrees on root moves")
			continue
		}
		res.Iterations += other.Iterations
		for i := range res.Children {
			res.Children[i].Visits += other.Children[i].Visits
			res.Children[i].ScoreSum += other.Children[i].ScoreSum
		}
	}

	best, bestVisits := -1, -1
	for i, c := range res.Children {
		if c.Visits > bestVisits {
			best, bestVisits = i, c.Visits
		}
	}
	if best >= 0 {
		res.Move, res.Found = res.Children[best].Move, true
	}
	return res
}
