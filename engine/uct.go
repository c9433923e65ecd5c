package engine

import "math"

// Hyperparameters for MCTS

const DefaultCSquared = 2.0 // Exploration constant squared

// epsilon keeps unvisited children finite and ahead of every visited sibling.
const epsilon = 1e-7

type uct struct {
	numerator float64
}

func newUCT(cSquared float64, parentVisits int) uct {
	if parentVisits == 0 {
		panic("engine: UCT over a parent with 0 visits")
	}
	return uct{numerator: cSquared * math.Log(float64(parentVisits))}
}

// UCT = q/(n+ε) + sqrt(c^2*ln(N)/(n+ε))
func (u uct) evaluate(q float64, n int) float64 {
	nn := float64(n) + epsilon
	return q/nn + math.Sqrt(u.numerator/nn)
}
