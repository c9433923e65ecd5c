package engine

import "grendel/rules"

type nodeID int32

const (
	root   nodeID = 0
	noNode nodeID = -1
)

// node is one arena entry. Positions are not stored: the search replays the
// moves from the root snapshot. Children of a node are created together and
// occupy the contiguous range [first, first+numChildren).
type node struct {
	move        rules.Move
	parent      nodeID
	first       nodeID
	numChildren int32
	legal       int32 // legal move count, -1 until the search first stands here
	terminal    bool
	visits      int
	scoreSum    float64 // White-relative
}

// tree owns every node of one search. The parent handle is only followed
// during backpropagation.
type tree struct {
	nodes []node
}

func newTree() *tree {
	t := &tree{nodes: make([]node, 0, 1<<12)}
	t.nodes = append(t.nodes, node{parent: noNode, first: noNode, legal: -1})
	return t
}

func (t *tree) at(id nodeID) *node { return &t.nodes[id] }

func (t *tree) children(id nodeID) (first, end nodeID) {
	n := &t.nodes[id]
	return n.first, n.first + nodeID(n.numChildren)
}

// inspect records the legal move count and terminal status of id the first time
// the search stands on it, with pos positioned at id. It returns the generated
// moves on that first visit and nil afterwards.
func (t *tree) inspect(id nodeID, pos *rules.Position) []rules.Move {
	n := &t.nodes[id]
	if n.legal >= 0 {
		return nil
	}
	moves := pos.LegalMoves()
	n.legal = int32(len(moves))
	n.terminal = pos.StatusFor(moves).GameOver()
	return moves
}

func (t *tree) isTerminal(id nodeID) bool { return t.nodes[id].terminal }

func (t *tree) isFullyExpanded(id nodeID) bool {
	n := &t.nodes[id]
	return n.legal >= 0 && n.numChildren == n.legal
}

// expandAll creates one child per legal move of id. It is a no-op when id is
// terminal or already expanded.
func (t *tree) expandAll(id nodeID, moves []rules.Move) bool {
	n := &t.nodes[id]
	if n.terminal || n.numChildren > 0 || len(moves) == 0 {
		return false
	}
	first := nodeID(len(t.nodes))
	for _, m := range moves {
		t.nodes = append(t.nodes, node{move: m, parent: id, first: noNode, legal: -1})
	}
	n = &t.nodes[id]
	n.first = first
	n.numChildren = int32(len(moves))
	return true
}

// backpropagate adds outcome to every node from id up to the root.
func (t *tree) backpropagate(id nodeID, outcome float64) {
	for id != noNode {
		n := &t.nodes[id]
		n.visits++
		n.scoreSum += outcome
		id = n.parent
	}
}

// bestChild returns the child of id with the highest UCT value, the first one
// on ties. With negate set the exploitation term is taken from Black's side.
func (t *tree) bestChild(id nodeID, cSquared float64, negate bool) nodeID {
	policy := newUCT(cSquared, t.nodes[id].visits)
	best := noNode
	bestScore := 0.0
	first, end := t.children(id)
	for c := first; c < end; c++ {
		ch := &t.nodes[c]
		q := ch.scoreSum
		if negate {
			q = -q
		}
		score := policy.evaluate(q, ch.visits)
		if best == noNode || score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == noNode {
		panic("engine: selection reached a node without children")
	}
	return best
}

// mostVisited applies the robust-child policy at the root.
func (t *tree) mostVisited() nodeID {
	best := noNode
	bestVisits := -1
	first, end := t.children(root)
	for c := first; c < end; c++ {
		if v := t.nodes[c].visits; v > bestVisits {
			best, bestVisits = c, v
		}
	}
	return best
}
