package rules

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.board.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := p.board.Apply(m)
		nodes += Perft(p, depth-1)
		unapply()
	}
	return nodes
}

// PerftDivide returns the perft count below each root move, keyed by UCI notation.
func PerftDivide(p *Position, depth int) map[string]uint64 {
	result := make(map[string]uint64)
	if depth <= 0 {
		return result
	}
	for _, m := range p.board.GenerateLegalMoves() {
		unapply := p.board.Apply(m)
		result[m.String()] = Perft(p, depth-1)
		unapply()
	}
	return result
}
