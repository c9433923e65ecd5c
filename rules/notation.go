package rules

import (
	"strings"

	"github.com/samber/lo"
)

// ParseMove decodes a UCI move token (e2e4, e7e8q, e1g1 for castling) in the
// context of p. Malformed tokens yield *ParseError, well-formed tokens that are
// not legal here yield *IllegalMoveError.
func (p *Position) ParseMove(token string) (Move, error) {
	movestr := strings.ToLower(strings.TrimSpace(token))
	if !validMoveSyntax(movestr) {
		return 0, &ParseError{Kind: "move", Input: token, Reason: "expected <from><to>[promotion]"}
	}
	for _, mv := range p.LegalMoves() {
		if mv.String() == movestr {
			return mv, nil
		}
	}
	return 0, &IllegalMoveError{Move: token, FEN: p.FEN()}
}

// LegalMoveStrings lists the legal moves in UCI notation.
func (p *Position) LegalMoveStrings() []string {
	return lo.Map(p.LegalMoves(), func(m Move, _ int) string {
		return m.String()
	})
}

func validMoveSyntax(s string) bool {
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	if !validSquare(s[0:2]) || !validSquare(s[2:4]) {
		return false
	}
	if len(s) == 5 && !strings.ContainsRune("qrbn", rune(s[4])) {
		return false
	}
	return true
}

func validSquare(sq string) bool {
	return sq[0] >= 'a' && sq[0] <= 'h' && sq[1] >= '1' && sq[1] <= '8'
}
