package rules

import "fmt"

// ParseError reports malformed FEN or move notation.
type ParseError struct {
	Kind   string // "fen" or "move"
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Input, e.Reason)
}

// IllegalMoveError reports a well-formed move that is not legal in the position.
type IllegalMoveError struct {
	Move string
	FEN  string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s in position %s", e.Move, e.FEN)
}

func fenError(input, reason string) error {
	return &ParseError{Kind: "fen", Input: input, Reason: reason}
}
