package rules

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// StartFEN is the FEN string for the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const backRanks = uint64(0xff000000000000ff)

// ParseFEN validates fen and builds a position from it. A FEN without the
// halfmove clock and fullmove number is accepted and completed with "0 1".
// Positions the generator cannot play from (missing kings, side not to move
// in check, inconsistent castling rights) are rejected.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	}
	if len(fields) != 6 {
		return nil, fenError(fen, "expected 6 fields")
	}
	if err := checkPlacement(fen, fields[0]); err != nil {
		return nil, err
	}
	if fields[1] != "w" && fields[1] != "b" {
		return nil, fenError(fen, "side to move must be w or b")
	}
	if err := checkCastling(fen, fields[2]); err != nil {
		return nil, err
	}
	if err := checkEnPassant(fen, fields[3], fields[1] == "w"); err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(fields[4]); err != nil || n < 0 || n > 255 {
		return nil, fenError(fen, "bad halfmove clock")
	}
	if n, err := strconv.Atoi(fields[5]); err != nil || n < 1 || n > 65535 {
		return nil, fenError(fen, "bad fullmove number")
	}

	board := dragontoothmg.ParseFen(strings.Join(fields, " "))
	if err := checkBoard(fen, &board, fields[2], fields[3]); err != nil {
		return nil, err
	}
	p := &Position{board: board}
	p.history = []uint64{p.repetitionKey(squareIndex(fields[3]))}
	return p, nil
}

func checkPlacement(fen, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError(fen, "incorrect number of ranks")
	}
	for _, rank := range ranks {
		if rank == "" {
			return fenError(fen, "empty rank description")
		}
		file := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			case strings.ContainsRune("PNBRQKpnbrqk", ch):
				file++
			default:
				return fenError(fen, "unrecognized piece character")
			}
			if file > 8 {
				return fenError(fen, "too many squares in rank")
			}
		}
		if file != 8 {
			return fenError(fen, "too few squares in rank")
		}
	}
	return nil
}

func checkCastling(fen, castling string) error {
	if castling == "-" {
		return nil
	}
	seen := map[rune]bool{}
	for _, ch := range castling {
		if !strings.ContainsRune("KQkq", ch) || seen[ch] {
			return fenError(fen, "bad castling rights")
		}
		seen[ch] = true
	}
	return nil
}

func checkEnPassant(fen, ep string, whiteToMove bool) error {
	if ep == "-" {
		return nil
	}
	if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' {
		return fenError(fen, "bad en passant square")
	}
	if (whiteToMove && ep[1] != '6') || (!whiteToMove && ep[1] != '3') {
		return fenError(fen, "bad en passant square")
	}
	return nil
}

// checkBoard runs the validations that need the parsed bitboards.
func checkBoard(fen string, b *dragontoothmg.Board, castling, ep string) error {
	if bits.OnesCount64(b.White.Kings) != 1 || bits.OnesCount64(b.Black.Kings) != 1 {
		return fenError(fen, "each side needs exactly one king")
	}
	if (b.White.Pawns|b.Black.Pawns)&backRanks != 0 {
		return fenError(fen, "pawn on first or last rank")
	}
	homes := map[rune][2]uint64{
		'K': {b.White.Kings & (1 << 4), b.White.Rooks & (1 << 7)},
		'Q': {b.White.Kings & (1 << 4), b.White.Rooks & (1 << 0)},
		'k': {b.Black.Kings & (1 << 60), b.Black.Rooks & (1 << 63)},
		'q': {b.Black.Kings & (1 << 60), b.Black.Rooks & (1 << 56)},
	}
	for _, ch := range castling {
		if h, ok := homes[ch]; ok && (h[0] == 0 || h[1] == 0) {
			return fenError(fen, "castling rights without king and rook on home squares")
		}
	}
	if sq := squareIndex(ep); sq != 0 {
		// The pawn that just double-pushed must stand behind the square,
		// with the square it passed and the one it left both empty.
		them, victim, origin := &b.Black, sq-8, sq+8
		if !b.Wtomove {
			them, victim, origin = &b.White, sq+8, sq-8
		}
		occupied := b.White.All | b.Black.All
		if them.Pawns&(uint64(1)<<victim) == 0 || occupied&(uint64(1)<<sq|uint64(1)<<origin) != 0 {
			return fenError(fen, "en passant square without a double-pushed pawn")
		}
	}
	flipped := *b
	flipped.Wtomove = !flipped.Wtomove
	if flipped.OurKingInCheck() {
		return fenError(fen, "side not to move is in check")
	}
	return nil
}

// squareIndex maps an en passant field to its square, 0 for "-". Only called
// after checkEnPassant, so a1 (0) never stands for a real square.
func squareIndex(ep string) uint8 {
	if ep == "-" {
		return 0
	}
	return (ep[0] - 'a') + 8*(ep[1]-'1')
}
