// Package uci implements the engine side of the UCI protocol: one session,
// one command per line, replies written to an io.Writer.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"grendel/engine"
	"grendel/rules"
)

type Option func(s *Session)

func WithIdentity(name, author string) Option {
	return func(s *Session) {
		s.name, s.author = name, author
	}
}

// WithInfo sends an info line with the search statistics before bestmove.
func WithInfo(enabled bool) Option {
	return func(s *Session) {
		s.reportInfo = enabled
	}
}

func WithTimeManager(tm engine.TimeManager) Option {
	return func(s *Session) {
		s.tm = tm
	}
}

// WithDiagnostics mirrors every received line and every reply to l.
func WithDiagnostics(l zerolog.Logger) Option {
	return func(s *Session) {
		s.diag = l
	}
}

// Session holds the game position between commands. It is not safe for
// concurrent use.
type Session struct {
	out        io.Writer
	searcher   *engine.Searcher
	pos        *rules.Position
	name       string
	author     string
	reportInfo bool
	tm         engine.TimeManager
	diag       zerolog.Logger
}

func NewSession(out io.Writer, searcher *engine.Searcher, options ...Option) *Session {
	s := &Session{
		out:      out,
		searcher: searcher,
		pos:      rules.NewPosition(),
		name:     "Grendel.MCTS.2.024",
		author:   "Sreek",
		tm:       engine.TimeManager{Fixed: engine.DefaultTimeBudget},
		diag:     zerolog.Nop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run reads commands from in until quit or end of input.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !s.Handle(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// Handle processes one command line. It returns false once the session has
// been asked to quit.
func (s *Session) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	s.diag.Debug().Str("recv", line).Send()
	tokens := strings.Fields(line)
	if len(tokens) == 0 { // ignore blank lines
		return true
	}

	switch tokens[0] {
	case "uci":
		s.send("id name " + s.name)
		s.send("id author " + s.author)
		s.send("uciok")
	case "isready":
		s.send("readyok")
	case "ucinewgame":
		s.pos = rules.NewPosition()
		s.send("readyok")
	case "position":
		pos, err := buildPosition(tokens[1:])
		if err != nil {
			s.send("info string " + err.Error())
			return true
		}
		s.pos = pos
	case "go":
		s.search(ctx, tokens[1:])
	case "quit":
		s.send("bye")
		return false
	default:
		s.send("Unknown command: " + line)
	}
	return true
}

// FEN returns the session position.
func (s *Session) FEN() string { return s.pos.FEN() }

func (s *Session) send(line string) {
	fmt.Fprintln(s.out, line)
	s.diag.Debug().Str("sent", line).Send()
}

var errMissingFEN = errors.New("position fen: missing FEN")

// buildPosition parses the arguments of a position command into a new
// position, leaving the session untouched on error.
func buildPosition(args []string) (*rules.Position, error) {
	if len(args) == 0 {
		return nil, errors.New("position: missing startpos or fen")
	}

	var pos *rules.Position
	var rest []string
	switch args[0] {
	case "startpos":
		pos, rest = rules.NewPosition(), args[1:]
	case "fen":
		end := 1
		for end < len(args) && args[end] != "moves" {
			end++
		}
		if end == 1 {
			return nil, errMissingFEN
		}
		var err error
		if pos, err = rules.ParseFEN(strings.Join(args[1:end], " ")); err != nil {
			return nil, err
		}
		rest = args[end:]
	default:
		return nil, fmt.Errorf("position: unknown subcommand %q", args[0])
	}

	if len(rest) == 0 {
		return pos, nil
	}
	if rest[0] != "moves" {
		return nil, fmt.Errorf("position: unexpected token %q", rest[0])
	}
	for _, token := range rest[1:] {
		m, err := pos.ParseMove(token)
		if err != nil {
			return nil, err
		}
		pos.Apply(m)
	}
	return pos, nil
}

func (s *Session) search(ctx context.Context, args []string) {
	clock, nodes := s.parseGo(args)
	budget := s.tm.Budget(clock, s.pos)

	res := s.searcher.Search(ctx, s.pos, engine.Limits{Budget: budget, Iterations: nodes})
	log.Debug().
		Str("fen", s.pos.FEN()).
		Dur("budget", budget).
		Int("iterations", res.Iterations).
		Msg("go")

	if s.reportInfo && res.Found {
		s.send(s.infoLine(res))
	}
	s.send("bestmove " + res.BestMove())
}

// parseGo reads the go sub-options. Bad values are reported and skipped.
func (s *Session) parseGo(args []string) (engine.Clock, int) {
	var clock engine.Clock
	nodes := 0
	for i := 0; i < len(args); i++ {
		var field *int
		switch args[i] {
		case "infinite", "ponder":
			continue
		case "wtime":
			field = &clock.WTime
		case "btime":
			field = &clock.BTime
		case "winc":
			field = &clock.WInc
		case "binc":
			field = &clock.BInc
		case "movestogo":
			field = &clock.MovesToGo
		case "movetime":
			field = &clock.MoveTime
		case "nodes":
			field = &nodes
		case "depth", "mate":
			field = new(int)
		default:
			s.send("info string Unknown go subcommand " + args[i])
			continue
		}
		if i+1 >= len(args) {
			s.send("info string Malformed go command option " + args[i])
			break
		}
		i++
		v, err := strconv.Atoi(args[i])
		if err != nil || v < 0 {
			s.send(fmt.Sprintf("info string Malformed go command option %s %s", args[i-1], args[i]))
			continue
		}
		*field = v
	}
	return clock, nodes
}

// infoLine reports the search from the side to move's point of view. The
// average outcome of the chosen move is scaled to centipawn-like units.
func (s *Session) infoLine(res engine.Result) string {
	elapsed := res.Elapsed
	if elapsed <= 0 {
		elapsed = time.Microsecond
	}
	nps := int64(float64(res.Iterations) / elapsed.Seconds())

	score := res.Score()
	if s.pos.SideToMove() == rules.Black {
		score = -score
	}
	cp := int(math.Round(score * 1000))

	return fmt.Sprintf("info nodes %d time %d nps %d score cp %d pv %s",
		res.Iterations, elapsed.Milliseconds(), nps, cp, res.BestMove())
}
