// Package uci serves the engine over the Universal Chess Interface protocol.
package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/LittleKatyusha/minesweeper/internal/board"
	"github.com/LittleKatyusha/minesweeper/internal/engine"
)

const (
	engineName   = "ChessPlay"
	engineAuthor = "ChessPlay Team"

	defaultHashMB = 64
	maxHashMB     = 1024
	entriesPerMB  = 1 << 14
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	cfg    engine.Config
	board  board.Board

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // guards out
	log zerolog.Logger

	// Search state
	searchDone chan struct{} // nil when idle
}

// New creates a UCI handler reading commands from in and writing responses
// to out.
func New(cfg engine.Config, in io.Reader, out io.Writer) *UCI {
	return &UCI{
		engine: engine.NewEngine(cfg),
		cfg:    cfg,
		board:  board.NewBoard(),
		in:     in,
		out:    out,
		log:    zerolog.Nop(),
	}
}

// SetLogger sets the diagnostics logger; protocol output never goes there.
func (u *UCI) SetLogger(l zerolog.Logger) {
	u.log = l.With().Str("component", "uci").Logger()
	u.engine.SetLogger(l)
}

// Run processes commands until "quit" or end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		u.log.Debug().Str("cmd", line).Msg("received")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.stopSearch()
		case "quit":
			u.stopSearch()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "eval":
			u.handleEval()
		case "perft":
			u.handlePerft(args)
		default:
			u.send("info string unknown command: %s", cmd)
		}
	}

	u.stopSearch()
	return scanner.Err()
}

func (u *UCI) send(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name %s", engineName)
	u.send("id author %s", engineAuthor)
	u.send("")
	u.send("option name Hash type spin default %d min 1 max %d", defaultHashMB, maxHashMB)
	u.send("option name Difficulty type combo default %s var easy var medium var hard", u.engine.Difficulty())
	u.send("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.stopSearch()
	u.engine.NewGame()
	u.board = board.NewBoard()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// The current position is kept if any part fails to parse.
func (u *UCI) handlePosition(args []string) {
	u.stopSearch()

	b, err := parsePosition(args)
	if err != nil {
		u.log.Warn().Err(err).Strs("args", args).Msg("bad position")
		u.send("info string %v", err)
		return
	}
	u.board = b
}

func parsePosition(args []string) (board.Board, error) {
	if len(args) == 0 {
		return board.Board{}, errors.New("position: missing startpos or fen")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var b board.Board
	switch args[0] {
	case "startpos":
		b = board.NewBoard()
	case "fen":
		var err error
		b, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return board.Board{}, fmt.Errorf("invalid fen: %w", err)
		}
		if err := b.Validate(); err != nil {
			return board.Board{}, fmt.Errorf("invalid fen: %w", err)
		}
	default:
		return board.Board{}, fmt.Errorf("position: unknown keyword %q", args[0])
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := b.ParseMove(s)
			if err != nil {
				return board.Board{}, fmt.Errorf("invalid move %s: %w", s, err)
			}
			b = b.Apply(m)
		}
	}

	return b, nil
}

// parseLimits converts "go" arguments to search limits. ok is false when no
// limit was given, in which case the difficulty preset applies.
func parseLimits(args []string) (limits engine.SearchLimits, ok bool) {
	ms := func(i int) time.Duration {
		v, _ := strconv.Atoi(args[i])
		return time.Duration(v) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "infinite":
			limits.Infinite = true
			ok = true
			continue
		case "depth", "nodes", "movetime", "wtime", "btime", "winc", "binc", "movestogo":
			if !hasValue {
				continue
			}
		default:
			continue
		}

		ok = true
		switch args[i] {
		case "depth":
			limits.Depth, _ = strconv.Atoi(args[i+1])
		case "nodes":
			limits.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
		case "movetime":
			limits.MoveTime = ms(i + 1)
		case "wtime":
			limits.Time[board.White] = ms(i + 1)
		case "btime":
			limits.Time[board.Black] = ms(i + 1)
		case "winc":
			limits.Inc[board.White] = ms(i + 1)
		case "binc":
			limits.Inc[board.Black] = ms(i + 1)
		case "movestogo":
			limits.MovesToGo, _ = strconv.Atoi(args[i+1])
		}
		i++
	}

	return limits, ok
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.stopSearch()

	limits, ok := parseLimits(args)
	if !ok {
		limits = engine.DifficultySettings[u.engine.Difficulty()]
	}

	b := u.board
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(b, info)
	}

	done := make(chan struct{})
	u.searchDone = done

	go func() {
		defer close(done)

		res, err := u.engine.SearchWithLimits(b, limits)
		if err != nil {
			// Checkmate or stalemate: nothing to play.
			u.send("bestmove 0000")
			return
		}

		u.send("info string searched %s nodes at %s",
			humanize.Comma(int64(res.Nodes)),
			humanize.SIWithDigits(nodesPerSecond(res.Nodes, res.Elapsed), 1, "n/s"))
		u.send("bestmove %s", res.Move)
	}()
}

// stopSearch stops the running search, if any, and waits for its bestmove.
func (u *UCI) stopSearch() {
	done := u.searchDone
	if done == nil {
		return
	}

	// The goroutine may not have entered the search yet.
	for {
		u.engine.Interrupt()
		select {
		case <-done:
			u.searchDone = nil
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// sendInfo outputs search info in UCI format. Scores are reported from the
// side to move's point of view.
func (u *UCI) sendInfo(b board.Board, info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	score := info.Score
	if b.Turn == board.Black {
		score = -score
	}
	if engine.IsMateScore(score) {
		moves := (engine.MatePly(score) + 1) / 2
		if score < 0 {
			moves = -moves
		}
		parts = append(parts, fmt.Sprintf("score mate %d", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", score))
	}

	parts = append(parts,
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("nps %d", uint64(nodesPerSecond(info.Nodes, info.Time))),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	)

	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.send("info %s", strings.Join(parts, " "))
}

func nodesPerSecond(nodes uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(nodes) / elapsed.Seconds()
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string

	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		mb, err := strconv.Atoi(strings.Join(value, " "))
		if err != nil || mb < 1 || mb > maxHashMB {
			u.send("info string invalid Hash value %q", strings.Join(value, " "))
			return
		}
		u.stopSearch()
		difficulty := u.engine.Difficulty()
		u.cfg.TTSize = mb * entriesPerMB
		u.engine = engine.NewEngine(u.cfg)
		u.engine.SetDifficulty(difficulty)
		u.engine.SetLogger(u.log)
	case "difficulty":
		d, err := engine.ParseDifficulty(strings.Join(value, " "))
		if err != nil {
			u.send("info string %v", err)
			return
		}
		u.engine.SetDifficulty(d)
	default:
		u.send("info string unknown option %q", strings.Join(name, " "))
	}
}

func (u *UCI) handleDisplay() {
	u.send("%s", u.board.String())
	u.send("Fen: %s", u.board.FEN())
}

func (u *UCI) handleEval() {
	score := u.engine.Evaluate(u.board)
	u.send("Evaluation: %s (white side)", engine.ScoreToString(score))
}

// handlePerft runs a perft test, printing the count below each root move.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}
	u.stopSearch()

	start := time.Now()
	var nodes uint64
	for _, m := range u.board.LegalMoves() {
		n := u.engine.Perft(u.board.Apply(m), depth-1)
		u.send("%s: %d", m, n)
		nodes += n
	}
	elapsed := time.Since(start)

	u.send("")
	u.send("Nodes: %s", humanize.Comma(int64(nodes)))
	u.send("Time: %v", elapsed)
	u.send("NPS: %s", humanize.SIWithDigits(nodesPerSecond(nodes, elapsed), 1, ""))
}
