package engine

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// Engine is the chess AI engine. It owns one SearchContext and therefore
// runs one search at a time; Stop may be called from another goroutine.
type Engine struct {
	ctx        *SearchContext
	cfg        Config
	difficulty Difficulty
	log        zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine. Zero fields of cfg take their
// DefaultConfig values.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.normalize()
	return &Engine{
		ctx:        NewSearchContext(cfg),
		cfg:        cfg,
		difficulty: Medium,
		log:        zerolog.Nop(),
	}
}

// SetLogger sets the logger used for per-iteration and per-search events.
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.log = l.With().Str("component", "engine").Logger()
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetDifficulty sets the engine difficulty. Values without a preset fall
// back to Medium.
func (e *Engine) SetDifficulty(d Difficulty) {
	if !d.Valid() {
		e.log.Warn().Stringer("difficulty", d).Msg("unknown difficulty, using medium")
		d = Medium
	}
	e.difficulty = d
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// Search finds the best move for b using the difficulty preset.
func (e *Engine) Search(b board.Board) (board.Move, error) {
	res, err := e.SearchWithLimits(b, DifficultySettings[e.difficulty])
	return res.Move, err
}

// ChooseMove finds a move for the side to move within the time budget.
// The depth cap comes from the difficulty preset. A budget of zero or less
// uses the preset's own move time.
func (e *Engine) ChooseMove(b board.Board, budget time.Duration) (board.Move, error) {
	limits := DifficultySettings[e.difficulty]
	if budget > 0 {
		limits.MoveTime = budget
	}
	res, err := e.SearchWithLimits(b, limits)
	return res.Move, err
}

// SearchWithLimits finds the best move with specific search limits.
func (e *Engine) SearchWithLimits(b board.Board, limits SearchLimits) (Result, error) {
	res, err := e.ctx.Search(b, limits, e.reportIteration)
	if err != nil {
		e.log.Warn().Err(err).Str("fen", b.FEN()).Msg("search refused")
		return res, err
	}

	e.log.Info().
		Str("move", res.Move.String()).
		Int("depth", res.Depth).
		Str("score", ScoreToString(res.Score)).
		Str("nodes", humanize.Comma(int64(res.Nodes))).
		Str("nps", humanize.SIWithDigits(nps(res.Nodes, res.Elapsed), 1, "n/s")).
		Dur("elapsed", res.Elapsed).
		Msg("search complete")
	return res, nil
}

func (e *Engine) reportIteration(info SearchInfo) {
	e.log.Debug().
		Int("depth", info.Depth).
		Int("score", info.Score).
		Uint64("nodes", info.Nodes).
		Dur("elapsed", info.Time).
		Int("hashfull", info.HashFull).
		Str("pv", pvString(info.PV)).
		Msg("iteration")
	if e.OnInfo != nil {
		e.OnInfo(info)
	}
}

// Stop stops the current search, or the next one when none is running.
func (e *Engine) Stop() {
	e.ctx.Stop()
}

// Interrupt stops the current search only. It reports false when no
// search was running.
func (e *Engine) Interrupt() bool {
	return e.ctx.Interrupt()
}

// NewGame clears the transposition, killer and history tables.
func (e *Engine) NewGame() {
	e.ctx.Reset()
}

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() uint64 {
	return e.ctx.Nodes()
}

// Perft counts leaf nodes of the legal move tree (for debugging move
// generation).
func (e *Engine) Perft(b board.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := b.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		nodes += e.Perft(b.Apply(m), depth-1)
	}
	return nodes
}

// Evaluate returns the static evaluation of a position (White-positive).
func (e *Engine) Evaluate(b board.Board) int {
	return e.ctx.eval.Evaluate(&b)
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > MateScore-MaxPly || score < -MateScore+MaxPly
}

// MatePly returns the number of plies to the mate encoded in score.
func MatePly(score int) int {
	if score < 0 {
		return MateScore + score
	}
	return MateScore - score
}

// ScoreToString converts a White-positive score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("White mates in %d", (MatePly(score)+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Black mates in %d", (MatePly(score)+1)/2)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

func nps(nodes uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(nodes) / elapsed.Seconds()
}

func pvString(pv []board.Move) string {
	s := ""
	for i, m := range pv {
		if i > 0 {
			s += " "
		}
		s += m.String()
	}
	return s
}
