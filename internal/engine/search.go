package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// Search constants. Scores are always from White's point of view:
// White maximizes, Black minimizes.
const (
	Infinity  = 1000000
	MateScore = 100000
	MaxPly    = 128
)

// ErrNoLegalMoves is returned when a search is requested for a position in
// which the side to move is already checkmated or stalemated.
var ErrNoLegalMoves = errors.New("engine: no legal moves in position")

// errAborted marks an iteration that was cut short by the clock, the node
// limit or Stop.
var errAborted = errors.New("engine: search aborted")

// Result is the outcome of one top-level search.
type Result struct {
	Move    board.Move
	Score   int // White-positive
	Depth   int // Last fully completed depth
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
}

// SearchInfo describes one completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchContext owns every piece of state shared across the recursive
// calls of a search: the transposition table, the killer and history
// tables, the node counter and the clock. It is reused between searches of
// the same game and reset between games. A context serves one search at a
// time; independent searches need independent contexts.
type SearchContext struct {
	cfg     Config
	eval    Evaluator
	tt      *TranspositionTable
	orderer *MoveOrderer
	clock   *TimeManager

	nodes     uint64
	nodeLimit uint64
	canAbort  bool
	aborted   bool
	stopFlag  atomic.Bool

	// mu orders running against stopFlag so Interrupt never outlives
	// the search it was aimed at.
	mu      sync.Mutex
	running bool
}

// NewSearchContext creates a search context for cfg.
func NewSearchContext(cfg Config) *SearchContext {
	cfg = cfg.normalize()
	return &SearchContext{
		cfg:     cfg,
		eval:    Evaluator{MobilityWeight: cfg.MobilityWeight},
		tt:      NewTranspositionTable(cfg.TTSize),
		orderer: NewMoveOrderer(),
		clock:   NewTimeManager(),
	}
}

// Reset clears the transposition, killer and history tables and drops a
// pending stop.
func (sc *SearchContext) Reset() {
	sc.tt.Clear()
	sc.orderer.Clear()
	sc.nodes = 0
	sc.stopFlag.Store(false)
}

// Stop asks the running search to finish. Issued while idle, it ends the
// next search instead. It is safe to call from another goroutine. Depth 1
// always completes.
func (sc *SearchContext) Stop() {
	sc.mu.Lock()
	sc.stopFlag.Store(true)
	sc.mu.Unlock()
}

// Interrupt stops the running search and reports whether there was one.
// Unlike Stop it has no effect on a later search.
func (sc *SearchContext) Interrupt() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.running {
		sc.stopFlag.Store(true)
	}
	return sc.running
}

func (sc *SearchContext) begin() {
	sc.mu.Lock()
	sc.running = true
	sc.mu.Unlock()
}

// finish marks the search over and consumes any stop aimed at it.
func (sc *SearchContext) finish() {
	sc.mu.Lock()
	sc.running = false
	sc.stopFlag.Store(false)
	sc.mu.Unlock()
}

// Nodes returns the number of nodes visited by the last search.
func (sc *SearchContext) Nodes() uint64 {
	return sc.nodes
}

// TT exposes the transposition table for statistics.
func (sc *SearchContext) TT() *TranspositionTable {
	return sc.tt
}

// Search runs iterative deepening on b within limits. onIter, when non-nil,
// is called after every completed iteration.
func (sc *SearchContext) Search(b board.Board, limits SearchLimits, onIter func(SearchInfo)) (Result, error) {
	sc.begin()
	defer sc.finish()

	moves := b.LegalMoves()
	if len(moves) == 0 {
		return Result{}, ErrNoLegalMoves
	}

	sc.tt.ClearIfOver(sc.cfg.TTMaxFill)
	sc.nodes = 0
	sc.nodeLimit = limits.Nodes
	sc.aborted = false
	sc.canAbort = false
	ply := (b.FullMoveNumber - 1) * 2
	if b.Turn == board.Black {
		ply++
	}
	sc.clock.Init(limits, b.Turn, ply)

	maxDepth := sc.cfg.MaxDepth
	if limits.Depth > 0 {
		maxDepth = min(limits.Depth, MaxPly-1)
	}

	var result Result
	prevBest := board.NoMove
	prevScore := 0

	for depth := 1; depth <= maxDepth; depth++ {
		// Depth 1 runs to completion so there is always a move to return.
		sc.canAbort = depth > 1

		move, score, err := sc.iterate(b, moves, depth, prevBest, prevScore)
		if err != nil {
			break
		}
		prevBest, prevScore = move, score

		result = Result{
			Move:    move,
			Score:   score,
			Depth:   depth,
			Nodes:   sc.nodes,
			Elapsed: sc.clock.Elapsed(),
			PV:      sc.principalVariation(b, move, depth),
		}
		if onIter != nil {
			onIter(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    sc.nodes,
				Time:     result.Elapsed,
				PV:       result.PV,
				HashFull: sc.tt.HashFull(),
			})
		}

		// Early termination: found mate
		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
		if sc.clock.PastOptimum() || sc.stopFlag.Load() {
			break
		}
	}

	result.Nodes = sc.nodes
	result.Elapsed = sc.clock.Elapsed()
	return result, nil
}

// iterate searches one depth, first inside an aspiration window around the
// previous score and again with a full window if the result falls outside.
func (sc *SearchContext) iterate(b board.Board, moves []board.Move, depth int, prevBest board.Move, prevScore int) (board.Move, int, error) {
	// Previous best first; the stable sort keeps the rest in their
	// current order among equals.
	sc.orderer.OrderMoves(&b, moves, 0, prevBest)

	if depth > 1 && sc.cfg.AspirationWindow > 0 {
		alpha := prevScore - sc.cfg.AspirationWindow
		beta := prevScore + sc.cfg.AspirationWindow
		move, score := sc.searchRoot(b, moves, depth, alpha, beta)
		if sc.aborted {
			return board.NoMove, 0, errAborted
		}
		if score > alpha && score < beta {
			return move, score, nil
		}
	}

	move, score := sc.searchRoot(b, moves, depth, -Infinity, Infinity)
	if sc.aborted {
		return board.NoMove, 0, errAborted
	}
	return move, score, nil
}

// searchRoot picks the best root move. Ties keep the earlier move.
func (sc *SearchContext) searchRoot(b board.Board, moves []board.Move, depth, alpha, beta int) (board.Move, int) {
	maximizing := b.Turn == board.White
	origAlpha, origBeta := alpha, beta

	bestMove := board.NoMove
	best := Infinity
	if maximizing {
		best = -Infinity
	}

	for _, m := range moves {
		score := sc.minimax(b.Apply(m), depth-1, alpha, beta, 1, true)
		if sc.aborted {
			return bestMove, best
		}

		if maximizing {
			if score > best {
				best, bestMove = score, m
			}
			alpha = max(alpha, score)
		} else {
			if score < best {
				best, bestMove = score, m
			}
			beta = min(beta, score)
		}
		if alpha >= beta {
			break
		}
	}

	sc.tt.Store(b.Key(), depth, AdjustScoreToTT(best, 0), boundFlag(best, origAlpha, origBeta), bestMove)
	return bestMove, best
}

// boundFlag classifies a result against the window it was searched with.
func boundFlag(score, alpha, beta int) TTFlag {
	switch {
	case score <= alpha:
		return TTUpperBound
	case score >= beta:
		return TTLowerBound
	}
	return TTExact
}

// tick counts a node and polls the clock, node limit and stop flag every
// CheckInterval nodes.
func (sc *SearchContext) tick() {
	sc.nodes++
	if !sc.canAbort || sc.nodes%sc.cfg.CheckInterval != 0 {
		return
	}
	if sc.stopFlag.Load() || sc.clock.ShouldStop() || (sc.nodeLimit > 0 && sc.nodes >= sc.nodeLimit) {
		sc.aborted = true
	}
}

// minimax is alpha-beta over white-positive scores. The board is a private
// copy; children are built with Apply and never share storage with it.
func (sc *SearchContext) minimax(b board.Board, depth, alpha, beta, ply int, allowNull bool) int {
	sc.tick()
	if sc.aborted {
		return 0
	}

	maximizing := b.Turn == board.White
	key := b.Key()
	origAlpha, origBeta := alpha, beta

	// Transposition lookup
	hashMove := board.NoMove
	if entry, ok := sc.tt.Probe(key); ok {
		hashMove = entry.BestMove
		if entry.Depth >= depth {
			score := AdjustScoreFromTT(entry.Score, ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				alpha = max(alpha, score)
			case TTUpperBound:
				beta = min(beta, score)
			}
			if alpha >= beta {
				return score
			}
		}
	}

	// Terminal positions
	moves := b.LegalMoves()
	inCheck := b.InCheck(b.Turn)
	if len(moves) == 0 {
		if !inCheck {
			return 0
		}
		if maximizing {
			return -(MateScore - ply)
		}
		return MateScore - ply
	}

	if depth <= 0 || ply >= MaxPly-1 {
		return sc.quiescence(b, alpha, beta, ply, sc.cfg.QuiescenceDepth)
	}

	// Null move pruning: pass and search the opponent at reduced depth with
	// a null window at the bound that matters to the side to move.
	if allowNull && depth >= sc.cfg.NullMoveMinDepth && !inCheck && b.HasNonPawnMaterial(b.Turn) {
		next := b.ApplyNull()
		reduced := depth - 1 - sc.cfg.NullMoveReduction
		if maximizing {
			score := sc.minimax(next, reduced, beta-1, beta, ply+1, false)
			if sc.aborted {
				return 0
			}
			if score >= beta {
				return beta
			}
		} else {
			score := sc.minimax(next, reduced, alpha, alpha+1, ply+1, false)
			if sc.aborted {
				return 0
			}
			if score <= alpha {
				return alpha
			}
		}
	}

	sc.orderer.OrderMoves(&b, moves, ply, hashMove)

	bestMove := board.NoMove
	best := Infinity
	if maximizing {
		best = -Infinity
	}

	for i, m := range moves {
		child := b.Apply(m)

		var score int
		if i >= sc.cfg.LMRMoveThreshold && depth >= sc.cfg.LMRMinDepth &&
			!inCheck && m.IsQuiet() && !child.InCheck(child.Turn) {
			// Late move reduction, re-searched at full depth if it still
			// improves on the bound.
			score = sc.minimax(child, depth-1-sc.cfg.LMRReduction, alpha, beta, ply+1, true)
			if !sc.aborted && ((maximizing && score > alpha) || (!maximizing && score < beta)) {
				score = sc.minimax(child, depth-1, alpha, beta, ply+1, true)
			}
		} else {
			score = sc.minimax(child, depth-1, alpha, beta, ply+1, true)
		}
		if sc.aborted {
			return 0
		}

		if maximizing {
			if score > best {
				best, bestMove = score, m
			}
			alpha = max(alpha, score)
		} else {
			if score < best {
				best, bestMove = score, m
			}
			beta = min(beta, score)
		}

		if alpha >= beta {
			if m.IsQuiet() {
				sc.orderer.UpdateKillers(m, ply)
				sc.orderer.UpdateHistory(m, depth)
			}
			break
		}
	}

	sc.tt.Store(key, depth, AdjustScoreToTT(best, ply), boundFlag(best, origAlpha, origBeta), bestMove)
	return best
}

// quiescence resolves captures below the horizon. The static evaluation
// is a floor for the side to move (it may decline every capture).
func (sc *SearchContext) quiescence(b board.Board, alpha, beta, ply, qdepth int) int {
	sc.tick()
	if sc.aborted {
		return 0
	}

	maximizing := b.Turn == board.White
	standPat := sc.eval.Evaluate(&b)
	if qdepth <= 0 || ply >= MaxPly-1 {
		return standPat
	}

	if maximizing {
		if standPat >= beta {
			return standPat
		}
		alpha = max(alpha, standPat)
	} else {
		if standPat <= alpha {
			return standPat
		}
		beta = min(beta, standPat)
	}

	captures := b.Captures()
	OrderCaptures(&b, captures)

	best := standPat
	for _, m := range captures {
		score := sc.quiescence(b.Apply(m), alpha, beta, ply+1, qdepth-1)
		if sc.aborted {
			return 0
		}

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, score)
		} else {
			best = min(best, score)
			beta = min(beta, score)
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// principalVariation starts from the chosen root move and follows best
// moves through the transposition table.
func (sc *SearchContext) principalVariation(b board.Board, first board.Move, depth int) []board.Move {
	pv := []board.Move{first}
	b = b.Apply(first)
	seen := map[string]bool{}
	for len(pv) < depth {
		key := b.Key()
		if seen[key] {
			break
		}
		seen[key] = true

		entry, ok := sc.tt.Probe(key)
		if !ok || entry.BestMove.IsNone() || !isLegal(&b, entry.BestMove) {
			break
		}
		pv = append(pv, entry.BestMove)
		b = b.Apply(entry.BestMove)
	}
	return pv
}

func isLegal(b *board.Board, m board.Move) bool {
	if b.PieceAt(m.From).Color() != b.Turn {
		return false
	}
	for _, legal := range b.ValidMoves(m.From, true) {
		if legal == m {
			return true
		}
	}
	return false
}
