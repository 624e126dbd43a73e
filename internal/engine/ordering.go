package engine

import (
	"slices"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// Move ordering priorities
const (
	HashMoveScore  = 1000000 // TT / previous-iteration best move
	CaptureBase    = 10000   // Plus victim value minus attacker value / 100
	PromotionBonus = 9500
	KillerScore1   = 9000 // First killer move
	KillerScore2   = 8000 // Second killer move
	CastlingBonus  = 500
	CenterBonus    = 50 // Quiet pawn or knight move onto d4/e4/d5/e5

	historyCap   = 5000   // Ordering contribution of history stays below killers
	historyLimit = 400000 // Aging threshold for the raw table
)

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused cutoffs), two per ply
	killers [MaxPly][2]board.Move

	// History heuristic (indexed by [from][to])
	history [64][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	mo := &MoveOrderer{}
	mo.Clear()
	return mo
}

// Clear resets killers and history.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	mo.history = [64][64]int{}
}

// ScoreMove returns the ordering score for a single move at the given ply.
func (mo *MoveOrderer) ScoreMove(b *board.Board, m board.Move, ply int, hashMove board.Move) int {
	if !hashMove.IsNone() && m == hashMove {
		return HashMoveScore
	}

	score := 0
	attacker := b.PieceAt(m.From)

	switch {
	case m.IsCapture():
		victim := board.Pawn
		if !m.IsEnPassant() {
			victim = b.PieceAt(m.To).Type()
		}
		score = CaptureBase + victim.Value() - attacker.Value()/100
	default:
		if ply < MaxPly {
			switch m {
			case mo.killers[ply][0]:
				score = KillerScore1
			case mo.killers[ply][1]:
				score = KillerScore2
			}
		}
		score += min(mo.history[m.From][m.To], historyCap)

		if pt := attacker.Type(); pt == board.Pawn || pt == board.Knight {
			switch m.To {
			case board.D4, board.E4, board.D5, board.E5:
				score += CenterBonus
			}
		}
	}

	if m.IsPromotion() {
		score += PromotionBonus
	}
	if m.IsCastling() {
		score += CastlingBonus
	}
	return score
}

type scoredMove struct {
	move  board.Move
	score int
}

// OrderMoves sorts moves in place by descending score. The sort is stable,
// so equal scores keep generation order.
func (mo *MoveOrderer) OrderMoves(b *board.Board, moves []board.Move, ply int, hashMove board.Move) {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{m, mo.ScoreMove(b, m, ply, hashMove)}
	}
	slices.SortStableFunc(scored, func(a, c scoredMove) int {
		return c.score - a.score
	})
	for i := range scored {
		moves[i] = scored[i].move
	}
}

// OrderCaptures sorts captures by captured piece value, most valuable
// first, for quiescence search.
func OrderCaptures(b *board.Board, moves []board.Move) {
	victimValue := func(m board.Move) int {
		if m.IsEnPassant() {
			return board.Pawn.Value()
		}
		return b.PieceAt(m.To).Value()
	}
	slices.SortStableFunc(moves, func(a, c board.Move) int {
		return victimValue(c) - victimValue(a)
	})
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}

	// Don't store if it's already the first killer
	if mo.killers[ply][0] == m {
		return
	}

	// Shift killers
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// Killers returns the two killer moves stored for ply.
func (mo *MoveOrderer) Killers(ply int) [2]board.Move {
	if ply >= MaxPly {
		return [2]board.Move{board.NoMove, board.NoMove}
	}
	return mo.killers[ply]
}

// UpdateHistory bumps the history score of a move that caused a cutoff.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	mo.history[m.From][m.To] += depth * depth
	// Prevent overflow
	if mo.history[m.From][m.To] > historyLimit {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}

// HistoryScore returns the history score for a move.
func (mo *MoveOrderer) HistoryScore(m board.Move) int {
	return mo.history[m.From][m.To]
}
