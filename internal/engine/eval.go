// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// EndgameMaterial is the combined non-king material of both sides below
// which the endgame king table and endgame weights are used.
const EndgameMaterial = 2600

// DefaultMobilityWeight is the bonus per legal move of difference.
const DefaultMobilityWeight = 4

// Passed pawn bonuses by relative rank (index 1 = 2nd rank, 6 = 7th rank)
var passedPawnBonus = [8]int{0, 10, 20, 40, 70, 120, 200, 0}

const passedPawnEndgameFactor = 2

// King safety
const (
	pawnShieldBonus     = 10  // Bonus per shield file covered by a pawn
	pawnShieldMissing   = -15 // Penalty per shield file without a pawn
	kingAdvancedPenalty = -20 // Per rank the king stands beyond its second rank
	kingSafetyEgDivisor = 4
)

// Pawn structure penalties
const (
	doubledPawnPenalty  = -15
	isolatedPawnPenalty = -20
)

// Piece coordination
const (
	bishopPairBonus       = 30
	rookOpenFileBonus     = 20
	rookSemiOpenFileBonus = 10
	connectedRooksBonus   = 15
	knightOutpostBonus    = 25
	centerOccupancyBonus  = 10
)

// Development applies during the first developmentMoves full moves and
// shrinks linearly to nothing.
const (
	developmentMoves        = board.OpeningMoves
	undevelopedMinorPenalty = -15
	castledKingBonus        = 30
)

var centerSquares = [4]board.Square{board.D4, board.E4, board.D5, board.E5}

// Home squares from White's point of view; mirrored for Black.
var (
	minorHomeSquares = [4]board.Square{board.B1, board.G1, board.C1, board.F1}
	castledSquares   = [2]board.Square{board.G1, board.C1}
)

// Piece-Square Tables (PST) for positional evaluation.
// Laid out as seen from White's side (first row = rank 8) and indexed
// directly by board.Square for White, by the mirrored square for Black.

// Pawn PST - encourages central control and advancement
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

// Bishop PST - encourages central diagonals
var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

// Rook PST - encourages 7th rank and central files
var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

// Queen PST - slight central preference
var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King PST (middlegame) - encourages castling
var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// King PST (endgame) - king should be active
var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...]*[64]int{
	board.Pawn:   &pawnPST,
	board.Knight: &knightPST,
	board.Bishop: &bishopPST,
	board.Rook:   &rookPST,
	board.Queen:  &queenPST,
}

// Evaluator computes static scores. It holds only weights, so a given
// Evaluator is a pure function of the board it is handed.
type Evaluator struct {
	MobilityWeight int
}

var defaultEvaluator = Evaluator{MobilityWeight: DefaultMobilityWeight}

// Evaluate returns the static evaluation of the position from White's
// perspective using the default weights.
func Evaluate(b *board.Board) int {
	return defaultEvaluator.Evaluate(b)
}

// evalInfo caches per-position facts shared by several terms.
type evalInfo struct {
	pawnsOnFile [2][8]int
	endgame     bool
}

func newEvalInfo(b *board.Board) *evalInfo {
	info := &evalInfo{}
	material := 0
	for sq, p := range b.Squares {
		if p == board.NoPiece {
			continue
		}
		switch p.Type() {
		case board.King:
			continue
		case board.Pawn:
			info.pawnsOnFile[p.Color()][board.Square(sq).File()]++
		}
		material += p.Value()
	}
	info.endgame = material < EndgameMaterial
	return info
}

// Evaluate returns the static evaluation of the position from White's
// perspective. Every term is computed per side and subtracted, which keeps
// the score exactly antisymmetric under colour mirroring.
func (e Evaluator) Evaluate(b *board.Board) int {
	info := newEvalInfo(b)

	score := e.evaluateSide(b, info, board.White) - e.evaluateSide(b, info, board.Black)

	// Mobility
	mobility := len(b.MovesFor(board.White)) - len(b.MovesFor(board.Black))
	score += mobility * e.MobilityWeight

	return score
}

func (e Evaluator) evaluateSide(b *board.Board, info *evalInfo, c board.Color) int {
	score := 0
	bishops := 0
	var rooks []board.Square

	for i, p := range b.Squares {
		if p == board.NoPiece || p.Color() != c {
			continue
		}
		sq := board.Square(i)
		pstSq := relativeSquare(sq, c)

		// Material
		score += p.Value()

		// Piece-square tables
		switch pt := p.Type(); pt {
		case board.King:
			if info.endgame {
				score += kingEndgamePST[pstSq]
			} else {
				score += kingMidgamePST[pstSq]
			}
		default:
			score += psts[pt][pstSq]
		}

		switch p.Type() {
		case board.Pawn:
			score += evaluatePawn(b, info, sq, c)
		case board.Knight:
			if isOutpost(b, sq, c) {
				score += knightOutpostBonus
			}
		case board.Bishop:
			bishops++
		case board.Rook:
			rooks = append(rooks, sq)
			score += rookFileBonus(info, sq, c)
		}
	}

	if bishops >= 2 {
		score += bishopPairBonus
	}
	score += connectedRooks(b, rooks)

	for _, sq := range centerSquares {
		if p := b.Squares[sq]; p != board.NoPiece && p.Color() == c {
			score += centerOccupancyBonus
		}
	}

	// Doubled pawns
	for file := 0; file < 8; file++ {
		if n := info.pawnsOnFile[c][file]; n > 1 {
			score += (n - 1) * doubledPawnPenalty
		}
	}

	score += kingSafety(b, info, c)
	score += development(b, c)

	return score
}

// relativeSquare maps a square to the PST index for color c.
func relativeSquare(sq board.Square, c board.Color) board.Square {
	if c == board.Black {
		return sq.Mirror()
	}
	return sq
}

// forward is the row step a pawn of color c advances by.
func forward(c board.Color) int {
	if c == board.White {
		return -1
	}
	return 1
}

func squareAt(row, file int) (board.Square, bool) {
	if row < 0 || row > 7 || file < 0 || file > 7 {
		return board.NoSquare, false
	}
	return board.NewSquare(file, 7-row), true
}

// evaluatePawn scores isolation and passed-pawn status for one pawn.
func evaluatePawn(b *board.Board, info *evalInfo, sq board.Square, c board.Color) int {
	score := 0
	file := sq.File()

	isolated := true
	for _, f := range [2]int{file - 1, file + 1} {
		if f >= 0 && f < 8 && info.pawnsOnFile[c][f] > 0 {
			isolated = false
		}
	}
	if isolated {
		score += isolatedPawnPenalty
	}

	if !enemyPawnAhead(b, sq, c, file-1, file+1) {
		bonus := passedPawnBonus[sq.RelativeRank(c)]
		if info.endgame {
			bonus *= passedPawnEndgameFactor
		}
		score += bonus
	}
	return score
}

// enemyPawnAhead reports whether an enemy pawn stands on files lo..hi on any
// row in front of sq from c's point of view.
func enemyPawnAhead(b *board.Board, sq board.Square, c board.Color, lo, hi int) bool {
	enemyPawn := board.NewPiece(board.Pawn, c.Other())
	fwd := forward(c)
	for row := sq.Row() + fwd; row >= 0 && row < 8; row += fwd {
		for f := lo; f <= hi; f++ {
			if s, ok := squareAt(row, f); ok && b.Squares[s] == enemyPawn {
				return true
			}
		}
	}
	return false
}

// isOutpost: advanced into enemy territory, defended by a friendly pawn and
// out of reach of every enemy pawn.
func isOutpost(b *board.Board, sq board.Square, c board.Color) bool {
	if sq.RelativeRank(c) < 4 {
		return false
	}
	ownPawn := board.NewPiece(board.Pawn, c)
	behind := sq.Row() - forward(c)
	protected := false
	for _, f := range [2]int{sq.File() - 1, sq.File() + 1} {
		if s, ok := squareAt(behind, f); ok && b.Squares[s] == ownPawn {
			protected = true
		}
	}
	if !protected {
		return false
	}

	// Only the adjacent files matter; a pawn on the same file can never attack.
	file := sq.File()
	return !enemyPawnAhead(b, sq, c, file-1, file-1) && !enemyPawnAhead(b, sq, c, file+1, file+1)
}

func rookFileBonus(info *evalInfo, sq board.Square, c board.Color) int {
	file := sq.File()
	if info.pawnsOnFile[c][file] > 0 {
		return 0
	}
	if info.pawnsOnFile[c.Other()][file] > 0 {
		return rookSemiOpenFileBonus
	}
	return rookOpenFileBonus
}

// connectedRooks awards pairs of rooks on the same rank with nothing between.
func connectedRooks(b *board.Board, rooks []board.Square) int {
	score := 0
	for i := 0; i < len(rooks); i++ {
		for j := i + 1; j < len(rooks); j++ {
			r1, r2 := rooks[i], rooks[j]
			if r1.Row() != r2.Row() {
				continue
			}
			clear := true
			for s := min(r1, r2) + 1; s < max(r1, r2); s++ {
				if b.Squares[s] != board.NoPiece {
					clear = false
					break
				}
			}
			if clear {
				score += connectedRooksBonus
			}
		}
	}
	return score
}

// kingSafety rewards a pawn shield on the three files in front of the king
// and penalises a king that has walked up the board.
func kingSafety(b *board.Board, info *evalInfo, c board.Color) int {
	k := b.KingSquare(c)
	if k == board.NoSquare {
		return 0
	}

	score := 0
	if rel := k.RelativeRank(c); rel > 1 {
		score += (rel - 1) * kingAdvancedPenalty
	} else {
		ownPawn := board.NewPiece(board.Pawn, c)
		fwd := forward(c)
		for f := k.File() - 1; f <= k.File()+1; f++ {
			if f < 0 || f > 7 {
				continue
			}
			covered := false
			for step := 1; step <= 2; step++ {
				if s, ok := squareAt(k.Row()+step*fwd, f); ok && b.Squares[s] == ownPawn {
					covered = true
					break
				}
			}
			if covered {
				score += pawnShieldBonus
			} else {
				score += pawnShieldMissing
			}
		}
	}

	if info.endgame {
		score /= kingSafetyEgDivisor
	}
	return score
}

// development scores minor pieces still at home and a castled king during
// the opening. The weight is derived from the board's own move counter.
func development(b *board.Board, c board.Color) int {
	weight := developmentMoves + 1 - b.FullMoveNumber
	if weight <= 0 {
		return 0
	}
	weight = min(weight, developmentMoves)

	score := 0
	minor := [2]board.Piece{board.NewPiece(board.Knight, c), board.NewPiece(board.Bishop, c)}
	for i, home := range minorHomeSquares {
		if b.Squares[relativeSquare(home, c)] == minor[i/2] {
			score += undevelopedMinorPenalty
		}
	}
	king := board.NewPiece(board.King, c)
	for _, sq := range castledSquares {
		if b.Squares[relativeSquare(sq, c)] == king {
			score += castledKingBonus
		}
	}

	return score * weight / developmentMoves
}
