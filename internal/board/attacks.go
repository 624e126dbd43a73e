package board

// offset is a (row, file) displacement on the grid.
type offset struct {
	dr, df int
}

// Fixed offset tables for leapers and ray directions for sliders.
var (
	knightOffsets = [8]offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8]offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

	rookDirections   = [4]offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirections = [4]offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// pawnForward returns the row delta a pawn of color c advances by.
// White moves towards row 0 (rank 8).
func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// IsSquareAttacked returns true if any piece of byColor could reach sq in one ply.
// Turn and pins are ignored: this answers only whether the square is
// physically reachable, which is what check and castling tests need.
func (b *Board) IsSquareAttacked(sq Square, byColor Color) bool {
	row, file := sq.Row(), sq.File()

	// Pawns attack diagonally forward, so look one row "behind" the target
	// from the attacker's point of view.
	pawn := NewPiece(Pawn, byColor)
	pr := row - pawnForward(byColor)
	for _, df := range [2]int{-1, 1} {
		if s, ok := squareAt(pr, file+df); ok && b.Squares[s] == pawn {
			return true
		}
	}

	knight := NewPiece(Knight, byColor)
	for _, o := range knightOffsets {
		if s, ok := squareAt(row+o.dr, file+o.df); ok && b.Squares[s] == knight {
			return true
		}
	}

	king := NewPiece(King, byColor)
	for _, o := range kingOffsets {
		if s, ok := squareAt(row+o.dr, file+o.df); ok && b.Squares[s] == king {
			return true
		}
	}

	queen := NewPiece(Queen, byColor)
	if b.rayHits(row, file, rookDirections[:], NewPiece(Rook, byColor), queen) {
		return true
	}
	return b.rayHits(row, file, bishopDirections[:], NewPiece(Bishop, byColor), queen)
}

// rayHits walks each direction until the first occupied square and reports
// whether that blocker is one of the two given sliders.
func (b *Board) rayHits(row, file int, dirs []offset, slider, queen Piece) bool {
	for _, d := range dirs {
		r, f := row+d.dr, file+d.df
		for {
			s, ok := squareAt(r, f)
			if !ok {
				break
			}
			if p := b.Squares[s]; p != NoPiece {
				if p == slider || p == queen {
					return true
				}
				break
			}
			r += d.dr
			f += d.df
		}
	}
	return false
}

// InCheck returns true if the king of color c is attacked.
// A board without that king is never in check.
func (b *Board) InCheck(c Color) bool {
	ksq := b.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return b.IsSquareAttacked(ksq, c.Other())
}

// Attackers counts the pieces of byColor attacking sq; used by king-safety terms.
func (b *Board) Attackers(sq Square, byColor Color) int {
	n := 0
	for from := Square(0); from < NoSquare; from++ {
		p := b.Squares[from]
		if p == NoPiece || p.Color() != byColor {
			continue
		}
		if b.attacks(from, sq) {
			n++
		}
	}
	return n
}

// attacks reports whether the piece on from attacks to.
func (b *Board) attacks(from, to Square) bool {
	p := b.Squares[from]
	dr := to.Row() - from.Row()
	df := to.File() - from.File()
	switch p.Type() {
	case Pawn:
		return dr == pawnForward(p.Color()) && (df == 1 || df == -1)
	case Knight:
		return (abs(dr) == 2 && abs(df) == 1) || (abs(dr) == 1 && abs(df) == 2)
	case King:
		return max(abs(dr), abs(df)) == 1
	case Rook:
		return (dr == 0 || df == 0) && b.clearBetween(from, to)
	case Bishop:
		return abs(dr) == abs(df) && dr != 0 && b.clearBetween(from, to)
	case Queen:
		return (dr == 0 || df == 0 || abs(dr) == abs(df)) && b.clearBetween(from, to)
	}
	return false
}

// clearBetween reports whether every square strictly between two aligned squares is empty.
func (b *Board) clearBetween(from, to Square) bool {
	if from == to {
		return false
	}
	sr, sf := sign(to.Row()-from.Row()), sign(to.File()-from.File())
	r, f := from.Row()+sr, from.File()+sf
	for r != to.Row() || f != to.File() {
		s, _ := squareAt(r, f)
		if b.Squares[s] != NoPiece {
			return false
		}
		r += sr
		f += sf
	}
	return true
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
