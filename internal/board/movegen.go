package board

// PseudoMoves generates moves for the piece on sq without checking whether
// they leave the mover's king in check. Castling is the exception: its
// attacked-square conditions are part of generation.
func (b *Board) PseudoMoves(sq Square) []Move {
	p := b.PieceAt(sq)
	if p == NoPiece {
		return nil
	}

	moves := make([]Move, 0, 16)
	switch p.Type() {
	case Pawn:
		moves = b.pawnMoves(moves, sq, p.Color())
	case Knight:
		moves = b.leaperMoves(moves, sq, p.Color(), knightOffsets[:])
	case Bishop:
		moves = b.sliderMoves(moves, sq, p.Color(), bishopDirections[:])
	case Rook:
		moves = b.sliderMoves(moves, sq, p.Color(), rookDirections[:])
	case Queen:
		moves = b.sliderMoves(moves, sq, p.Color(), rookDirections[:])
		moves = b.sliderMoves(moves, sq, p.Color(), bishopDirections[:])
	case King:
		moves = b.leaperMoves(moves, sq, p.Color(), kingOffsets[:])
		moves = b.castlingMoves(moves, sq, p.Color())
	}
	return moves
}

// ValidMoves returns the moves of the piece on sq. With enforceLegality set,
// every move is simulated and discarded if it leaves the mover in check; this
// single gate excludes pinned-piece moves, discovered checks and king moves
// into attacked squares.
func (b *Board) ValidMoves(sq Square, enforceLegality bool) []Move {
	pseudo := b.PseudoMoves(sq)
	if !enforceLegality || len(pseudo) == 0 {
		return pseudo
	}

	us := b.Squares[sq].Color()
	legal := pseudo[:0]
	for _, m := range pseudo {
		next := b.Apply(m)
		if !next.InCheck(us) {
			legal = append(legal, m)
		}
	}
	return legal
}

// MovesFor returns all legal moves for the pieces of color c.
func (b *Board) MovesFor(c Color) []Move {
	moves := make([]Move, 0, 48)
	for sq := Square(0); sq < NoSquare; sq++ {
		p := b.Squares[sq]
		if p == NoPiece || p.Color() != c {
			continue
		}
		moves = append(moves, b.ValidMoves(sq, true)...)
	}
	return moves
}

// LegalMoves returns all legal moves for the side to move.
func (b *Board) LegalMoves() []Move {
	return b.MovesFor(b.Turn)
}

// Captures returns the legal capturing moves for the side to move.
func (b *Board) Captures() []Move {
	moves := b.LegalMoves()
	caps := moves[:0]
	for _, m := range moves {
		if m.IsCapture() {
			caps = append(caps, m)
		}
	}
	return caps
}

// HasLegalMoves returns true if color c has at least one legal move.
func (b *Board) HasLegalMoves(c Color) bool {
	for sq := Square(0); sq < NoSquare; sq++ {
		p := b.Squares[sq]
		if p == NoPiece || p.Color() != c {
			continue
		}
		if len(b.ValidMoves(sq, true)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if color c is in check and has no legal moves.
func (b *Board) IsCheckmate(c Color) bool {
	return b.InCheck(c) && !b.HasLegalMoves(c)
}

// IsStalemate returns true if color c is not in check but has no legal moves.
func (b *Board) IsStalemate(c Color) bool {
	return !b.InCheck(c) && !b.HasLegalMoves(c)
}

// pawnMoves adds pushes, double pushes, captures and en passant.
func (b *Board) pawnMoves(moves []Move, sq Square, us Color) []Move {
	row, file := sq.Row(), sq.File()
	fwd := pawnForward(us)
	startRow, lastRow := 6, 0
	if us == Black {
		startRow, lastRow = 1, 7
	}

	add := func(to Square, flags MoveFlag) {
		m := Move{From: sq, To: to, Flags: flags, Promotion: NoPieceType}
		if to.Row() == lastRow {
			m.Flags |= FlagPromotion
			m.Promotion = Queen
		}
		moves = append(moves, m)
	}

	// Pushes
	if one, ok := squareAt(row+fwd, file); ok && b.Squares[one] == NoPiece {
		add(one, 0)
		if row == startRow {
			if two, ok := squareAt(row+2*fwd, file); ok && b.Squares[two] == NoPiece {
				add(two, FlagDoublePush)
			}
		}
	}

	// Captures
	for _, df := range [2]int{-1, 1} {
		to, ok := squareAt(row+fwd, file+df)
		if !ok {
			continue
		}
		target := b.Squares[to]
		if target != NoPiece && target.Color() != us {
			add(to, FlagCapture)
			continue
		}
		// En passant is only available to the side to move, and only onto
		// the recorded target square.
		if target == NoPiece && to == b.EnPassant && us == b.Turn {
			victim, _ := squareAt(row, file+df)
			if b.Squares[victim] == NewPiece(Pawn, us.Other()) {
				add(to, FlagCapture|FlagEnPassant)
			}
		}
	}

	return moves
}

// leaperMoves adds knight or king steps that stay on the board and do not
// land on a friendly piece.
func (b *Board) leaperMoves(moves []Move, sq Square, us Color, offsets []offset) []Move {
	row, file := sq.Row(), sq.File()
	for _, o := range offsets {
		to, ok := squareAt(row+o.dr, file+o.df)
		if !ok {
			continue
		}
		target := b.Squares[to]
		if target == NoPiece {
			moves = append(moves, Move{From: sq, To: to, Promotion: NoPieceType})
		} else if target.Color() != us {
			moves = append(moves, Move{From: sq, To: to, Flags: FlagCapture, Promotion: NoPieceType})
		}
	}
	return moves
}

// sliderMoves ray-casts in each direction, stopping at the first occupied
// square and including it only when it holds an enemy piece.
func (b *Board) sliderMoves(moves []Move, sq Square, us Color, dirs []offset) []Move {
	for _, d := range dirs {
		r, f := sq.Row()+d.dr, sq.File()+d.df
		for {
			to, ok := squareAt(r, f)
			if !ok {
				break
			}
			target := b.Squares[to]
			if target == NoPiece {
				moves = append(moves, Move{From: sq, To: to, Promotion: NoPieceType})
			} else {
				if target.Color() != us {
					moves = append(moves, Move{From: sq, To: to, Flags: FlagCapture, Promotion: NoPieceType})
				}
				break
			}
			r += d.dr
			f += d.df
		}
	}
	return moves
}

// castling geometry per color: king home, rook homes, and the squares that
// must be empty or safe.
type castleSpec struct {
	king, rook, dest Square
	empty            []Square // between king and rook
	safe             []Square // traversed by the king, destination included
	flag             MoveFlag
	kingSide         bool
}

var castleSpecs = [2][2]castleSpec{
	White: {
		{king: E1, rook: H1, dest: G1, empty: []Square{F1, G1}, safe: []Square{F1, G1}, flag: FlagCastleKingside, kingSide: true},
		{king: E1, rook: A1, dest: C1, empty: []Square{D1, C1, B1}, safe: []Square{D1, C1}, flag: FlagCastleQueenside},
	},
	Black: {
		{king: E8, rook: H8, dest: G8, empty: []Square{F8, G8}, safe: []Square{F8, G8}, flag: FlagCastleKingside, kingSide: true},
		{king: E8, rook: A8, dest: C8, empty: []Square{D8, C8, B8}, safe: []Square{D8, C8}, flag: FlagCastleQueenside},
	},
}

// castlingMoves adds castling when the king and rook are unmoved (rights
// still set), the path is empty, and the king neither starts in, crosses,
// nor lands on an attacked square.
func (b *Board) castlingMoves(moves []Move, sq Square, us Color) []Move {
	them := us.Other()
	for _, cs := range castleSpecs[us] {
		if sq != cs.king || !b.Castling.CanCastle(us, cs.kingSide) {
			continue
		}
		if b.Squares[cs.rook] != NewPiece(Rook, us) {
			continue
		}
		if !b.allEmpty(cs.empty) {
			continue
		}
		if b.IsSquareAttacked(sq, them) || b.anyAttacked(cs.safe, them) {
			continue
		}
		moves = append(moves, Move{From: sq, To: cs.dest, Flags: cs.flag, Promotion: NoPieceType})
	}
	return moves
}

func (b *Board) allEmpty(squares []Square) bool {
	for _, s := range squares {
		if b.Squares[s] != NoPiece {
			return false
		}
	}
	return true
}

func (b *Board) anyAttacked(squares []Square, by Color) bool {
	for _, s := range squares {
		if b.IsSquareAttacked(s, by) {
			return true
		}
	}
	return false
}
