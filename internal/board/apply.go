package board

// rookHomeRights maps a rook home square to the castling right it carries.
var rookHomeRights = map[Square]CastlingRights{
	H1: WhiteKingSideCastle,
	A1: WhiteQueenSideCastle,
	H8: BlackKingSideCastle,
	A8: BlackQueenSideCastle,
}

// Apply returns the board that results from playing m. The receiver is
// never modified; the whole new position is built before it is returned.
// Side effects handled: captures, en passant removal, castling rook
// relocation, promotion, castling-right revocation, en passant target,
// clocks and turn.
func (b Board) Apply(m Move) Board {
	next := b
	piece := b.Squares[m.From]
	if piece == NoPiece {
		return next
	}
	us := piece.Color()
	captured := b.Squares[m.To]

	next.Squares[m.From] = NoPiece
	next.Squares[m.To] = piece

	switch {
	case m.IsEnPassant():
		// The captured pawn sits beside the mover, on the origin row.
		victim, _ := squareAt(m.From.Row(), m.To.File())
		next.Squares[victim] = NoPiece
	case m.IsCastling():
		cs := castleSpecs[us][0]
		if m.Has(FlagCastleQueenside) {
			cs = castleSpecs[us][1]
		}
		next.Squares[cs.rook] = NoPiece
		next.Squares[(cs.king+cs.dest)/2] = NewPiece(Rook, us)
	case m.IsPromotion():
		promo := m.Promotion
		if promo == NoPieceType || promo == Pawn || promo == King {
			promo = Queen
		}
		next.Squares[m.To] = NewPiece(promo, us)
	}

	// Castling rights only ever go from set to cleared.
	if piece.Type() == King {
		next.Castling &^= castleRight(us, true) | castleRight(us, false)
	}
	if r, ok := rookHomeRights[m.From]; ok {
		next.Castling &^= r
	}
	if r, ok := rookHomeRights[m.To]; ok {
		next.Castling &^= r
	}

	// The en passant target lives for exactly one ply.
	next.EnPassant = NoSquare
	if m.Has(FlagDoublePush) {
		next.EnPassant, _ = squareAt((m.From.Row()+m.To.Row())/2, m.From.File())
	}

	if piece.Type() == Pawn || captured != NoPiece || m.IsEnPassant() {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if us == Black {
		next.FullMoveNumber++
	}
	next.Turn = us.Other()

	return next
}

// ApplyNull passes the turn without moving (used by null move pruning).
func (b Board) ApplyNull() Board {
	next := b
	next.EnPassant = NoSquare
	if b.Turn == Black {
		next.FullMoveNumber++
	}
	next.Turn = b.Turn.Other()
	return next
}
