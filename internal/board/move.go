package board

import (
	"fmt"
	"strings"
)

// MoveFlag is the tag set attached to a generated move.
type MoveFlag uint8

// Move flags
const (
	FlagCapture MoveFlag = 1 << iota
	FlagEnPassant
	FlagCastleKingside
	FlagCastleQueenside
	FlagPromotion
	FlagDoublePush
)

// Move is a candidate transition from one square to another.
// The zero value is not a valid move; use NoMove to signal "none".
type Move struct {
	From      Square
	To        Square
	Flags     MoveFlag
	Promotion PieceType // only meaningful when FlagPromotion is set
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare, Promotion: NoPieceType}

// IsNone returns true for NoMove.
func (m Move) IsNone() bool {
	return m.From >= NoSquare || m.To >= NoSquare
}

// Has reports whether all bits of f are set on the move.
func (m Move) Has(f MoveFlag) bool {
	return m.Flags&f == f
}

// IsCapture returns true if this move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return m.Flags&FlagCapture != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flags&FlagEnPassant != 0
}

// IsCastling returns true if this is a castling move (king's movement).
func (m Move) IsCastling() bool {
	return m.Flags&(FlagCastleKingside|FlagCastleQueenside) != 0
}

// IsPromotion returns true if this move reaches the last rank with a pawn.
func (m Move) IsPromotion() bool {
	return m.Flags&FlagPromotion != 0
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// WithPromotion returns a copy of a promotion move promoting to pt instead.
// Non-promotion moves are returned unchanged.
func (m Move) WithPromotion(pt PieceType) Move {
	if !m.IsPromotion() {
		return m
	}
	m.Promotion = pt
	return m
}

// Same reports whether two moves describe the same transition,
// ignoring the chosen promotion piece.
func (m Move) Same(o Move) bool {
	return m.From == o.From && m.To == o.To
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}

	s := m.From.String() + m.To.String()

	if m.IsPromotion() {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}

	return s
}

// ParseMove parses a coordinate-notation move ("e2e4", "e7e8n") and resolves
// it against the legal moves of the side to move.
func (b *Board) ParseMove(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	promo := Queen
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}

	piece := b.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	if piece.Color() != b.Turn {
		return NoMove, fmt.Errorf("piece at %s does not belong to %s", from, b.Turn)
	}

	for _, m := range b.ValidMoves(from, true) {
		if m.To == to {
			return m.WithPromotion(promo), nil
		}
	}

	return NoMove, fmt.Errorf("illegal move: %s", s)
}
