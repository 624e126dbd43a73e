package board

import (
	"fmt"
	"strconv"
	"strings"
)

// CastlingRights represents the available castling options.
// Rights only ever transition from set to cleared.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// mirror swaps white and black rights.
func (cr CastlingRights) mirror() CastlingRights {
	return (cr&(WhiteKingSideCastle|WhiteQueenSideCastle))<<2 | (cr&(BlackKingSideCastle|BlackQueenSideCastle))>>2
}

// Board is a complete chess position: piece placement plus side-state.
// It is a value type; copying a Board yields an independent position and
// Apply never mutates its receiver.
type Board struct {
	Squares [64]Piece

	// Side-state
	Turn           Color
	Castling       CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Moves since last pawn move or capture (for 50-move rule)
	FullMoveNumber int    // Full move counter, starts at 1
}

// NewBoard creates the starting position.
func NewBoard() Board {
	b, _ := ParseFEN(StartFEN)
	return b
}

// Empty returns a board with no pieces, White to move and no castling rights.
func Empty() Board {
	var b Board
	for i := range b.Squares {
		b.Squares[i] = NoPiece
	}
	b.EnPassant = NoSquare
	b.FullMoveNumber = 1
	return b
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (b *Board) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return b.Squares[sq]
}

// IsEmpty returns true if the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.Squares[sq] == NoPiece
}

// Put returns a copy of the board with piece placed on sq.
// Used for fixture construction; it does not touch side-state.
func (b Board) Put(sq Square, p Piece) Board {
	b.Squares[sq] = p
	return b
}

// KingSquare locates the king of the given color, or NoSquare if absent.
func (b *Board) KingSquare(c Color) Square {
	king := NewPiece(King, c)
	for sq := Square(0); sq < NoSquare; sq++ {
		if b.Squares[sq] == king {
			return sq
		}
	}
	return NoSquare
}

// Count returns the number of pieces of the given kind.
func (b *Board) Count(p Piece) int {
	n := 0
	for _, q := range b.Squares {
		if q == p {
			n++
		}
	}
	return n
}

// OpeningMoves is how long the full-move counter stays part of Key.
// Nothing that reads the counter may change its result after this move.
const OpeningMoves = 10

// Key returns the canonical serialization used as the transposition key:
// one character per square followed by turn, castling rights and en passant.
// Within the opening the full-move number is appended as well.
func (b *Board) Key() string {
	var sb strings.Builder
	sb.Grow(72)
	for _, p := range b.Squares {
		sb.WriteString(p.String())
	}
	if b.Turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteString(b.Castling.String())
	sb.WriteString(b.EnPassant.String())
	if b.FullMoveNumber <= OpeningMoves {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(b.FullMoveNumber))
	}
	return sb.String()
}

// Mirror returns the color-swapped board: ranks flipped, piece colors
// swapped, side to move, castling rights and en passant target mirrored.
func (b Board) Mirror() Board {
	m := b
	for sq := Square(0); sq < NoSquare; sq++ {
		m.Squares[sq.Mirror()] = b.Squares[sq].Flip()
	}
	m.Turn = b.Turn.Other()
	m.Castling = b.Castling.mirror()
	m.EnPassant = b.EnPassant.Mirror()
	return m
}

// String returns a visual representation of the board.
func (b *Board) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			s += b.PieceAt(NewSquare(file, rank)).String() + " "
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", b.Turn)
	s += fmt.Sprintf("Castling: %s\n", b.Castling)
	s += fmt.Sprintf("En passant: %s\n", b.EnPassant)
	s += fmt.Sprintf("Half-move clock: %d\n", b.HalfMoveClock)
	s += fmt.Sprintf("Full move: %d\n", b.FullMoveNumber)
	return s
}

// Validate checks if the position is valid.
func (b *Board) Validate() error {
	// Check that each side has exactly one king
	if b.Count(WhiteKing) != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if b.Count(BlackKing) != 1 {
		return fmt.Errorf("black must have exactly one king")
	}

	// Check that pawns are not on rank 1 or 8
	for file := 0; file < 8; file++ {
		for _, rank := range []int{0, 7} {
			if b.PieceAt(NewSquare(file, rank)).Type() == Pawn {
				return fmt.Errorf("pawns cannot be on rank 1 or 8")
			}
		}
	}

	// The side that just moved cannot be in check
	if b.InCheck(b.Turn.Other()) {
		return fmt.Errorf("%s king is in check but it is %s to move", b.Turn.Other(), b.Turn)
	}

	return nil
}

// Material returns the material balance excluding kings (positive favors white).
func (b *Board) Material() int {
	score := 0
	for _, p := range b.Squares {
		if p == NoPiece || p.Type() == King {
			continue
		}
		if p.Color() == White {
			score += p.Value()
		} else {
			score -= p.Value()
		}
	}
	return score
}

// HasNonPawnMaterial returns true if the given side has a knight, bishop, rook or queen.
// Used for null move pruning (avoid in pure pawn endgames due to zugzwang).
func (b *Board) HasNonPawnMaterial(c Color) bool {
	for _, p := range b.Squares {
		if p == NoPiece || p.Color() != c {
			continue
		}
		if pt := p.Type(); pt != Pawn && pt != King {
			return true
		}
	}
	return false
}
