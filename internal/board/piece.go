package board

import "strings"

// Color is a side: White, Black, or NoColor for an empty square.
type Color uint8

const (
	White Color = iota
	Black
	NoColor
)

var colorNames = [...]string{"White", "Black", "NoColor"}

// Other returns the opponent of c.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c > NoColor {
		return colorNames[NoColor]
	}
	return colorNames[c]
}

// PieceType is the closed set of piece kinds.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

var pieceTypeNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

func (pt PieceType) String() string {
	if pt > NoPieceType {
		return pieceTypeNames[NoPieceType]
	}
	return pieceTypeNames[pt]
}

// Letter is the SAN letter of pt, a space for NoPieceType.
func (pt PieceType) Letter() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return pieceChars[pt]
}

// PieceValue holds material values in centipawns, indexed by PieceType.
// The king's value only serves move ordering.
var PieceValue = [NoPieceType + 1]int{100, 320, 330, 500, 900, 20000, 0}

// Value is the material value of pt in centipawns.
func (pt PieceType) Value() int {
	if pt > NoPieceType {
		return 0
	}
	return PieceValue[pt]
}

// Piece is a colored piece. White pieces come first, in PieceType order,
// then the black ones, then NoPiece.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// pieceChars is indexed by Piece; the trailing '.' marks an empty square.
const pieceChars = "PNBRQKpnbrqk."

const kindsPerColor = Piece(NoPieceType)

// NewPiece returns the piece of kind pt and color c, or NoPiece if either
// is out of range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(c)*kindsPerColor + Piece(pt)
}

func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % kindsPerColor)
}

func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / kindsPerColor)
}

// Flip swaps the piece's color; NoPiece stays NoPiece.
func (p Piece) Flip() Piece {
	return NewPiece(p.Type(), p.Color().Other())
}

// Value is the material value of p's kind.
func (p Piece) Value() int {
	return p.Type().Value()
}

// String is the FEN letter of p, "." when empty.
func (p Piece) String() string {
	if p > NoPiece {
		p = NoPiece
	}
	return pieceChars[p : p+1]
}

// PieceFromChar parses a FEN letter. Anything else yields NoPiece.
func PieceFromChar(c byte) Piece {
	i := strings.IndexByte(pieceChars[:NoPiece], c)
	if i < 0 {
		return NoPiece
	}
	return Piece(i)
}
