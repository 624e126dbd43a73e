package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Board.
func ParseFEN(fen string) (Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Board{}, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	b := Empty()

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(&b, parts[0]); err != nil {
		return Board{}, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		b.Turn = White
	case "b":
		b.Turn = Black
	default:
		return Board{}, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(&b, parts[2]); err != nil {
		return Board{}, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return Board{}, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		b.EnPassant = sq
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return Board{}, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		b.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return Board{}, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		b.FullMoveNumber = fmn
	}

	return b, nil
}

// MustParseFEN is like ParseFEN but panics on error. Intended for fixtures.
func MustParseFEN(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return b
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for row, rankStr := range ranks {
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", 8-row)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
			} else {
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				sq, _ := squareAt(row, file)
				b.Squares[sq] = piece
				file++
			}
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", 8-row, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(b *Board, castling string) error {
	if castling == "-" {
		b.Castling = NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			b.Castling |= WhiteKingSideCastle
		case 'Q':
			b.Castling |= WhiteQueenSideCastle
		case 'k':
			b.Castling |= BlackKingSideCastle
		case 'q':
			b.Castling |= BlackQueenSideCastle
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}

	return nil
}

// FEN returns the FEN representation of the board.
func (b *Board) FEN() string {
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		empty := 0
		for file := 0; file < 8; file++ {
			sq, _ := squareAt(row, file)
			piece := b.Squares[sq]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.Turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.Castling.String())

	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.FullMoveNumber))

	return sb.String()
}
