package board

import (
	"fmt"
	"strings"
)

// SAN converts a move to Standard Algebraic Notation.
// The check and mate suffixes are computed by testing the resulting board.
func (b *Board) SAN(m Move) string {
	if m.IsNone() {
		return "-"
	}

	piece := b.PieceAt(m.From)
	if piece == NoPiece {
		return m.String() // Fallback to coordinate form
	}

	var sb strings.Builder

	switch {
	case m.Has(FlagCastleKingside):
		sb.WriteString("O-O")
	case m.Has(FlagCastleQueenside):
		sb.WriteString("O-O-O")
	default:
		pt := piece.Type()

		if pt != Pawn {
			sb.WriteByte(pt.Letter())
			sb.WriteString(b.disambiguation(m, piece))
		}

		if m.IsCapture() {
			if pt == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}

		sb.WriteString(m.To.String())

		if m.IsPromotion() {
			promo := m.Promotion
			if promo == NoPieceType {
				promo = Queen
			}
			sb.WriteByte('=')
			sb.WriteByte(promo.Letter())
		}
	}

	next := b.Apply(m)
	them := piece.Color().Other()
	if next.InCheck(them) {
		if next.HasLegalMoves(them) {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same kind can reach the same destination.
func (b *Board) disambiguation(m Move, piece Piece) string {
	var candidates []Square
	for sq := Square(0); sq < NoSquare; sq++ {
		if sq == m.From || b.Squares[sq] != piece {
			continue
		}
		for _, other := range b.ValidMoves(sq, true) {
			if other.To == m.To {
				candidates = append(candidates, sq)
				break
			}
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + m.From.File()))
	}
	if !sameRank {
		return string(rune('1' + m.From.Rank()))
	}
	return m.From.String()
}

// ParseSAN parses a SAN string and returns the matching legal move.
func (b *Board) ParseSAN(s string) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	moves := b.LegalMoves()

	// Handle castling
	switch s {
	case "O-O", "0-0":
		for _, m := range moves {
			if m.Has(FlagCastleKingside) {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("illegal move: %s", orig)
	case "O-O-O", "0-0-0":
		for _, m := range moves {
			if m.Has(FlagCastleQueenside) {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("illegal move: %s", orig)
	}

	// Parse promotion
	promo := NoPieceType
	if idx := strings.Index(s, "="); idx >= 0 && idx+1 < len(s) {
		switch s[idx+1] {
		case 'N':
			promo = Knight
		case 'B':
			promo = Bishop
		case 'R':
			promo = Rook
		case 'Q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece in %s", orig)
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		switch s[0] {
		case 'N':
			pt = Knight
		case 'B':
			pt = Bishop
		case 'R':
			pt = Rook
		case 'Q':
			pt = Queen
		case 'K':
			pt = King
		default:
			return NoMove, fmt.Errorf("invalid piece letter in %s", orig)
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("invalid SAN: %s", orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		if c >= 'a' && c <= 'h' {
			disambigFile = int(c - 'a')
		} else if c >= '1' && c <= '8' {
			disambigRank = int(c - '1')
		}
	}

	for _, m := range moves {
		if m.To != dest || b.PieceAt(m.From).Type() != pt {
			continue
		}
		if disambigFile >= 0 && m.From.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && m.From.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if promo != NoPieceType {
			if !m.IsPromotion() {
				continue
			}
			m = m.WithPromotion(promo)
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("illegal move: %s", orig)
}

// MovesToSAN converts a sequence of moves played from b to SAN notation.
func MovesToSAN(b Board, moves []Move) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = b.SAN(m)
		b = b.Apply(m)
	}
	return result
}
