package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate - already checkmate
	// White: Ka1, Ra8
	// Black: Kh8, pawns on g7 and h7 blocking escape
	b := MustParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")

	t.Log("Checkmate position:")
	t.Log(b.String())

	if !b.InCheck(Black) {
		t.Fatal("Expected black to be in check")
	}
	if n := len(b.LegalMoves()); n != 0 {
		t.Errorf("Expected 0 legal moves, got %d", n)
	}
	if !b.IsCheckmate(Black) {
		t.Error("Expected checkmate but got false")
	}
	if b.IsStalemate(Black) {
		t.Error("Checkmate must not be reported as stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// King CAN escape - black king on h8 can take the rook on g8
	b := MustParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")

	moves := b.LegalMoves()
	t.Log("Black legal moves:", len(moves))
	for _, m := range moves {
		t.Log("  Move:", m)
	}

	if b.IsCheckmate(Black) {
		t.Error("Expected NOT checkmate but got true")
	}
}

func TestFoolsMate(t *testing.T) {
	b := NewBoard()
	for _, san := range []string{"f3", "e5", "g4", "Qh4#"} {
		m, err := b.ParseSAN(san)
		if err != nil {
			t.Fatalf("ParseSAN(%q): %v", san, err)
		}
		b = b.Apply(m)
	}

	if !b.InCheck(White) {
		t.Error("Expected white to be in check after Qh4")
	}
	if n := len(b.MovesFor(White)); n != 0 {
		t.Errorf("Expected white to have 0 legal moves, got %d", n)
	}
	if !b.IsCheckmate(White) {
		t.Error("Expected checkmate after fool's mate")
	}
}

func TestStalemate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		// Black king h8 boxed in by white king f7 and queen g6
		{"queen","7k/5K2/6Q1/8/8/8/8/8 b - - 0 1"},
		// Lone kings plus a pawn: black king a8, white pawn a7, white king b6
		{"pawn", "k7/P7/1K6/8/8/8/8/8 b - - 0 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseFEN(tc.fen)
			if b.InCheck(Black) {
				t.Fatal("Stalemate fixture must not be in check")
			}
			if !b.IsStalemate(Black) {
				t.Error("Expected stalemate")
			}
			if b.IsCheckmate(Black) {
				t.Error("Stalemate must not be reported as checkmate")
			}
		})
	}
}
