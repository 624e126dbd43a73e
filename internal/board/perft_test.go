package board

import "testing"

// Perft counts the number of leaf nodes at the given depth.
// This is the standard way to verify move generation correctness.
func perft(b Board, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := b.LegalMoves()
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		nodes += perft(b.Apply(m), depth-1)
	}
	return nodes
}

func runPerft(t *testing.T, fen string, tests []struct {
	depth    int
	expected int64
}) {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	for _, tc := range tests {
		if tc.depth >= 3 && testing.Short() {
			continue
		}
		got := perft(b, tc.depth)
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	runPerft(t, StartFEN, []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	})
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
// FEN: r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -
func TestPerftKiwipete(t *testing.T) {
	runPerft(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	})
}

// TestPerftPosition3 tests en passant edge cases.
// FEN: 8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -
func TestPerftPosition3(t *testing.T) {
	runPerft(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	})
}

// TestPerftEnPassantPin tests the en passant horizontal pin edge case.
// Black pawn on e4 can capture en passant d3, but this would expose the black king
// on a4 to the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	b := MustParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")

	for _, m := range b.LegalMoves() {
		if m.IsEnPassant() {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	// Depth 1: Ka3, Ka5, Kb3, Kb4, Kb5, e3 = 6 moves
	runPerft(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []struct {
		depth    int
		expected int64
	}{
		{1, 6},
		{2, 94},
	})
}
