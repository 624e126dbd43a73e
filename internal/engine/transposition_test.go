package engine

import (
	"testing"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

func TestTranspositionStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(1024)
	b := board.NewBoard()
	key := b.Key()

	if _, ok := tt.Probe(key); ok {
		t.Fatal("Expected cache miss on empty table")
	}

	m := board.Move{From: board.E2, To: board.E4, Flags: board.FlagDoublePush, Promotion: board.NoPieceType}
	tt.Store(key, 4, 35, TTExact, m)

	entry, ok := tt.Probe(key)
	if !ok {
		t.Fatal("Expected cache hit after store")
	}
	if entry.Depth != 4 || entry.Score != 35 || entry.Flag != TTExact || entry.BestMove != m {
		t.Errorf("unexpected entry %+v", entry)
	}
	if tt.Len() != 1 {
		t.Errorf("Len = %d, want 1", tt.Len())
	}
	t.Logf("hit rate %.1f%%", tt.HitRate())
}

func TestTranspositionKeyIncludesSideState(t *testing.T) {
	tt := NewTranspositionTable(1 << 12)
	withRights := board.MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	noRights := board.MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1")

	if withRights.Key() == noRights.Key() {
		t.Fatal("keys must differ when castling rights differ")
	}

	tt.Store(withRights.Key(), 3, 10, TTExact, board.NoMove)
	if _, ok := tt.Probe(noRights.Key()); ok {
		t.Error("probe with different castling rights must miss")
	}
}

func TestTranspositionCollisionOverwrites(t *testing.T) {
	// A single slot: every key collides.
	tt := NewTranspositionTable(1)
	if tt.Size() != 1 {
		t.Fatalf("Size = %d, want 1", tt.Size())
	}

	a := board.NewBoard()
	b := a.Apply(board.Move{From: board.E2, To: board.E4, Flags: board.FlagDoublePush, Promotion: board.NoPieceType})

	tt.Store(a.Key(), 5, 1, TTExact, board.NoMove)
	tt.Store(b.Key(), 2, 2, TTLowerBound, board.NoMove)

	if _, ok := tt.Probe(a.Key()); ok {
		t.Error("overwritten entry must not be returned")
	}
	entry, ok := tt.Probe(b.Key())
	if !ok || entry.Score != 2 || entry.Flag != TTLowerBound {
		t.Errorf("Probe(b) = %+v, %v", entry, ok)
	}
	if tt.Len() != 1 {
		t.Errorf("Len = %d, want 1", tt.Len())
	}
}

func TestTranspositionClearIfOver(t *testing.T) {
	tt := NewTranspositionTable(1 << 10)
	b := board.NewBoard()
	for _, m := range b.LegalMoves() {
		next := b.Apply(m)
		tt.Store(next.Key(), 1, 0, TTExact, board.NoMove)
	}
	n := tt.Len()
	if n == 0 {
		t.Fatal("expected entries")
	}

	if tt.ClearIfOver(n) {
		t.Error("table at the limit must not be cleared")
	}
	if !tt.ClearIfOver(n - 1) {
		t.Error("table over the limit must be cleared")
	}
	if tt.Len() != 0 || tt.HashFull() != 0 {
		t.Errorf("after clear: Len = %d, HashFull = %d", tt.Len(), tt.HashFull())
	}
}

func TestMateScoreAdjustment(t *testing.T) {
	tests := []struct {
		score, ply int
	}{
		{MateScore - 5, 3},
		{-(MateScore - 7), 4},
		{250, 10},
	}
	for _, tc := range tests {
		stored := AdjustScoreToTT(tc.score, tc.ply)
		if got := AdjustScoreFromTT(stored, tc.ply); got != tc.score {
			t.Errorf("round trip of %d at ply %d = %d", tc.score, tc.ply, got)
		}
	}

	// A mate found 5 plies from a node at ply 3 is 2 plies from that node;
	// probing the same node at ply 1 yields a mate 3 plies from the root.
	stored := AdjustScoreToTT(MateScore-5, 3)
	if got := AdjustScoreFromTT(stored, 1); got != MateScore-3 {
		t.Errorf("AdjustScoreFromTT = %d, want %d", got, MateScore-3)
	}
}
