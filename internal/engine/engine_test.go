package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

func newTestEngine() *Engine {
	cfg := DefaultConfig()
	cfg.TTSize = 1 << 16
	return NewEngine(cfg)
}

func isLegalMove(b board.Board, m board.Move) bool {
	for _, legal := range b.LegalMoves() {
		if legal == m {
			return true
		}
	}
	return false
}

func TestSearchBasic(t *testing.T) {
	b := board.NewBoard()
	eng := newTestEngine()
	eng.SetDifficulty(Easy)

	move, err := eng.Search(b)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if move.IsNone() {
		t.Fatal("Search returned NoMove for starting position")
	}
	if !isLegalMove(b, move) {
		t.Errorf("Search returned illegal move %s", move)
	}
	t.Logf("Best move: %s", move.String())
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		mirror bool
		want   string
		score  int
	}{
		{"white", "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", false, "a1a8", MateScore - 1},
		{"black", "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", true, "a8a1", -(MateScore - 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := board.MustParseFEN(tc.fen)
			if tc.mirror {
				b = b.Mirror()
			}
			eng := newTestEngine()

			res, err := eng.SearchWithLimits(b, SearchLimits{Depth: 3})
			if err != nil {
				t.Fatalf("SearchWithLimits: %v", err)
			}
			if res.Move.String() != tc.want {
				t.Errorf("move = %s, want %s", res.Move, tc.want)
			}
			if res.Score != tc.score {
				t.Errorf("score = %d, want %d", res.Score, tc.score)
			}
			t.Logf("%s: %s (%s) pv=%v", tc.name, res.Move, ScoreToString(res.Score), res.PV)
		})
	}
}

func TestMateScoreMonotonicity(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		ply   int
	}{
		{"mate in 1", "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", 4, 1},
		// 1.Rb7 Kg8 2.Ra8#
		{"mate in 2", "7k/8/8/8/8/8/1R6/R5K1 w - - 0 1", 4, 3},
		// Rook ladder: 1.Rb6 confines the king, the rooks take turns checking.
		{"mate in 3", "8/6k1/8/8/8/8/1R6/R5K1 w - - 0 1", 6, 5},
	}

	prev := MateScore + 1
	for _, tc := range tests {
		res, err := newTestEngine().SearchWithLimits(board.MustParseFEN(tc.fen), SearchLimits{Depth: tc.depth})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		t.Logf("%s: %d (%s) pv=%v", tc.name, res.Score, ScoreToString(res.Score), res.PV)

		if !IsMateScore(res.Score) {
			t.Fatalf("%s: expected a mate score, got %d", tc.name, res.Score)
		}
		if res.Score != MateScore-tc.ply || MatePly(res.Score) != tc.ply {
			t.Errorf("%s: score = %d, want %d", tc.name, res.Score, MateScore-tc.ply)
		}
		if res.Score >= prev {
			t.Errorf("%s (%d) should score below the shorter mate (%d)", tc.name, res.Score, prev)
		}
		prev = res.Score
	}
}

func TestSearchDeterminism(t *testing.T) {
	b := board.NewBoard()
	limits := SearchLimits{Depth: 3}

	eng := newTestEngine()
	first, err := eng.SearchWithLimits(b, limits)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		eng.NewGame()
		again, err := eng.SearchWithLimits(b, limits)
		if err != nil {
			t.Fatal(err)
		}
		if again.Move != first.Move || again.Score != first.Score {
			t.Errorf("run %d: got %s (%d), want %s (%d)", i+1, again.Move, again.Score, first.Move, first.Score)
		}
	}

	fresh, err := newTestEngine().SearchWithLimits(b, limits)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Move != first.Move {
		t.Errorf("fresh engine: got %s, want %s", fresh.Move, first.Move)
	}
}

func TestCapturesHangingQueen(t *testing.T) {
	b := board.MustParseFEN("rnb1kbnr/pppp1ppp/8/4p3/4P2q/5N2/PPPP1PPP/RNBQKB1R w KQkq - 0 3")
	eng := newTestEngine()

	res, err := eng.SearchWithLimits(b, SearchLimits{Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Move.String() != "f3h4" {
		t.Errorf("move = %s, want f3h4", res.Move)
	}
	if res.Score < 500 {
		t.Errorf("score = %d, expected a large white advantage", res.Score)
	}
}

func TestSearchRefusesTerminalPosition(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"checkmate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"},
		{"stalemate", "7k/5K2/6Q1/8/8/8/8/8 b - - 0 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestEngine().ChooseMove(board.MustParseFEN(tc.fen), time.Second)
			if !errors.Is(err, ErrNoLegalMoves) {
				t.Errorf("err = %v, want ErrNoLegalMoves", err)
			}
		})
	}
}

func TestTinyBudgetStillReturnsMove(t *testing.T) {
	b := board.MustParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	eng := newTestEngine()
	eng.SetDifficulty(Hard)

	move, err := eng.ChooseMove(b, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if !isLegalMove(b, move) {
		t.Errorf("ChooseMove returned illegal move %s", move)
	}
}

func TestStopEndsInfiniteSearch(t *testing.T) {
	b := board.NewBoard()
	eng := newTestEngine()

	done := make(chan Result, 1)
	go func() {
		res, _ := eng.SearchWithLimits(b, SearchLimits{Infinite: true})
		done <- res
	}()

	time.Sleep(200 * time.Millisecond)
	eng.Stop()

	select {
	case res := <-done:
		if res.Depth < 1 || !isLegalMove(b, res.Move) {
			t.Errorf("unexpected result after stop: %+v", res)
		}
		t.Logf("stopped at depth %d with %s", res.Depth, res.Move)
	case <-time.After(30 * time.Second):
		t.Fatal("search did not stop")
	}
}

func TestStopBeforeSearchStarts(t *testing.T) {
	b := board.NewBoard()
	eng := newTestEngine()
	eng.Stop()

	done := make(chan Result, 1)
	go func() {
		res, _ := eng.SearchWithLimits(b, SearchLimits{Infinite: true})
		done <- res
	}()

	select {
	case res := <-done:
		if res.Depth != 1 || !isLegalMove(b, res.Move) {
			t.Errorf("pending stop: got %+v, want a depth 1 result", res)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("stop issued before the search was lost")
	}

	// The stop is spent; the next search runs to its depth.
	res, err := eng.SearchWithLimits(b, SearchLimits{Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Depth != 3 {
		t.Errorf("depth = %d after a consumed stop, want 3", res.Depth)
	}
}

func TestInterruptWhileIdle(t *testing.T) {
	eng := newTestEngine()
	if eng.Interrupt() {
		t.Error("Interrupt reported a running search on an idle engine")
	}

	res, err := eng.SearchWithLimits(board.NewBoard(), SearchLimits{Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Depth != 3 {
		t.Errorf("depth = %d, an idle Interrupt must not carry over", res.Depth)
	}
}

func TestNodeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTSize = 1 << 14
	cfg.CheckInterval = 64
	eng := NewEngine(cfg)

	res, err := eng.SearchWithLimits(board.NewBoard(), SearchLimits{Nodes: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Depth < 1 || res.Move.IsNone() {
		t.Errorf("expected at least depth 1, got %+v", res)
	}
}

func TestOnInfoReportsEveryDepth(t *testing.T) {
	eng := newTestEngine()
	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		if len(info.PV) == 0 {
			t.Errorf("depth %d: empty PV", info.Depth)
		}
	}

	if _, err := eng.SearchWithLimits(board.NewBoard(), SearchLimits{Depth: 3}); err != nil {
		t.Fatal(err)
	}
	if len(depths) != 3 || depths[0] != 1 || depths[2] != 3 {
		t.Errorf("depths = %v, want [1 2 3]", depths)
	}
}

func TestEnginePerft(t *testing.T) {
	eng := newTestEngine()
	if got := eng.Perft(board.NewBoard(), 3); got != 8902 {
		t.Errorf("Perft(3) = %d, want 8902", got)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{125, "1.25"},
		{-40, "-0.40"},
		{MateScore - 1, "White mates in 1"},
		{MateScore - 3, "White mates in 2"},
		{-(MateScore - 2), "Black mates in 1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestDifficultyParse(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}
