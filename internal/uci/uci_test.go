package uci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/LittleKatyusha/minesweeper/internal/board"
	"github.com/LittleKatyusha/minesweeper/internal/engine"
)

func run(t *testing.T, script string) string {
	t.Helper()
	var out bytes.Buffer
	u := New(engine.Config{TTSize: 1 << 14}, strings.NewReader(script), &out)
	if err := u.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("output:\n%s", out.String())
	return out.String()
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if mv, ok := strings.CutPrefix(line, "bestmove "); ok {
			return mv
		}
	}
	t.Fatal("no bestmove in output")
	return ""
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci\nisready\nquit\n")
	for _, want := range []string{"id name ChessPlay", "option name Hash", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGoReturnsLegalMove(t *testing.T) {
	out := run(t, "position startpos moves e2e4 e7e5\ngo depth 2\nisready\nquit\n")

	b := board.MustParseFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	if _, err := b.ParseMove(bestMove(t, out)); err != nil {
		t.Errorf("bestmove is not legal: %v", err)
	}
	if !strings.Contains(out, "info depth 1") {
		t.Error("expected an info line for depth 1")
	}
}

func TestMateReportedForSideToMove(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"white mates", "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "a1a8"},
		{"black mates", "r5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := run(t, "position fen "+tc.fen+"\ngo depth 3\nquit\n")
			if got := bestMove(t, out); got != tc.want {
				t.Errorf("bestmove = %s, want %s", got, tc.want)
			}
			if !strings.Contains(out, "score mate 1") {
				t.Error("expected score mate 1 from the mover's view")
			}
		})
	}
}

func TestGoInTerminalPosition(t *testing.T) {
	out := run(t, "position startpos moves f2f3 e7e5 g2g4 d8h4\ngo depth 2\nquit\n")
	if got := bestMove(t, out); got != "0000" {
		t.Errorf("bestmove = %s, want 0000", got)
	}
}

func TestBadPositionKeepsPrevious(t *testing.T) {
	out := run(t, "position startpos moves e2e4\nposition startpos moves e2e5\nd\nquit\n")

	if !strings.Contains(out, "info string invalid move e2e5") {
		t.Error("expected an error for the illegal move")
	}
	if !strings.Contains(out, "Fen: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1") {
		t.Error("position after the bad command should be the previous one")
	}
}

func TestPerft(t *testing.T) {
	out := run(t, "position startpos\nperft 3\nquit\n")
	if !strings.Contains(out, "Nodes: 8,902") {
		t.Error("perft 3 from the start position should report 8,902 nodes")
	}
	if !strings.Contains(out, "e2e4: 600") {
		t.Error("expected divide output for e2e4")
	}
}

func TestSetOption(t *testing.T) {
	out := run(t, "setoption name Difficulty value hard\nsetoption name Hash value 2\nuci\nsetoption name Hash value 0\nquit\n")
	if !strings.Contains(out, "default hard") {
		t.Error("difficulty should survive a Hash change")
	}
	if !strings.Contains(out, `invalid Hash value "0"`) {
		t.Error("expected Hash 0 to be rejected")
	}
}

func TestParseLimits(t *testing.T) {
	limits, ok := parseLimits(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 movestogo 20"))
	if !ok {
		t.Fatal("clock limits not recognised")
	}
	if limits.Time[board.White].Milliseconds() != 60000 || limits.Time[board.Black].Milliseconds() != 30000 {
		t.Errorf("Time = %v", limits.Time)
	}
	if limits.Inc[board.White].Milliseconds() != 1000 || limits.Inc[board.Black].Milliseconds() != 500 {
		t.Errorf("Inc = %v", limits.Inc)
	}
	if limits.MovesToGo != 20 {
		t.Errorf("MovesToGo = %d", limits.MovesToGo)
	}

	if _, ok := parseLimits(nil); ok {
		t.Error("bare go must fall back to the difficulty preset")
	}
	if limits, _ := parseLimits([]string{"infinite"}); !limits.Infinite {
		t.Error("infinite not parsed")
	}
}
