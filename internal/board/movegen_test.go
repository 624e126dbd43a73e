package board

import (
	"slices"
	"testing"
)

var genFixtures = []struct {
	name string
	fen  string
}{
	{"start", StartFEN},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"},
	{"position 3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"},
	{"position 4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"},
	{"position 5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8"},
	{"en passant pin", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1"},
}

func TestStartPositionMoves(t *testing.T) {
	b := NewBoard()
	if n := len(b.LegalMoves()); n != 20 {
		t.Errorf("white has %d moves, want 20", n)
	}

	m := b.Mirror()
	if m.Turn != Black {
		t.Fatalf("mirrored side to move = %s", m.Turn)
	}
	if n := len(m.LegalMoves()); n != 20 {
		t.Errorf("mirrored start: black has %d moves, want 20", n)
	}
}

func TestLegalMovesNeverLeaveKingInCheck(t *testing.T) {
	for _, tc := range genFixtures {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseFEN(tc.fen)
			before := b.FEN()
			us := b.Turn

			for _, m := range b.LegalMoves() {
				next := b.Apply(m)
				if next.InCheck(us) {
					t.Errorf("%s leaves the %s king in check", m, us)
				}
				if next.Turn != us.Other() {
					t.Errorf("%s did not pass the turn", m)
				}
			}
			if b.FEN() != before {
				t.Errorf("generation or Apply changed the board: %s", b.FEN())
			}
		})
	}
}

func TestEnPassantWindow(t *testing.T) {
	b := NewBoard()
	for _, s := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		m, err := b.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		b = b.Apply(m)
	}

	epMove := func(b *Board) (Move, bool) {
		for _, m := range b.ValidMoves(E5, true) {
			if m.IsEnPassant() {
				return m, true
			}
		}
		return NoMove, false
	}

	m, ok := epMove(&b)
	if !ok || m.To != D6 {
		t.Fatalf("expected e5xd6 en passant, got %v", b.ValidMoves(E5, true))
	}
	after := b.Apply(m)
	if after.PieceAt(D5) != NoPiece || after.PieceAt(D6) != WhitePawn {
		t.Errorf("en passant did not remove the pawn:\n%s", after.String())
	}

	// One quiet move each and the right is gone.
	for _, s := range []string{"g1f3", "a6a5"} {
		mv, err := b.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		b = b.Apply(mv)
	}
	if _, ok := epMove(&b); ok {
		t.Error("en passant still available one move later")
	}
}

func TestCastlingConditions(t *testing.T) {
	tests := []struct {
		name        string
		fen         string
		short, long bool
	}{
		{"both available", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", true, true},
		{"rights lost", "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1", false, false},
		{"kingside transit attacked", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", false, true},
		{"queenside destination attacked", "r3k2r/8/8/8/8/8/2r5/R3K2R w KQkq - 0 1", true, false},
		{"pieces in the way", "r3k2r/8/8/8/8/8/8/RN2K1NR w KQkq - 0 1", false, false},
		{"b-file piece blocks long", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", true, false},
		{"in check", "r3k2r/8/8/8/4r3/8/8/R3K2R w KQkq - 0 1", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseFEN(tc.fen)
			var short, long bool
			for _, m := range b.LegalMoves() {
				short = short || m.Has(FlagCastleKingside)
				long = long || m.Has(FlagCastleQueenside)
			}
			if short != tc.short || long != tc.long {
				t.Errorf("O-O %v, O-O-O %v; want %v, %v", short, long, tc.short, tc.long)
			}
		})
	}
}

func TestCastlingRightsRevokedByPlay(t *testing.T) {
	const open = "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"
	tests := []struct {
		name   string
		fen    string
		moves  []string
		rights string
	}{
		{"king walks away and back", open, []string{"e1f1", "e8d8", "f1e1", "d8e8"}, "-"},
		{"queen rook moves", open, []string{"a1a2"}, "Kkq"},
		{"king rook moves and returns", open, []string{"h1h2", "a8a7", "h2h1"}, "Qk"},
		{"rook captured at home", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", []string{"a8a1"}, "Kk"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseFEN(tc.fen)
			for _, s := range tc.moves {
				m, err := b.ParseMove(s)
				if err != nil {
					t.Fatalf("%s: %v", s, err)
				}
				b = b.Apply(m)
			}
			if got := b.Castling.String(); got != tc.rights {
				t.Errorf("rights = %s, want %s", got, tc.rights)
			}
			for _, m := range b.LegalMoves() {
				if (m.Has(FlagCastleKingside) && !b.Castling.CanCastle(b.Turn, true)) ||
					(m.Has(FlagCastleQueenside) && !b.Castling.CanCastle(b.Turn, false)) {
					t.Errorf("%s offered without the right", b.SAN(m))
				}
			}
		})
	}
}

func TestCastlingMovesRook(t *testing.T) {
	b := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	m, err := b.ParseSAN("O-O-O")
	if err != nil {
		t.Fatal(err)
	}
	next := b.Apply(m)
	if next.PieceAt(C1) != WhiteKing || next.PieceAt(D1) != WhiteRook || next.PieceAt(A1) != NoPiece {
		t.Errorf("unexpected placement after O-O-O:\n%s", next.String())
	}
	if next.Castling.CanCastle(White, true) || next.Castling.CanCastle(White, false) {
		t.Error("white keeps castling rights after castling")
	}
	if !next.Castling.CanCastle(Black, true) {
		t.Error("black lost its rights")
	}
}

func TestPromotionGeneratedOnce(t *testing.T) {
	b := MustParseFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	moves := b.ValidMoves(A7, true)
	if len(moves) != 1 {
		t.Fatalf("a7 moves = %v, want a single promotion", moves)
	}
	m := moves[0]
	if !m.IsPromotion() || m.Promotion != Queen {
		t.Fatalf("move = %+v, want queen promotion", m)
	}

	knight := m.WithPromotion(Knight)
	promoted := b.Apply(knight)
	if got := promoted.PieceAt(A8); got != WhiteKnight {
		t.Errorf("underpromotion placed %s", got)
	}
	if m.IsQuiet() {
		t.Error("promotion reported as quiet")
	}
}

func TestKeyDistinguishesSideState(t *testing.T) {
	base := "r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 2"
	variants := []string{
		"r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq - 0 2",  // no en passant
		"r3k2r/8/8/3pP3/8/8/8/R3K2R b KQkq d6 0 2", // other side to move
		"r3k2r/8/8/3pP3/8/8/8/R3K2R w Kkq d6 0 2",  // fewer rights
	}

	b := MustParseFEN(base)
	for _, fen := range variants {
		v := MustParseFEN(fen)
		if v.Key() == b.Key() {
			t.Errorf("Key(%q) equals Key(%q)", fen, base)
		}
	}

	// The halfmove clock never counts, the full-move number only in the opening.
	c := MustParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 7 2")
	if c.Key() != b.Key() {
		t.Error("halfmove clock changed the key")
	}
	early := MustParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 3")
	if early.Key() == b.Key() {
		t.Error("opening move number not part of the key")
	}
	late := MustParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 11")
	later := MustParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 9 40")
	if late.Key() != later.Key() {
		t.Errorf("move numbers past the opening changed the key: %q vs %q", late.Key(), later.Key())
	}
}

func TestSANRoundTrip(t *testing.T) {
	for _, tc := range genFixtures {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseFEN(tc.fen)
			for _, m := range b.LegalMoves() {
				san := b.SAN(m)
				got, err := b.ParseSAN(san)
				if err != nil {
					t.Errorf("ParseSAN(%q): %v", san, err)
					continue
				}
				if !got.Same(m) || got.Promotion != m.Promotion {
					t.Errorf("ParseSAN(%q) = %s, want %s", san, got, m)
				}
			}
		})
	}
}

func TestFENRoundTrip(t *testing.T) {
	for _, tc := range genFixtures {
		b := MustParseFEN(tc.fen)
		if got := b.FEN(); got != tc.fen {
			t.Errorf("FEN round trip: got %q, want %q", got, tc.fen)
		}
	}
}

func TestMovesToSAN(t *testing.T) {
	b := NewBoard()
	var moves []Move
	next := b
	for _, s := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"} {
		m, err := next.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		moves = append(moves, m)
		next = next.Apply(m)
	}

	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}
	if got := MovesToSAN(b, moves); !slices.Equal(got, want) {
		t.Errorf("MovesToSAN = %v, want %v", got, want)
	}
}
