// Package game sequences turns of a live chess game: it validates and
// commits moves, runs the promotion sub-step, records notation and detects
// checkmate and stalemate.
package game

import (
	"fmt"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// State is the controller's position in the turn cycle.
type State int

const (
	AwaitingMove State = iota
	AwaitingPromotion
	Checkmate
	Stalemate
)

func (s State) String() string {
	switch s {
	case AwaitingMove:
		return "awaiting-move"
	case AwaitingPromotion:
		return "awaiting-promotion"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsOver reports whether the state is terminal.
func (s State) IsOver() bool {
	return s == Checkmate || s == Stalemate
}

// Record is one committed half-move.
type Record struct {
	Move board.Move
	SAN  string
	FEN  string // Position after the move
}

// Game owns the authoritative board of a game in progress. The board is
// replaced wholesale on every commit and never mutated in place, so values
// handed out by Board stay valid snapshots.
type Game struct {
	start   board.Board
	board   board.Board
	state   State
	pending board.Move // Promotion move waiting for a piece choice
	history []Record
}

// New starts a game from the standard initial position.
func New() *Game {
	g, _ := FromBoard(board.NewBoard())
	return g
}

// FromFEN starts a game from a FEN position.
func FromFEN(fen string) (*Game, error) {
	b, err := board.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return FromBoard(b)
}

// FromBoard starts a game from b. The position must have one king per side
// and the side not to move must not be in check.
func FromBoard(b board.Board) (*Game, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	g := &Game{start: b, board: b, pending: board.NoMove}
	g.state = stateOf(b)
	return g, nil
}

func stateOf(b board.Board) State {
	switch {
	case b.IsCheckmate(b.Turn):
		return Checkmate
	case b.IsStalemate(b.Turn):
		return Stalemate
	}
	return AwaitingMove
}

// Board returns a snapshot of the current position.
func (g *Game) Board() board.Board { return g.board }

// StartBoard returns the position the game started from.
func (g *Game) StartBoard() board.Board { return g.start }

// Turn returns the side to move.
func (g *Game) Turn() board.Color { return g.board.Turn }

// State returns the current state.
func (g *Game) State() State { return g.state }

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() bool { return g.board.InCheck(g.board.Turn) }

// PendingPromotion returns the move awaiting a promotion choice, or
// board.NoMove.
func (g *Game) PendingPromotion() board.Move { return g.pending }

// LegalMoves returns the legal moves of the piece on sq. It is empty when
// the piece does not belong to the side to move or no move is expected.
func (g *Game) LegalMoves(sq board.Square) []board.Move {
	if g.state != AwaitingMove || g.board.PieceAt(sq).Color() != g.board.Turn {
		return nil
	}
	return g.board.ValidMoves(sq, true)
}

// Move plays from -> to for the side to move. A pawn reaching the last rank
// puts the game in AwaitingPromotion; Promote completes the turn.
func (g *Game) Move(from, to board.Square) error {
	if err := g.expectMove(); err != nil {
		return err
	}
	m, ok := findMove(&g.board, from, to)
	if !ok {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}
	if m.IsPromotion() {
		g.pending = m
		g.state = AwaitingPromotion
		return nil
	}
	return g.commit(m)
}

// Promote completes a pending promotion with the chosen piece kind.
func (g *Game) Promote(kind board.PieceType) error {
	if g.state != AwaitingPromotion {
		return ErrNoPromotionPending
	}
	if !validPromotion(kind) {
		return fmt.Errorf("%w: %s", ErrInvalidPromotion, kind)
	}
	return g.commit(g.pending.WithPromotion(kind))
}

// MoveWithPromotion plays a move and, if it promotes, resolves the choice in
// the same call. kind is ignored for moves that do not promote.
func (g *Game) MoveWithPromotion(from, to board.Square, kind board.PieceType) error {
	if err := g.expectMove(); err != nil {
		return err
	}
	m, ok := findMove(&g.board, from, to)
	if !ok {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}
	if m.IsPromotion() {
		if !validPromotion(kind) {
			return fmt.Errorf("%w: %s", ErrInvalidPromotion, kind)
		}
		m = m.WithPromotion(kind)
	}
	return g.commit(m)
}

// Play commits a fully specified move, as produced by the engine.
func (g *Game) Play(m board.Move) error {
	if err := g.expectMove(); err != nil {
		return err
	}
	return g.commit(m)
}

func (g *Game) expectMove() error {
	switch g.state {
	case AwaitingPromotion:
		return ErrPromotionPending
	case Checkmate, Stalemate:
		return ErrGameOver
	}
	return nil
}

// commit publishes the position after m. Nothing changes on error.
func (g *Game) commit(m board.Move) error {
	next, san, err := ApplyMove(g.board, m)
	if err != nil {
		return err
	}
	g.board = next
	g.pending = board.NoMove
	g.history = append(g.history, Record{Move: m, SAN: san, FEN: next.FEN()})
	g.state = stateOf(next)
	return nil
}

// History returns the committed half-moves.
func (g *Game) History() []Record {
	return append([]Record(nil), g.history...)
}

// Moves returns the committed moves in order.
func (g *Game) Moves() []board.Move {
	moves := make([]board.Move, len(g.history))
	for i, r := range g.history {
		moves[i] = r.Move
	}
	return moves
}

// Notation returns the SAN of every committed move.
func (g *Game) Notation() []string {
	san := make([]string, len(g.history))
	for i, r := range g.history {
		san[i] = r.SAN
	}
	return san
}

// Winner returns the side that delivered checkmate, or board.NoColor.
func (g *Game) Winner() board.Color {
	if g.state != Checkmate {
		return board.NoColor
	}
	return g.board.Turn.Other()
}

// Result returns the PGN result token.
func (g *Game) Result() string {
	switch g.state {
	case Checkmate:
		if g.Winner() == board.White {
			return "1-0"
		}
		return "0-1"
	case Stalemate:
		return "1/2-1/2"
	}
	return "*"
}

// ApplyMove validates m against the legal moves of b and returns the next
// position with the move's SAN. b itself is never modified. The promotion
// kind of m is honoured; an unset kind promotes to a queen.
func ApplyMove(b board.Board, m board.Move) (board.Board, string, error) {
	legal, ok := findMove(&b, m.From, m.To)
	if !ok {
		return b, "", fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	if legal.IsPromotion() {
		kind := m.Promotion
		if kind == board.NoPieceType {
			kind = board.Queen
		}
		if !validPromotion(kind) {
			return b, "", fmt.Errorf("%w: %s", ErrInvalidPromotion, kind)
		}
		legal = legal.WithPromotion(kind)
	}

	san := b.SAN(legal)
	return b.Apply(legal), san, nil
}

func findMove(b *board.Board, from, to board.Square) (board.Move, bool) {
	if !from.IsValid() || !to.IsValid() || b.PieceAt(from).Color() != b.Turn {
		return board.NoMove, false
	}
	for _, m := range b.ValidMoves(from, true) {
		if m.To == to {
			return m, true
		}
	}
	return board.NoMove, false
}

func validPromotion(kind board.PieceType) bool {
	switch kind {
	case board.Knight, board.Bishop, board.Rook, board.Queen:
		return true
	}
	return false
}
