package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/LittleKatyusha/minesweeper/internal/board"
	"github.com/LittleKatyusha/minesweeper/internal/engine"
	"github.com/LittleKatyusha/minesweeper/internal/game"
)

const helpText = `Enter moves as SAN (Nf3, exd5, O-O, e8=Q) or coordinates (g1f3, e7e8q).
Commands: moves, board, fen, pgn, eval, help, quit`

// session runs one game between a human on the terminal and the engine.
type session struct {
	game   *game.Game
	eng    *engine.Engine
	human  board.Color
	budget time.Duration

	in  *bufio.Scanner
	out io.Writer
}

var errQuit = errors.New("quit")

func newSession(g *game.Game, eng *engine.Engine, human board.Color, budget time.Duration, in io.Reader, out io.Writer) *session {
	return &session{
		game:   g,
		eng:    eng,
		human:  human,
		budget: budget,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// run alternates human and engine turns until the game ends, the human
// quits or input runs out.
func (s *session) run() error {
	s.printf("You play %s. Type 'help' for commands.\n", s.human)
	s.showBoard()

	for !s.game.State().IsOver() {
		var err error
		if s.game.Turn() == s.human {
			err = s.humanTurn()
		} else {
			err = s.engineTurn()
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	s.showBoard()
	switch s.game.State() {
	case game.Checkmate:
		s.printf("Checkmate. %s wins (%s)\n", s.game.Winner(), s.game.Result())
	case game.Stalemate:
		s.printf("Stalemate (%s)\n", s.game.Result())
	}
	return nil
}

func (s *session) readLine(prompt string) (string, error) {
	s.printf("%s", prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *session) humanTurn() error {
	for {
		line, err := s.readLine(fmt.Sprintf("%d. %s> ", s.game.Board().FullMoveNumber, s.human))
		if err != nil {
			return err
		}

		switch line {
		case "":
			continue
		case "quit", "exit":
			return errQuit
		case "help":
			s.printf("%s\n", helpText)
		case "board":
			s.showBoard()
		case "fen":
			b := s.game.Board()
			s.printf("%s\n", b.FEN())
		case "pgn":
			s.printf("%s", s.game.PGN(nil))
		case "eval":
			s.printf("%s\n", engine.ScoreToString(s.eng.Evaluate(s.game.Board())))
		case "moves":
			b := s.game.Board()
			s.printf("%s\n", strings.Join(board.MovesToSAN(b, b.LegalMoves()), " "))
		default:
			if err := s.playInput(line); err != nil {
				s.printf("%v\n", err)
				continue
			}
			s.printf("You played %s\n", s.lastSAN())
			return nil
		}
	}
}

// playInput plays a move typed as SAN or coordinates. A coordinate move to
// the last rank without a piece letter asks for the promotion piece.
func (s *session) playInput(text string) error {
	b := s.game.Board()

	if len(text) == 4 && isCoordinate(text) {
		from, err1 := board.ParseSquare(text[:2])
		to, err2 := board.ParseSquare(text[2:])
		if err1 == nil && err2 == nil {
			if err := s.game.Move(from, to); err != nil {
				return err
			}
			if s.game.State() == game.AwaitingPromotion {
				return s.choosePromotion()
			}
			return nil
		}
	}

	m, err := b.ParseMove(text)
	if err != nil {
		if m, err = b.ParseSAN(text); err != nil {
			return fmt.Errorf("%w: %s", game.ErrIllegalMove, text)
		}
	}
	return s.game.Play(m)
}

func isCoordinate(s string) bool {
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8' &&
		s[2] >= 'a' && s[2] <= 'h' && s[3] >= '1' && s[3] <= '8'
}

func (s *session) choosePromotion() error {
	for {
		line, err := s.readLine("Promote to (q, r, b, n)> ")
		if err != nil {
			return err
		}

		var kind board.PieceType
		switch strings.ToLower(line) {
		case "q", "queen", "":
			kind = board.Queen
		case "r", "rook":
			kind = board.Rook
		case "b", "bishop":
			kind = board.Bishop
		case "n", "knight":
			kind = board.Knight
		default:
			s.printf("%v: %s\n", game.ErrInvalidPromotion, line)
			continue
		}
		return s.game.Promote(kind)
	}
}

func (s *session) engineTurn() error {
	s.printf("Engine is thinking...\n")
	m, err := s.eng.ChooseMove(s.game.Board(), s.budget)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := s.game.Play(m); err != nil {
		return fmt.Errorf("engine move %s: %w", m, err)
	}
	s.printf("Engine played %s\n", s.lastSAN())
	s.showBoard()
	return nil
}

func (s *session) lastSAN() string {
	notation := s.game.Notation()
	if len(notation) == 0 {
		return ""
	}
	return notation[len(notation)-1]
}

func (s *session) showBoard() {
	b := s.game.Board()
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		rank := 7 - row
		if s.human == board.Black {
			rank = row
		}
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for i := 0; i < 8; i++ {
			file := i
			if s.human == board.Black {
				file = 7 - i
			}
			sb.WriteString(b.PieceAt(board.NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	if s.human == board.Black {
		sb.WriteString("\n   h g f e d c b a\n")
	} else {
		sb.WriteString("\n   a b c d e f g h\n")
	}
	if s.game.InCheck() {
		sb.WriteString("Check!\n")
	}

	s.printf("%s", sb.String())
}
