package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// sevenTagRoster is the mandatory PGN tag order.
var sevenTagRoster = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

var rosterDefaults = map[string]string{
	"Event": "?",
	"Site":  "?",
	"Date":  "????.??.??",
	"Round": "?",
	"White": "?",
	"Black": "?",
}

const pgnLineWidth = 80

// PGN renders the game as a PGN document. tags may override any roster tag
// except Result, which always reflects the game state; extra tags follow the
// roster in name order.
func (g *Game) PGN(tags map[string]string) string {
	var sb strings.Builder

	for _, name := range sevenTagRoster {
		value, ok := tags[name]
		if !ok {
			value = rosterDefaults[name]
		}
		if name == "Result" {
			value = g.Result()
		}
		writeTag(&sb, name, value)
	}

	startFEN := g.start.FEN()
	if startFEN != board.StartFEN {
		writeTag(&sb, "SetUp", "1")
		writeTag(&sb, "FEN", startFEN)
	}

	var extra []string
	for name := range tags {
		if slices.Contains(sevenTagRoster, name) || name == "SetUp" || name == "FEN" {
			continue
		}
		extra = append(extra, name)
	}
	slices.Sort(extra)
	for _, name := range extra {
		writeTag(&sb, name, tags[name])
	}
	sb.WriteByte('\n')

	tokens := g.movetext()
	line := 0
	for i, tok := range tokens {
		if i > 0 {
			if line+1+len(tok) > pgnLineWidth {
				sb.WriteByte('\n')
				line = 0
			} else {
				sb.WriteByte(' ')
				line++
			}
		}
		sb.WriteString(tok)
		line += len(tok)
	}
	sb.WriteByte('\n')

	return sb.String()
}

func writeTag(sb *strings.Builder, name, value string) {
	fmt.Fprintf(sb, "[%s %s]\n", name, strconv.Quote(value))
}

// movetext returns the move number indicators, SAN moves and the
// terminating result as separate tokens.
func (g *Game) movetext() []string {
	tokens := make([]string, 0, len(g.history)*3/2+2)
	number := g.start.FullMoveNumber
	turn := g.start.Turn

	for i, r := range g.history {
		if turn == board.White {
			tokens = append(tokens, strconv.Itoa(number)+".")
		} else if i == 0 {
			tokens = append(tokens, strconv.Itoa(number)+"...")
		}
		tokens = append(tokens, r.SAN)
		if turn == board.Black {
			number++
		}
		turn = turn.Other()
	}

	return append(tokens, g.Result())
}
