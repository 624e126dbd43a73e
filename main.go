// ChessPlay - play chess against the engine in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/LittleKatyusha/minesweeper/internal/board"
	"github.com/LittleKatyusha/minesweeper/internal/engine"
	"github.com/LittleKatyusha/minesweeper/internal/game"
	"github.com/LittleKatyusha/minesweeper/internal/logging"
	"github.com/LittleKatyusha/minesweeper/internal/storage"
)

func main() {
	color := flag.String("color", "", "side you play: white, black or random (default from preferences)")
	difficulty := flag.String("difficulty", "", "engine strength: easy, medium or hard (default from preferences)")
	budget := flag.Duration("budget", 0, "engine time per move (0 = difficulty preset)")
	fen := flag.String("fen", board.StartFEN, "starting position")
	dbDir := flag.String("db", "", "database directory (default: platform data dir)")
	noDB := flag.Bool("no-db", false, "do not load or save games and preferences")
	logLevel := flag.String("log-level", "warn", "stderr log level")
	flag.Parse()

	log, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var store *storage.Storage
	prefs := storage.DefaultPreferences()
	if !*noDB {
		store, err = openStore(*dbDir)
		if err != nil {
			log.Fatal().Err(err).Msg("open storage")
		}
		defer store.Close()

		if prefs, err = store.LoadPreferences(); err != nil {
			log.Warn().Err(err).Msg("load preferences")
		}
	}

	if *color != "" {
		prefs.PlayerColor = *color
	}
	if *difficulty != "" {
		d, err := engine.ParseDifficulty(*difficulty)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -difficulty")
		}
		prefs.Difficulty = d
	}
	if *budget > 0 {
		prefs.MoveBudget = *budget
	}

	human, err := pickColor(prefs.PlayerColor)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -color")
	}

	g, err := game.FromFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -fen")
	}

	eng := engine.NewEngine(engine.DefaultConfig())
	eng.SetLogger(log)
	eng.SetDifficulty(prefs.Difficulty)

	s := newSession(g, eng, human, prefs.MoveBudget, os.Stdin, os.Stdout)
	started := time.Now()
	if err := s.run(); err != nil {
		log.Error().Err(err).Msg("session ended")
	}

	if store != nil {
		if err := persist(store, s, prefs, time.Since(started), log); err != nil {
			log.Error().Err(err).Msg("save game")
		}
	}
}

func openStore(dir string) (*storage.Storage, error) {
	if dir == "" {
		return storage.NewStorage()
	}
	return storage.Open(dir)
}

// pickColor resolves "white", "black" or "random".
func pickColor(s string) (board.Color, error) {
	switch s {
	case "white", "w", "":
		return board.White, nil
	case "black", "b":
		return board.Black, nil
	case "random":
		if frand.Intn(2) == 0 {
			return board.White, nil
		}
		return board.Black, nil
	}
	return board.NoColor, fmt.Errorf("unknown color %q", s)
}

// persist saves the game record, updates statistics for finished games and
// remembers the preferences used.
func persist(store *storage.Storage, s *session, prefs *storage.UserPreferences, played time.Duration, log zerolog.Logger) error {
	g := s.game
	if len(g.History()) == 0 {
		return nil
	}

	rec := storage.NewGameRecord(g)
	rec.White, rec.Black = prefs.Username, "engine "+prefs.Difficulty.String()
	if s.human == board.Black {
		rec.White, rec.Black = rec.Black, rec.White
	}
	if err := store.SaveGame(rec); err != nil {
		return err
	}
	log.Info().Str("id", rec.ID).Str("result", rec.Result).Msg("game saved")

	if g.State().IsOver() {
		err := store.RecordGame(storage.GameResult{
			Won:        g.Winner() == s.human,
			Draw:       g.State() == game.Stalemate,
			Difficulty: prefs.Difficulty,
			Duration:   played,
		})
		if err != nil {
			return err
		}
	}

	return store.SavePreferences(prefs)
}
