package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/LittleKatyusha/minesweeper/internal/engine"
	"github.com/LittleKatyusha/minesweeper/internal/logging"
	"github.com/LittleKatyusha/minesweeper/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	ttSize     = flag.Int("tt", engine.DefaultConfig().TTSize, "transposition table entries")
	maxDepth   = flag.Int("depth", engine.DefaultConfig().MaxDepth, "maximum search depth")
	logLevel   = flag.String("log-level", "warn", "stderr log level (debug, info, warn, error, disabled)")
)

func main() {
	flag.Parse()

	log, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	cfg := engine.DefaultConfig()
	cfg.TTSize = *ttSize
	cfg.MaxDepth = *maxDepth

	protocol := uci.New(cfg, os.Stdin, os.Stdout)
	protocol.SetLogger(log)
	if err := protocol.Run(); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}
