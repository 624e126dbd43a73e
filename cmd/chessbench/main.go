// Command chessbench searches a fixed suite of positions concurrently, one
// engine per position, and reports nodes, speed and the chosen moves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/LittleKatyusha/minesweeper/internal/board"
	"github.com/LittleKatyusha/minesweeper/internal/engine"
	"github.com/LittleKatyusha/minesweeper/internal/logging"
)

var suite = []struct {
	name string
	fen  string
}{
	{"start", board.StartFEN},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"},
	{"italian", "r1bqk1nr/pppp1ppp/2n5/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"},
	{"queens gambit", "rnbqkb1r/ppp2ppp/4pn2/3p4/2PP4/2N5/PP2PPPP/R1BQKBNR w KQkq - 2 4"},
	{"middlegame", "r2q1rk1/pp2bppp/2n1b3/3pN3/3P4/2N1B3/PP2BPPP/R2Q1RK1 w - - 0 12"},
	{"rook endgame", "8/5pk1/6p1/8/3R4/6P1/5PK1/r7 b - - 0 40"},
	{"pawn race", "8/1P3k2/8/8/8/8/5Kp1/8 w - - 0 60"},
	{"mate in two", "7k/8/8/8/8/8/1R6/R5K1 w - - 0 1"},
}

type outcome struct {
	name string
	b    board.Board
	res  engine.Result
}

func main() {
	depth := flag.Int("depth", 6, "search depth per position")
	moveTime := flag.Duration("movetime", 0, "time budget per position (0 = depth only)")
	timeout := flag.Duration("timeout", 5*time.Minute, "abort the whole run after this long")
	parallel := flag.Int("parallel", runtime.NumCPU(), "positions searched at once")
	ttSize := flag.Int("tt", 1<<18, "transposition table entries per engine")
	logLevel := flag.String("log-level", "warn", "stderr log level")
	flag.Parse()

	log, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	limits := engine.SearchLimits{Depth: *depth, MoveTime: *moveTime}
	cfg := engine.DefaultConfig()
	cfg.TTSize = *ttSize

	results := make([]outcome, len(suite))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*parallel, 1))

	start := time.Now()
	for i, pos := range suite {
		i, pos := i, pos
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := board.ParseFEN(pos.fen)
			if err != nil {
				return fmt.Errorf("%s: %w", pos.name, err)
			}

			eng := engine.NewEngine(cfg)
			eng.SetLogger(log.With().Str("position", pos.name).Logger())

			// Stop the search if the run is cancelled.
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-ctx.Done():
					eng.Stop()
				case <-done:
				}
			}()

			res, err := eng.SearchWithLimits(b, limits)
			if err != nil {
				return fmt.Errorf("%s: %w", pos.name, err)
			}
			results[i] = outcome{name: pos.name, b: b, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("benchmark failed")
	}
	wall := time.Since(start)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "position\tmove\tdepth\tscore\tnodes\tnps\ttime\t")

	var total uint64
	for _, o := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
			o.name,
			o.b.SAN(o.res.Move),
			o.res.Depth,
			engine.ScoreToString(o.res.Score),
			humanize.Comma(int64(o.res.Nodes)),
			humanize.SIWithDigits(rate(o.res.Nodes, o.res.Elapsed), 1, "n/s"),
			o.res.Elapsed.Round(time.Millisecond),
		)
		total += o.res.Nodes
	}
	tw.Flush()

	fmt.Printf("\n%s nodes in %s (%s aggregate)\n",
		humanize.Comma(int64(total)),
		wall.Round(time.Millisecond),
		humanize.SIWithDigits(rate(total, wall), 1, "n/s"))
}

func rate(nodes uint64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(nodes) / d.Seconds()
}
