package main

import (
	"fiestapinata/internal/events"
	"fiestapinata/internal/gamedata"
	"fiestapinata/internal/targets"
	"flag"
	"fmt"
	"io"
	"os"
)

type options struct {
	seed     uint
	ticks    int
	dt       float64
	discrete bool
	quiet    bool
}

type runStats struct {
	counts map[events.Kind]map[targets.Kind]int
	clock  float64
}

func (rs runStats) count(kind events.Kind, pool targets.Kind) int {
	return rs.counts[kind][pool]
}

func main() {
	var opts options
	flag.UintVar(&opts.seed, "seed", 42, "RNG seed")
	flag.IntVar(&opts.ticks, "ticks", 600, "number of updates to run")
	flag.Float64Var(&opts.dt, "dt", 1.0/60, "seconds per update")
	flag.BoolVar(&opts.discrete, "discrete", false, "whole-second lifetimes and no motion")
	flag.BoolVar(&opts.quiet, "quiet", false, "print only the totals")
	flag.Parse()

	if opts.ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		os.Exit(2)
	}
	if opts.dt < 0 {
		fmt.Println("error: -dt must be >= 0")
		os.Exit(2)
	}

	fmt.Printf("=== Target Replay ===\n")
	fmt.Printf("seed=%d ticks=%d dt=%g discrete=%v\n\n", opts.seed, opts.ticks, opts.dt, opts.discrete)

	rs := replay(os.Stdout, opts)
	printTotals(os.Stdout, rs)
}

// replay runs a session headless and writes one line per target event.
// The same options always produce the same output.
func replay(w io.Writer, opts options) runStats {
	cfg := gamedata.DefaultConfig()
	if opts.discrete {
		cfg = gamedata.DiscreteConfig()
	}
	cfg.Seed = uint32(opts.seed)

	rs := runStats{counts: make(map[events.Kind]map[targets.Kind]int)}
	bus := events.NewBusSize(cfg.EventBufferSize())
	s := gamedata.NewSession(cfg, bus)

	emit := func(tick int) {
		bus.Drain(func(ev events.TargetEvent) {
			if rs.counts[ev.Kind] == nil {
				rs.counts[ev.Kind] = make(map[targets.Kind]int)
			}
			rs.counts[ev.Kind][ev.Pool]++
			if !opts.quiet {
				printEvent(w, tick, ev)
			}
		})
	}

	emit(0)
	for tick := 1; tick <= opts.ticks; tick++ {
		s.Update(opts.dt)
		emit(tick)
	}
	rs.clock = s.Clock()
	return rs
}

func printEvent(w io.Writer, tick int, ev events.TargetEvent) {
	t := ev.Target
	fmt.Fprintf(w, "tick=%d t=%.3f %s %s #%d pos=(%.2f,%.2f) life=%.3f\n",
		tick, ev.At, ev.Kind, ev.Pool, t.ID, t.Position.X, t.Position.Y, t.Lifetime)
}

func printTotals(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "\n--- Totals (clock=%.3fs) ---\n", rs.clock)
	for _, pool := range []targets.Kind{targets.KindHero, targets.KindEvil} {
		fmt.Fprintf(w, "%s: spawned=%d expired=%d\n", pool,
			rs.count(events.Spawned, pool), rs.count(events.Expired, pool))
	}
}
