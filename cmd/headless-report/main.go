package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Garsondee/Radar-Sense/internal/scenario"
	"github.com/Garsondee/Radar-Sense/internal/sim"
)

// defaultTicks is used when neither -ticks nor the scenario sets a length.
const defaultTicks = 600

type runStats struct {
	runIndex  int
	startTick uint64
	ticks     int

	firstContactTick  int64
	firstClassifyTick int64
	contactNew        int
	contactLost       int
	classified        int

	report sim.Report
	log    *sim.SimLog
}

type options struct {
	scenario       string
	runs           int
	ticks          int
	tickOffsetStep uint64
	plotPath       string
	verbose        bool
}

func main() {
	var o options
	flag.StringVar(&o.scenario, "scenario", "duel", "built-in scenario name ("+strings.Join(scenario.Names(), ", ")+") or path to a YAML file")
	flag.IntVar(&o.runs, "runs", 3, "number of headless simulation runs")
	flag.IntVar(&o.ticks, "ticks", 0, "ticks per run (0 = scenario default)")
	flag.Uint64Var(&o.tickOffsetStep, "tick-offset-step", 0, "start tick increment between runs; shifts the noise stream")
	flag.StringVar(&o.plotPath, "plot", "", "write a PNG of reported range per tick for the last run")
	flag.BoolVar(&o.verbose, "verbose", false, "record per-tick signal strength and print the event log")
	flag.Parse()

	if o.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := run(o); err != nil {
		log.Error("headless report failed", "err", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.runs <= 0 {
		return errors.New("-runs must be > 0")
	}
	if o.ticks < 0 {
		return errors.New("-ticks must be >= 0")
	}
	f, err := scenario.Resolve(o.scenario)
	if err != nil {
		return err
	}
	ticks := o.ticks
	if ticks == 0 {
		ticks = f.Ticks
	}
	if ticks == 0 {
		ticks = defaultTicks
	}

	runID := uuid.New()
	fmt.Printf("=== Headless Radar Report ===\n")
	fmt.Printf("run_id=%s scenario=%s ships=%d runs=%d ticks=%d tick_offset_step=%d\n\n",
		runID, f.Name, len(f.Ships), o.runs, ticks, o.tickOffsetStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		start := f.StartTick + uint64(i)*o.tickOffsetStep
		rs, err := runScenario(f, i+1, start, ticks, o.verbose)
		if err != nil {
			return err
		}
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)

	if o.plotPath != "" {
		last := all[len(all)-1]
		if err := plotRanges(last.report, fmt.Sprintf("%s run %d", f.Name, last.runIndex), o.plotPath); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		log.Info("wrote range plot", "path", o.plotPath)
	}
	return nil
}

func runScenario(f *scenario.File, runIndex int, startTick uint64, ticks int, verbose bool) (runStats, error) {
	sl := sim.NewSimLog(verbose)
	s, err := f.Build(sim.WithStartTick(startTick), sim.WithLog(sl), sim.WithReporter(sim.NewReporter()))
	if err != nil {
		return runStats{}, err
	}
	s.Run(ticks)

	entries := sl.Entries()
	return runStats{
		runIndex:          runIndex,
		startTick:         startTick,
		ticks:             ticks,
		firstContactTick:  firstTick(entries, "radar", "contact_new", ""),
		firstClassifyTick: firstTick(entries, "radar", "classified", ""),
		contactNew:        sl.CountCategory("radar", "contact_new"),
		contactLost:       sl.CountCategory("radar", "contact_lost"),
		classified:        sl.CountCategory("radar", "classified"),
		report:            s.Reporter().Report(),
		log:               sl,
	}, nil
}

// firstTick returns the tick of the first matching entry, or -1.
func firstTick(entries []sim.SimLogEntry, category, key, contains string) int64 {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return int64(e.Tick)
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (start_tick=%d) ---\n", rs.runIndex, rs.startTick)
	fmt.Printf("phase_markers: first_contact=%d first_classify=%d\n", rs.firstContactTick, rs.firstClassifyTick)
	fmt.Printf("event_totals: contact_new=%d contact_lost=%d classified=%d\n", rs.contactNew, rs.contactLost, rs.classified)
	fmt.Print(rs.report.String())
	fmt.Print(eventLog(rs))
	fmt.Println()
}

// eventLog renders each radar's events under its own heading. It is empty
// unless the run recorded a verbose log.
func eventLog(rs runStats) string {
	if rs.log == nil || !rs.log.Verbose() {
		return ""
	}
	var b strings.Builder
	for _, radar := range rs.report.Radars {
		entries := rs.log.FilterShip(radar.Label)
		fmt.Fprintf(&b, "== %s events=%d ==\n", radar.Label, len(entries))
		for _, e := range entries {
			b.WriteString(e.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func printAggregate(all []runStats) {
	totalAcq, totalNew, totalLost, totalClassified := 0, 0, 0, 0
	contactTicks := make([]int64, 0, len(all))
	for _, rs := range all {
		totalAcq += rs.report.TotalAcquisitions()
		totalNew += rs.contactNew
		totalLost += rs.contactLost
		totalClassified += rs.classified
		if rs.firstContactTick >= 0 {
			contactTicks = append(contactTicks, rs.firstContactTick-int64(rs.startTick))
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d total_acquisitions=%d\n", len(all), totalAcq)
	fmt.Printf("avg_events_per_run: contact_new=%.1f contact_lost=%.1f classified=%.1f\n",
		avg(totalNew, len(all)), avg(totalLost, len(all)), avg(totalClassified, len(all)))
	fmt.Printf("avg_ticks_to_first_contact=%s\n", avgTickString(contactTicks))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int64) string {
	if len(vals) == 0 {
		return "n/a"
	}
	var sum int64
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// rangeSeries converts a radar's range samples to plot points.
func rangeSeries(rs sim.RadarStats) plotter.XYs {
	pts := make(plotter.XYs, len(rs.Ranges))
	for i, smp := range rs.Ranges {
		pts[i].X = float64(smp.Tick)
		pts[i].Y = smp.Range
	}
	return pts
}

// plotRanges writes one scatter series per radar that had any contact.
func plotRanges(rep sim.Report, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "reported range"
	p.Add(plotter.NewGrid())

	series := 0
	for _, rs := range rep.Radars {
		if len(rs.Ranges) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(rangeSeries(rs))
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = plotutil.Color(series)
		sc.GlyphStyle.Radius = vg.Points(1)
		p.Add(sc)
		p.Legend.Add(rs.Label, sc)
		series++
	}
	if series == 0 {
		return errors.New("no radar reported a contact")
	}
	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
