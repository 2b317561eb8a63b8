package sim

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// RangeSample is one tick's reported range from a radar to its contact.
type RangeSample struct {
	Tick  uint64
	Range float64
}

// RadarStats accumulates one radar-carrying ship's detection history.
type RadarStats struct {
	Handle ShipHandle
	Label  string
	Team   int
	Class  ShipClass

	Ticks           int // ticks observed with a radar fitted
	ContactTicks    int
	ClassifiedTicks int
	Acquisitions    int
	Losses          int
	PeakRSSI        float64

	Ranges []RangeSample

	// posErrors is the distance from each reported position to the nearest
	// hostile ship's true position.
	posErrors []float64
	hadResult bool
}

// ContactRatio returns the fraction of observed ticks with a contact.
func (rs *RadarStats) ContactRatio() float64 {
	if rs.Ticks == 0 {
		return 0
	}
	return float64(rs.ContactTicks) / float64(rs.Ticks)
}

// PositionError returns the mean and standard deviation of the reported
// position error. Both are NaN before the first contact.
func (rs *RadarStats) PositionError() (mean, stddev float64) {
	if len(rs.posErrors) == 0 {
		return math.NaN(), math.NaN()
	}
	if len(rs.posErrors) == 1 {
		return rs.posErrors[0], 0
	}
	return stat.MeanStdDev(rs.posErrors, nil)
}

// Reporter collects radar statistics after every simulation step.
type Reporter struct {
	stats    map[ShipHandle]*RadarStats
	order    []ShipHandle
	fromTick uint64
	toTick   uint64
	started  bool
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{stats: make(map[ShipHandle]*RadarStats)}
}

// Collect records the radar results of the step that just ran.
func (r *Reporter) Collect(s *Simulation) {
	if !r.started {
		r.fromTick, r.started = s.Tick(), true
	}
	r.toTick = s.Tick()

	for _, sh := range s.ships {
		if sh.radar == nil {
			continue
		}
		rs, ok := r.stats[sh.handle]
		if !ok {
			rs = &RadarStats{Handle: sh.handle, Label: sh.label, Team: sh.team, Class: sh.class}
			r.stats[sh.handle] = rs
			r.order = append(r.order, sh.handle)
		}
		rs.Ticks++

		res, has := sh.radar.Result()
		switch {
		case has && !rs.hadResult:
			rs.Acquisitions++
		case !has && rs.hadResult:
			rs.Losses++
		}
		rs.hadResult = has
		if !has {
			continue
		}

		rs.ContactTicks++
		if res.Classified {
			rs.ClassifiedTicks++
		}
		rs.PeakRSSI = math.Max(rs.PeakRSSI, sh.radar.rssi)
		rs.Ranges = append(rs.Ranges, RangeSample{Tick: s.Tick(), Range: r2Dist(res.Position, sh.position)})
		if d, ok := nearestHostile(s, sh, res); ok {
			rs.posErrors = append(rs.posErrors, d)
		}
	}
}

// nearestHostile returns the distance from a reported position to the
// closest ship on another team.
func nearestHostile(s *Simulation, own *Ship, res ScanResult) (float64, bool) {
	best, found := math.Inf(1), false
	for _, sh := range s.ships {
		if sh.team == own.team {
			continue
		}
		if d := r2Dist(sh.position, res.Position); d < best {
			best, found = d, true
		}
	}
	return best, found
}

// Report is a point-in-time copy of a Reporter's statistics.
type Report struct {
	FromTick uint64
	ToTick   uint64
	Radars   []RadarStats
}

// Report returns the collected statistics in registry order.
func (r *Reporter) Report() Report {
	rep := Report{FromTick: r.fromTick, ToTick: r.toTick}
	for _, h := range r.order {
		rs := *r.stats[h]
		rs.Ranges = append([]RangeSample(nil), rs.Ranges...)
		rs.posErrors = append([]float64(nil), rs.posErrors...)
		rep.Radars = append(rep.Radars, rs)
	}
	return rep
}

// TotalAcquisitions sums acquisitions over every radar.
func (rep Report) TotalAcquisitions() int {
	n := 0
	for _, rs := range rep.Radars {
		n += rs.Acquisitions
	}
	return n
}

// String renders the report as a text block.
func (rep Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- radar report ---\n")
	fmt.Fprintf(&b, "tick_range=[%d..%d] radars=%d\n", rep.FromTick, rep.ToTick, len(rep.Radars))

	radars := append([]RadarStats(nil), rep.Radars...)
	sort.SliceStable(radars, func(i, j int) bool { return radars[i].Team < radars[j].Team })
	for _, rs := range radars {
		mean, sd := rs.PositionError()
		fmt.Fprintf(&b,
			"%-11s team%d contact=%5.1f%% classified=%d acq=%d lost=%d peak_rssi=%.3g pos_err[mean/sd]=%.2f/%.2f\n",
			rs.Label, rs.Team, 100*rs.ContactRatio(), rs.ClassifiedTicks,
			rs.Acquisitions, rs.Losses, rs.PeakRSSI, mean, sd)
	}
	return b.String()
}
