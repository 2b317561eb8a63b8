package sim

import (
	"fmt"
)

const (
	// TicksPerSecond is the fixed simulation rate.
	TicksPerSecond = 60
	// PhysicsTimestep is the length of one tick in seconds.
	PhysicsTimestep = 1.0 / TicksPerSecond
)

// Controller is the between-tick control logic for one ship. It may change
// its own ship's radar configuration and kinematics; it must not touch the
// radar result.
type Controller interface {
	Control(s *Simulation, ship *Ship)
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(s *Simulation, ship *Ship)

// Control calls f(s, ship).
func (f ControllerFunc) Control(s *Simulation, ship *Ship) { f(s, ship) }

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithLog routes radar events to sl instead of a fresh non-verbose log.
func WithLog(sl *SimLog) Option {
	return func(s *Simulation) { s.log = sl }
}

// WithStartTick starts the tick counter at t. The radar noise stream is
// seeded from the tick index, so this shifts which noise a run sees.
func WithStartTick(t uint64) Option {
	return func(s *Simulation) { s.tick = t }
}

// WithReporter attaches a Reporter that collects radar statistics after
// every step.
func WithReporter(r *Reporter) Option {
	return func(s *Simulation) { s.reporter = r }
}

// Simulation is the ordered ship registry and tick loop around the radar
// subsystem.
type Simulation struct {
	tick       uint64
	nextHandle ShipHandle
	ships      []*Ship // registry order; radar tie-breaks depend on it
	byHandle   map[ShipHandle]*Ship
	debugLines map[ShipHandle][]Line
	log        *SimLog
	reporter   *Reporter
}

// New creates an empty simulation.
func New(opts ...Option) *Simulation {
	s := &Simulation{
		byHandle:   make(map[ShipHandle]*Ship),
		debugLines: make(map[ShipHandle][]Line),
		log:        NewSimLog(false),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tick returns the current tick index.
func (s *Simulation) Tick() uint64 { return s.tick }

// Log returns the simulation's event log.
func (s *Simulation) Log() *SimLog { return s.log }

// Reporter returns the attached reporter, or nil.
func (s *Simulation) Reporter() *Reporter { return s.reporter }

// AddShip registers a new ship built from spec and returns its handle.
// The spec's radar is copied so presets can be reused.
func (s *Simulation) AddShip(spec ShipSpec) ShipHandle {
	h := s.nextHandle
	s.nextHandle++
	sh := &Ship{
		handle:            h,
		label:             fmt.Sprintf("%s#%d", spec.Class, h),
		team:              spec.Team,
		class:             spec.Class,
		position:          spec.Position,
		velocity:          spec.Velocity,
		heading:           spec.Heading,
		angularVelocity:   spec.AngularVelocity,
		radarCrossSection: spec.RadarCrossSection,
		controller:        spec.Controller,
	}
	if spec.Radar != nil {
		sh.radar = spec.Radar.Clone()
	}
	s.ships = append(s.ships, sh)
	s.byHandle[h] = sh
	return h
}

// RemoveShip deletes a ship from the registry. It reports whether the
// handle was live.
func (s *Simulation) RemoveShip(h ShipHandle) bool {
	if _, ok := s.byHandle[h]; !ok {
		return false
	}
	delete(s.byHandle, h)
	delete(s.debugLines, h)
	kept := s.ships[:0]
	for _, sh := range s.ships {
		if sh.handle != h {
			kept = append(kept, sh)
		}
	}
	s.ships = kept
	return true
}

// Ship looks up a live ship.
func (s *Simulation) Ship(h ShipHandle) (*Ship, bool) {
	sh, ok := s.byHandle[h]
	return sh, ok
}

// MustShip looks up a live ship and panics if the handle is unknown.
func (s *Simulation) MustShip(h ShipHandle) *Ship {
	sh, ok := s.byHandle[h]
	if !ok {
		panic(fmt.Sprintf("sim: unknown ship handle %d", h))
	}
	return sh
}

// Handles returns the live handles in registry order.
func (s *Simulation) Handles() []ShipHandle {
	out := make([]ShipHandle, len(s.ships))
	for i, sh := range s.ships {
		out[i] = sh.handle
	}
	return out
}

// Ships returns the live ships in registry order. The slice is a copy; the
// ships are not.
func (s *Simulation) Ships() []*Ship {
	return append([]*Ship(nil), s.ships...)
}

// DebugLines returns the radar wedge lines drawn for h during the last step.
func (s *Simulation) DebugLines(h ShipHandle) []Line {
	return s.debugLines[h]
}

// EmitDebugLines replaces the debug lines recorded for h.
func (s *Simulation) EmitDebugLines(h ShipHandle, lines []Line) {
	s.debugLines[h] = lines
}

// Step advances the simulation by one tick:
//  1. CONTROL: controllers adjust their ships between ticks.
//  2. PHYSICS: kinematics are integrated, finalizing this tick's positions.
//  3. SENSE: every radar scans against one snapshot of the world.
//  4. REPORT: events and statistics are recorded.
func (s *Simulation) Step() {
	for _, sh := range s.Ships() {
		// A controller may remove ships; those are gone for this tick.
		if _, live := s.byHandle[sh.handle]; !live || sh.controller == nil {
			continue
		}
		sh.controller.Control(s, sh)
	}

	for _, sh := range s.ships {
		sh.integrate(PhysicsTimestep)
	}

	prev := s.contactStates()
	clear(s.debugLines)
	for _, dl := range TickRadars(s) {
		s.EmitDebugLines(dl.Handle, dl.Lines)
	}

	s.recordRadarEvents(prev)
	if s.reporter != nil {
		s.reporter.Collect(s)
	}
	s.tick++
}

// Run advances the simulation n ticks.
func (s *Simulation) Run(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntil advances up to maxTicks, stopping early once predicate returns
// true. It returns the number of steps taken, or -1 if the predicate never held.
func (s *Simulation) RunUntil(predicate func(*Simulation) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step()
		if predicate(s) {
			return i + 1
		}
	}
	return -1
}

type contactState struct {
	contact    bool
	classified bool
}

// contactStates captures every radar's result flags before a sense pass.
func (s *Simulation) contactStates() map[ShipHandle]contactState {
	out := make(map[ShipHandle]contactState, len(s.ships))
	for _, sh := range s.ships {
		if sh.radar == nil {
			continue
		}
		res, ok := sh.radar.Result()
		out[sh.handle] = contactState{contact: ok, classified: ok && res.Classified}
	}
	return out
}

// recordRadarEvents logs contact transitions produced by the last sense pass.
func (s *Simulation) recordRadarEvents(prev map[ShipHandle]contactState) {
	for _, sh := range s.ships {
		if sh.radar == nil {
			continue
		}
		team := teamLabel(sh.team)
		res, ok := sh.radar.Result()
		before := prev[sh.handle]
		switch {
		case ok && !before.contact:
			s.log.Add(s.tick, sh.label, team, "radar", "contact_new",
				fmt.Sprintf("range %.0f", r2Dist(res.Position, sh.position)), sh.radar.rssi)
		case !ok && before.contact:
			s.log.Add(s.tick, sh.label, team, "radar", "contact_lost", "", 0)
		}
		if ok && res.Classified && !before.classified {
			s.log.Add(s.tick, sh.label, team, "radar", "classified", res.Class.String(), sh.radar.rssi)
		}
		if ok {
			s.log.AddVerbose(s.tick, sh.label, team, "radar", "rssi",
				fmt.Sprintf("%.4g", sh.radar.rssi), sh.radar.rssi)
		}
	}
}

func teamLabel(team int) string {
	return fmt.Sprintf("team%d", team)
}
