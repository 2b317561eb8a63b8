package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// emitter is a scanning ship's sensing parameters for one tick.
type emitter struct {
	handle         ShipHandle
	team           int
	center         r2.Vec
	width          float64
	startBearing   float64 // absolute
	endBearing     float64 // absolute
	power          float64
	rxCrossSection float64
	minRSSI        float64
	classifyRSSI   float64
}

// reflector is one ship's state as seen by every radar during a tick.
type reflector struct {
	handle            ShipHandle
	team              int
	class             ShipClass
	position          r2.Vec
	velocity          r2.Vec
	radarCrossSection float64
}

// Scan returns the last result computed for h's radar. It reports false if
// the ship is unknown, has no radar, or saw nothing last tick.
func Scan(s *Simulation, h ShipHandle) (ScanResult, bool) {
	sh, ok := s.Ship(h)
	if !ok || sh.radar == nil {
		return ScanResult{}, false
	}
	return sh.radar.Result()
}

// TickRadars runs one sense pass over every radar in the simulation and
// returns the beam wedge geometry for each emitter.
//
// All detection decisions read from a snapshot taken before the first
// result is written, so no radar sees another radar's same-tick write and
// registry order affects only tie-breaks and noise draws.
func TickRadars(s *Simulation) []DebugLines {
	handles := s.Handles()
	reflectors := buildReflectors(s, handles)
	rng := newTickRNG(s.Tick())

	var out []DebugLines
	for _, h := range handles {
		sh := s.MustShip(h)
		if sh.radar == nil {
			continue
		}
		e := newEmitter(sh)

		best, rssi := selectTarget(&e, reflectors)
		if best == nil {
			sh.radar.result, sh.radar.hasResult, sh.radar.rssi = ScanResult{}, false, 0
		} else {
			sh.radar.result = assembleResult(&e, best, rssi, rng)
			sh.radar.hasResult, sh.radar.rssi = true, rssi
		}

		out = append(out, DebugLines{Handle: h, Lines: emitterLines(&e)})
	}
	return out
}

// buildReflectors snapshots every live ship in registry order.
func buildReflectors(s *Simulation, handles []ShipHandle) []reflector {
	out := make([]reflector, 0, len(handles))
	for _, h := range handles {
		sh := s.MustShip(h)
		out = append(out, reflector{
			handle:            h,
			team:              sh.team,
			class:             sh.class,
			position:          sh.position,
			velocity:          sh.velocity,
			radarCrossSection: sh.radarCrossSection,
		})
	}
	return out
}

func newEmitter(sh *Ship) emitter {
	r := sh.radar
	h := r.Heading + sh.heading
	return emitter{
		handle:         sh.handle,
		team:           sh.team,
		center:         sh.position,
		width:          r.Width,
		startBearing:   h - 0.5*r.Width,
		endBearing:     h + 0.5*r.Width,
		power:          r.Power,
		rxCrossSection: r.RxCrossSection,
		minRSSI:        r.MinRSSI,
		classifyRSSI:   r.ClassifyRSSI,
	}
}

// selectTarget returns the strongest hostile return inside the beam that
// strictly exceeds the detection floor. The first maximal candidate in
// snapshot order wins ties. It returns nil if nothing qualifies.
func selectTarget(e *emitter, reflectors []reflector) (*reflector, float64) {
	bestRSSI := e.minRSSI
	var best *reflector
	for i := range reflectors {
		r := &reflectors[i]
		if r.team == e.team {
			continue
		}
		if !insideBeam(e, r.position) {
			continue
		}
		rssi := computeRSSI(e, r)
		if rssi > bestRSSI {
			best, bestRSSI = r, rssi
		}
	}
	return best, bestRSSI
}

// assembleResult builds the reported contact. Class is revealed only above
// the classification floor; position and velocity are always perturbed.
func assembleResult(e *emitter, r *reflector, rssi float64, rng rand.Source) ScanResult {
	res := ScanResult{
		Position: r2.Add(r.position, noise(rng, rssi)),
		Velocity: r2.Add(r.velocity, noise(rng, rssi)),
	}
	if rssi > e.classifyRSSI {
		res.Class, res.Classified = r.class, true
	}
	return res
}
