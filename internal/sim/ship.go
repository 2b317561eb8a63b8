package sim

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// ShipHandle identifies a ship within a Simulation. Handles are never reused.
type ShipHandle uint64

// ShipClass is the hull type of a ship. It is what a radar reveals when the
// return is strong enough to classify.
type ShipClass int

const (
	ClassFighter ShipClass = iota
	ClassFrigate
	ClassCruiser
	ClassAsteroid
	ClassTarget
	ClassMissile
	ClassTorpedo
)

var shipClassNames = [...]string{
	ClassFighter:  "fighter",
	ClassFrigate:  "frigate",
	ClassCruiser:  "cruiser",
	ClassAsteroid: "asteroid",
	ClassTarget:   "target",
	ClassMissile:  "missile",
	ClassTorpedo:  "torpedo",
}

func (c ShipClass) String() string {
	if c >= 0 && int(c) < len(shipClassNames) {
		return shipClassNames[c]
	}
	return "unknown"
}

// ParseShipClass maps a class name (case-insensitive) back to its ShipClass.
func ParseShipClass(name string) (ShipClass, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shipClassNames {
		if n == name {
			return ShipClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ship class %q", name)
}

// Ship is a simulated vehicle. Kinematics are owned by the Simulation step;
// the radar configuration is owned by the ship's controller.
type Ship struct {
	handle ShipHandle
	label  string
	team   int
	class  ShipClass

	position        r2.Vec
	velocity        r2.Vec
	heading         float64 // radians, 0 = +X, counter-clockwise positive
	angularVelocity float64 // radians per second

	radarCrossSection float64
	radar             *Radar
	controller        Controller
}

// Handle returns the ship's registry handle.
func (sh *Ship) Handle() ShipHandle { return sh.handle }

// Label returns a short display label such as "fighter#3".
func (sh *Ship) Label() string { return sh.label }

// Team returns the ship's team. Ships never detect teammates.
func (sh *Ship) Team() int { return sh.team }

// Class returns the ship's hull class.
func (sh *Ship) Class() ShipClass { return sh.class }

// Position returns the ship's world position.
func (sh *Ship) Position() r2.Vec { return sh.position }

// Velocity returns the ship's world velocity in units per second.
func (sh *Ship) Velocity() r2.Vec { return sh.velocity }

// Heading returns the ship's absolute heading in radians.
func (sh *Ship) Heading() float64 { return sh.heading }

// RadarCrossSection returns how strongly the ship reflects radar energy.
func (sh *Ship) RadarCrossSection() float64 { return sh.radarCrossSection }

// Radar returns the ship's radar, or nil if it carries none.
func (sh *Ship) Radar() *Radar { return sh.radar }

// SetPosition teleports the ship. Intended for scenario scripts and tests.
func (sh *Ship) SetPosition(x, y float64) { sh.position = r2.Vec{X: x, Y: y} }

// SetVelocity sets the ship's velocity.
func (sh *Ship) SetVelocity(vx, vy float64) { sh.velocity = r2.Vec{X: vx, Y: vy} }

// SetHeading sets the ship's absolute heading.
func (sh *Ship) SetHeading(h float64) { sh.heading = h }

// SetAngularVelocity sets the ship's turn rate in radians per second.
func (sh *Ship) SetAngularVelocity(w float64) { sh.angularVelocity = w }

// integrate advances the ship's kinematics by dt seconds.
func (sh *Ship) integrate(dt float64) {
	sh.position = r2.Add(sh.position, r2.Scale(dt, sh.velocity))
	if sh.angularVelocity != 0 {
		sh.heading = math.Mod(sh.heading+sh.angularVelocity*dt, fullTurn)
	}
}

// ShipSpec describes a ship before it is added to a Simulation.
type ShipSpec struct {
	Class             ShipClass
	Team              int
	Position          r2.Vec
	Velocity          r2.Vec
	Heading           float64
	AngularVelocity   float64
	RadarCrossSection float64
	Radar             *Radar // nil = no radar
	Controller        Controller
}

// At returns a copy of the spec placed at (x, y).
func (sp ShipSpec) At(x, y float64) ShipSpec {
	sp.Position = r2.Vec{X: x, Y: y}
	return sp
}

// Moving returns a copy of the spec with velocity (vx, vy).
func (sp ShipSpec) Moving(vx, vy float64) ShipSpec {
	sp.Velocity = r2.Vec{X: vx, Y: vy}
	return sp
}

// Facing returns a copy of the spec with the given heading.
func (sp ShipSpec) Facing(heading float64) ShipSpec {
	sp.Heading = heading
	return sp
}

// Controlled returns a copy of the spec driven by c between ticks.
func (sp ShipSpec) Controlled(c Controller) ShipSpec {
	sp.Controller = c
	return sp
}

// Class defaults.
const (
	fighterCrossSection  = 5.0
	frigateCrossSection  = 30.0
	cruiserCrossSection  = 40.0
	missileCrossSection  = 2.0
	torpedoCrossSection  = 3.0
	targetCrossSection   = 10.0
	asteroidCrossSection = 50.0
)

// Fighter returns the preset for a radar-equipped fighter.
func Fighter(team int) ShipSpec { return PresetFor(ClassFighter, team) }

// Frigate returns the preset for a frigate.
func Frigate(team int) ShipSpec { return PresetFor(ClassFrigate, team) }

// Cruiser returns the preset for a cruiser.
func Cruiser(team int) ShipSpec { return PresetFor(ClassCruiser, team) }

// Missile returns the preset for a seeker missile.
func Missile(team int) ShipSpec { return PresetFor(ClassMissile, team) }

// Torpedo returns the preset for a heavy seeker torpedo.
func Torpedo(team int) ShipSpec { return PresetFor(ClassTorpedo, team) }

// Target returns the preset for a passive practice target with no radar.
func Target(team int) ShipSpec { return PresetFor(ClassTarget, team) }

// Asteroid returns the preset for an inert asteroid.
func Asteroid(team int) ShipSpec { return PresetFor(ClassAsteroid, team) }

// PresetFor returns the default spec for a class: cross-section and, for
// classes that carry one, a fresh default radar.
func PresetFor(class ShipClass, team int) ShipSpec {
	sp := ShipSpec{Class: class, Team: team}
	switch class {
	case ClassFighter:
		sp.RadarCrossSection = fighterCrossSection
		sp.Radar = &Radar{Power: 20e3, RxCrossSection: 5}
	case ClassFrigate:
		sp.RadarCrossSection = frigateCrossSection
		sp.Radar = &Radar{Power: 100e3, RxCrossSection: 10}
	case ClassCruiser:
		sp.RadarCrossSection = cruiserCrossSection
		sp.Radar = &Radar{Power: 200e3, RxCrossSection: 10}
	case ClassMissile:
		sp.RadarCrossSection = missileCrossSection
		sp.Radar = &Radar{Power: 10e3, RxCrossSection: 3}
	case ClassTorpedo:
		sp.RadarCrossSection = torpedoCrossSection
		sp.Radar = &Radar{Power: 10e3, RxCrossSection: 3}
	case ClassTarget:
		sp.RadarCrossSection = targetCrossSection
	case ClassAsteroid:
		sp.RadarCrossSection = asteroidCrossSection
	}
	if sp.Radar != nil {
		sp.Radar.Width = defaultRadarWidth
		sp.Radar.MinRSSI = defaultMinRSSI
		sp.Radar.ClassifyRSSI = defaultClassifyRSSI
	}
	return sp
}
