package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestSimulation_HandlesKeepInsertionOrder(t *testing.T) {
	s := New()
	a := s.AddShip(Fighter(0))
	b := s.AddShip(Target(1))
	c := s.AddShip(Asteroid(2))
	assert.Equal(t, []ShipHandle{a, b, c}, s.Handles())

	require.True(t, s.RemoveShip(b))
	assert.False(t, s.RemoveShip(b), "second removal is a no-op")
	assert.Equal(t, []ShipHandle{a, c}, s.Handles())
	_, ok := s.Ship(b)
	assert.False(t, ok)

	d := s.AddShip(Target(1))
	assert.Greater(t, d, c, "handles are never reused")
}

func TestSimulation_AddShipCopiesRadar(t *testing.T) {
	spec := Fighter(0)
	s := New()
	h := s.AddShip(spec)
	spec.Radar.Width = 1
	assert.Equal(t, defaultRadarWidth, s.MustShip(h).Radar().Width)
}

func TestSimulation_StepIntegratesBeforeSensing(t *testing.T) {
	s := New()
	own := s.AddShip(Fighter(0))
	// Starts just outside the beam edge and drifts in during the first step.
	start := pointAt(fullTurn/12+1e-4, 1000)
	tgt := s.AddShip(Target(1).At(start.X, start.Y).Moving(0, -60))
	s.Step()

	pos := s.MustShip(tgt).Position()
	assert.InDelta(t, start.Y-1, pos.Y, 1e-9, "one tick of -60 u/s")
	assert.True(t, hasContact(s.MustShip(own)), "radar sees the post-physics position")
}

func TestSimulation_TickAdvances(t *testing.T) {
	s := New(WithStartTick(7))
	assert.Equal(t, uint64(7), s.Tick())
	s.Run(3)
	assert.Equal(t, uint64(10), s.Tick())
}

func TestSimulation_AngularVelocityTurnsShip(t *testing.T) {
	s := New()
	h := s.AddShip(Fighter(0))
	s.MustShip(h).SetAngularVelocity(math.Pi)
	s.Run(TicksPerSecond / 2)
	assert.InDelta(t, math.Pi/2, s.MustShip(h).Heading(), 1e-9)
}

func TestSimulation_ControllerRunsBetweenTicks(t *testing.T) {
	var seen []uint64
	sweep := ControllerFunc(func(s *Simulation, sh *Ship) {
		seen = append(seen, s.Tick())
		require.NoError(t, sh.Radar().SetHeading(sh.Radar().Heading+math.Pi/2))
	})
	s := New()
	own := s.AddShip(Fighter(0).Controlled(sweep))
	s.AddShip(Target(1).At(1000, 0))

	// Heading goes 90, 180, 270, 360 degrees: only the last tick points east.
	got := []bool{}
	for i := 0; i < 4; i++ {
		s.Step()
		got = append(got, hasContact(s.MustShip(own)))
	}
	assert.Equal(t, []bool{false, false, false, true}, got)
	assert.Equal(t, []uint64{0, 1, 2, 3}, seen)
}

func TestSimulation_RunUntil(t *testing.T) {
	s := New()
	own := s.AddShip(Fighter(0))
	s.AddShip(Target(1).At(6000, 0).Moving(-6000, 0))

	n := s.RunUntil(func(s *Simulation) bool { return hasContact(s.MustShip(own)) }, 120)
	require.NotEqual(t, -1, n)
	x := s.Ships()[1].Position().X
	assert.Less(t, x, 3900.0, "first contact inside the detection range")
}

func TestSimulation_RemovedShipLeavesSnapshot(t *testing.T) {
	s, own, target := newDuel(t)
	s.Step()
	require.True(t, hasContact(own))

	s.RemoveShip(target.Handle())
	s.Step()
	assert.False(t, hasContact(own))
	assert.Empty(t, s.DebugLines(target.Handle()))
}

func TestSimulation_DebugLinesReplacedEachStep(t *testing.T) {
	s, own, _ := newDuel(t)
	s.Step()
	first := s.DebugLines(own.Handle())
	require.NotEmpty(t, first)

	own.SetPosition(100, 0)
	s.Step()
	second := s.DebugLines(own.Handle())
	require.Len(t, second, len(first))
	assert.Equal(t, r2.Vec{X: 100}, second[len(second)-1].A)
}

func TestSimulation_RadarEvents(t *testing.T) {
	s, own, target := newDuel(t)
	s.Step()
	assert.True(t, s.Log().HasEntry("radar", "contact_new", "range"))
	assert.True(t, s.Log().HasEntry("radar", "classified", "target"))

	s.Step()
	assert.Equal(t, 1, s.Log().CountCategory("radar", "contact_new"), "steady contact logs once")

	target.SetPosition(0, -1000)
	s.Step()
	e, ok := s.Log().LastOf("radar", "contact_lost")
	require.True(t, ok)
	assert.Equal(t, own.Label(), e.Ship)
	assert.Equal(t, uint64(2), e.Tick)
	assert.Zero(t, s.Log().CountCategory("radar", "rssi"), "rssi entries are verbose only")
}

func TestSimulation_VerboseLogsRSSI(t *testing.T) {
	s := New(WithLog(NewSimLog(true)))
	s.AddShip(Fighter(0))
	s.AddShip(Target(1).At(1000, 0))
	s.Run(3)
	assert.Equal(t, 3, s.Log().CountCategory("radar", "rssi"))
	e, _ := s.Log().LastOf("radar", "rssi")
	assert.InDelta(t, 0.152, e.NumVal, 1e-3)
}

func TestParseShipClass(t *testing.T) {
	for c := ClassFighter; c <= ClassTorpedo; c++ {
		got, err := ParseShipClass(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseShipClass("  Cruiser ")
	require.NoError(t, err)
	assert.Equal(t, ClassCruiser, got)

	_, err = ParseShipClass("battlestar")
	assert.Error(t, err)
	assert.Equal(t, "unknown", ShipClass(99).String())
}

func TestSimulation_ControllerOfRemovedShipSkipped(t *testing.T) {
	s := New()
	victimRan := false
	var victim ShipHandle
	s.AddShip(Fighter(0).Controlled(ControllerFunc(func(s *Simulation, _ *Ship) {
		s.RemoveShip(victim)
	})))
	victim = s.AddShip(Fighter(1).Controlled(ControllerFunc(func(*Simulation, *Ship) {
		victimRan = true
	})))

	s.Step()
	assert.False(t, victimRan, "a ship removed earlier in the control phase must not run its controller")
	_, ok := s.Ship(victim)
	assert.False(t, ok)
	assert.Len(t, s.Handles(), 1)
}

func TestPresetConstructors(t *testing.T) {
	cases := []struct {
		spec     ShipSpec
		class    ShipClass
		hasRadar bool
	}{
		{Fighter(0), ClassFighter, true},
		{Frigate(0), ClassFrigate, true},
		{Cruiser(0), ClassCruiser, true},
		{Missile(0), ClassMissile, true},
		{Torpedo(0), ClassTorpedo, true},
		{Target(0), ClassTarget, false},
		{Asteroid(0), ClassAsteroid, false},
	}
	for _, c := range cases {
		t.Run(c.class.String(), func(t *testing.T) {
			assert.Equal(t, c.class, c.spec.Class)
			assert.Equal(t, PresetFor(c.class, 0), c.spec)
			assert.Greater(t, c.spec.RadarCrossSection, 0.0)
			if !c.hasRadar {
				assert.Nil(t, c.spec.Radar)
				return
			}
			require.NotNil(t, c.spec.Radar)
			assert.NoError(t, c.spec.Radar.Validate())
		})
	}
}
