package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func testEmitter(heading, width float64) emitter {
	return emitter{
		width:          width,
		startBearing:   heading - width/2,
		endBearing:     heading + width/2,
		power:          20e3,
		rxCrossSection: 5,
		minRSSI:        defaultMinRSSI,
		classifyRSSI:   defaultClassifyRSSI,
	}
}

func pointAt(bearing, dist float64) r2.Vec {
	return r2.Scale(dist, bearingVec(bearing))
}

func TestInsideBeam_BoundariesAreContinuous(t *testing.T) {
	const eps = 1e-6
	for _, deg := range []float64{60, 180, 270, 359} {
		w := deg * math.Pi / 180
		for _, heading := range []float64{0, 1, math.Pi, -2.5, 5.9} {
			e := testEmitter(heading, w)
			for _, edge := range []float64{heading - w/2, heading + w/2} {
				inward := 1.0
				if edge > heading {
					inward = -1.0
				}
				require.True(t, insideBeam(&e, pointAt(edge+inward*eps, 1000)),
					"width=%v heading=%v: point just inside edge %v should be in beam", deg, heading, edge)
				require.False(t, insideBeam(&e, pointAt(edge-inward*eps, 1000)),
					"width=%v heading=%v: point just outside edge %v should not be in beam", deg, heading, edge)
			}
		}
	}
}

func TestInsideBeam_FullCircle(t *testing.T) {
	e := testEmitter(0.3, fullTurn)
	for b := 0.0; b < fullTurn; b += 0.1 {
		require.True(t, insideBeam(&e, pointAt(b, 500)), "full circle beam should contain bearing %v", b)
	}
}

func TestInsideBeam_WrapsAcrossZero(t *testing.T) {
	// Sector from 350 to 10 degrees.
	e := testEmitter(fullTurn, 20*math.Pi/180)
	assert.True(t, insideBeam(&e, pointAt(5*math.Pi/180, 100)), "5 degrees")
	assert.True(t, insideBeam(&e, pointAt(-5*math.Pi/180, 100)), "355 degrees")
	assert.False(t, insideBeam(&e, pointAt(math.Pi, 100)), "180 degrees")
}

func TestInsideBeam_RelativeToCenter(t *testing.T) {
	e := testEmitter(0, math.Pi/3)
	e.center = r2.Vec{X: 500, Y: 500}
	assert.True(t, insideBeam(&e, r2.Vec{X: 900, Y: 510}), "east of an offset emitter")
	assert.False(t, insideBeam(&e, r2.Vec{X: 100, Y: 500}), "west of an offset emitter")
}

func TestComputeRSSI_InverseSquare(t *testing.T) {
	e := testEmitter(0, fullTurn/6)
	r := reflector{radarCrossSection: 10, position: r2.Vec{X: 1000}}
	near := computeRSSI(&e, &r)
	r.position = r2.Vec{X: 2000}
	far := computeRSSI(&e, &r)
	assert.InDelta(t, 4, near/far, 1e-9, "doubling range should quarter rssi")

	want := 20e3 * 10 * 5 / (fullTurn * fullTurn / 6 * 1e6)
	assert.InDelta(t, want, near, 1e-12)
}

func TestComputeRSSI_WiderBeamIsWeaker(t *testing.T) {
	narrow := testEmitter(0, fullTurn/6)
	wide := testEmitter(0, fullTurn/2)
	r := reflector{radarCrossSection: 10, position: r2.Vec{X: 1000}}
	assert.Greater(t, computeRSSI(&narrow, &r), computeRSSI(&wide, &r))
}

func TestComputeRSSI_ClampsMinimumRange(t *testing.T) {
	e := testEmitter(0, fullTurn)
	r := reflector{radarCrossSection: 10}
	got := computeRSSI(&e, &r)
	require.False(t, math.IsInf(got, 0) || math.IsNaN(got), "coincident rssi should be finite, got %v", got)

	r.position = r2.Vec{X: 0.5}
	assert.Equal(t, got, computeRSSI(&e, &r), "ranges under one unit clamp to the same rssi")
}

func TestApproxRange_InvertsRSSI(t *testing.T) {
	e := testEmitter(0, fullTurn/6)
	rng := approxRange(&e)
	r := reflector{radarCrossSection: nominalCrossSection, position: r2.Vec{X: rng}}
	assert.InDelta(t, e.minRSSI, computeRSSI(&e, &r), 1e-12)
}

func TestSelectTarget_FirstMaximalWins(t *testing.T) {
	e := testEmitter(0, fullTurn)
	refl := []reflector{
		{handle: 1, team: 1, radarCrossSection: 10, position: r2.Vec{X: 1000}},
		{handle: 2, team: 1, radarCrossSection: 10, position: r2.Vec{X: -1000}},
	}
	best, _ := selectTarget(&e, refl)
	require.NotNil(t, best)
	assert.Equal(t, ShipHandle(1), best.handle)
}

func TestSelectTarget_StrictlyAboveFloor(t *testing.T) {
	e := testEmitter(0, fullTurn/6)
	r := reflector{team: 1, radarCrossSection: 10, position: r2.Vec{X: 1000}}
	e.minRSSI = computeRSSI(&e, &r)
	best, _ := selectTarget(&e, []reflector{r})
	assert.Nil(t, best, "rssi equal to the floor must not qualify")

	e.minRSSI = math.Nextafter(e.minRSSI, 0)
	best, _ = selectTarget(&e, []reflector{r})
	assert.NotNil(t, best, "rssi just above the floor should qualify")
}

func TestSelectTarget_SkipsOwnTeam(t *testing.T) {
	e := testEmitter(0, fullTurn)
	e.team = 3
	refl := []reflector{
		{handle: 1, team: 3, radarCrossSection: 100, position: r2.Vec{X: 10}},
		{handle: 2, team: 4, radarCrossSection: 10, position: r2.Vec{X: 100}},
	}
	// Both echoes clear the floor and the teammate's is far stronger.
	require.Greater(t, computeRSSI(&e, &refl[1]), e.minRSSI)
	require.Greater(t, computeRSSI(&e, &refl[0]), computeRSSI(&e, &refl[1]))

	best, rssi := selectTarget(&e, refl)
	require.NotNil(t, best)
	assert.Equal(t, ShipHandle(2), best.handle)
	assert.Equal(t, computeRSSI(&e, &refl[1]), rssi)

	// With only the teammate present nothing is selected.
	best, _ = selectTarget(&e, refl[:1])
	assert.Nil(t, best)
}

func TestAssembleResult_ClassifyIsStrict(t *testing.T) {
	e := testEmitter(0, fullTurn/6)
	r := reflector{class: ClassCruiser}
	res := assembleResult(&e, &r, e.classifyRSSI, newTickRNG(0))
	assert.False(t, res.Classified, "rssi equal to classify_rssi must not classify")

	res = assembleResult(&e, &r, e.classifyRSSI*1.01, newTickRNG(0))
	assert.True(t, res.Classified)
	assert.Equal(t, ClassCruiser, res.Class)
}
