package sim

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// wedgeArcSegments is the number of chords approximating the beam's arc.
const wedgeArcSegments = 20

// radarDebugColor is the tint of beam wedge lines.
var radarDebugColor = color.RGBA{R: 26, G: 51, B: 77, A: 255}

// Line is a diagnostic line segment in world coordinates.
type Line struct {
	A, B  r2.Vec
	Color color.RGBA
}

// DebugLines is the diagnostic geometry one emitter produced during a tick.
type DebugLines struct {
	Handle ShipHandle
	Lines  []Line
}

// emitterLines approximates the beam's footprint as a wedge: arc chords at
// the approximate detection range plus the two edge rays. It returns nil
// when the range is not a positive finite number.
func emitterLines(e *emitter) []Line {
	r := approxRange(e)
	if !isFinite(r) || r <= 0 {
		return nil
	}
	w := e.endBearing - e.startBearing
	at := func(bearing float64) r2.Vec {
		return r2.Add(e.center, r2.Scale(r, bearingVec(bearing)))
	}

	lines := make([]Line, 0, wedgeArcSegments+2)
	for i := 0; i < wedgeArcSegments; i++ {
		frac := float64(i) / wedgeArcSegments
		a := e.startBearing + w*frac
		b := e.startBearing + w*(frac+1.0/wedgeArcSegments)
		lines = append(lines, Line{A: at(a), B: at(b), Color: radarDebugColor})
	}
	lines = append(lines,
		Line{A: e.center, B: at(e.startBearing), Color: radarDebugColor},
		Line{A: e.center, B: at(e.endBearing), Color: radarDebugColor},
	)
	return lines
}

// BeamRange returns the approximate display range of sh's radar against a
// nominal target, or 0 if the ship has no radar or the range is unbounded.
func BeamRange(sh *Ship) float64 {
	if sh.radar == nil {
		return 0
	}
	e := newEmitter(sh)
	r := approxRange(&e)
	if !isFinite(r) {
		return 0
	}
	return math.Max(r, 0)
}
