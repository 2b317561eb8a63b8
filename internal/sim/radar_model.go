package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// minRangeSquared bounds the inverse-square falloff so coincident ships
	// yield a large finite RSSI instead of +Inf or NaN.
	minRangeSquared = 1.0

	// nominalCrossSection is the target size assumed when estimating how
	// far a beam reaches for display.
	nominalCrossSection = 5.0
)

// insideBeam reports whether p lies in the emitter's sector. The start ray
// is inclusive and the end ray exclusive.
func insideBeam(e *emitter, p r2.Vec) bool {
	if e.width >= fullTurn {
		return true
	}
	if e.width <= 0 {
		return false
	}
	ray0 := bearingVec(e.startBearing)
	ray1 := bearingVec(e.endBearing)
	dp := r2.Sub(p, e.center)
	if isClockwise(ray1, ray0) {
		// Sector narrower than a half turn: between the rays.
		return !isClockwise(ray0, dp) && isClockwise(ray1, dp)
	}
	// Sector of a half turn or more: everything not in the complement.
	return isClockwise(ray1, dp) || !isClockwise(ray0, dp)
}

// isClockwise reports whether v1 lies strictly clockwise of v0.
func isClockwise(v0, v1 r2.Vec) bool {
	return r2.Cross(v0, v1) < 0
}

// bearingVec returns the unit vector for an absolute bearing.
func bearingVec(bearing float64) r2.Vec {
	return r2.Vec{X: math.Cos(bearing), Y: math.Sin(bearing)}
}

// computeRSSI returns the received signal strength of r's echo. Power is
// spread over the beam's angular extent and falls off with the square of
// range, scaled by the target and receiver cross-sections.
func computeRSSI(e *emitter, r *reflector) float64 {
	rSq := math.Max(r2.Norm2(r2.Sub(r.position, e.center)), minRangeSquared)
	return e.power * r.radarCrossSection * e.rxCrossSection / (fullTurn * e.width * rSq)
}

// approxRange is the distance at which a nominal target's echo drops to the
// detection floor. It is a display heuristic and plays no part in detection.
func approxRange(e *emitter) float64 {
	return math.Sqrt(e.power * nominalCrossSection * e.rxCrossSection /
		(fullTurn * e.width * e.minRSSI))
}

func r2Dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
