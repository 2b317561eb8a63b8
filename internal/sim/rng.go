package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// tickSeedStream selects the PCG stream used for per-tick noise.
const tickSeedStream = 0x9e3779b97f4a7c15

// newTickRNG returns the noise source for one sense pass. It depends only on
// the tick index, so replaying a tick sequence replays its noise. Emitters
// share the tick's stream in registry order.
func newTickRNG(tick uint64) rand.Source {
	return rand.NewPCG(tick, tickSeedStream)
}

// noise draws a 2-D standard normal sample scaled by 1/rssi: strong echoes
// give tight estimates, echoes near the floor give wide ones.
func noise(src rand.Source, rssi float64) r2.Vec {
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	return r2.Scale(1/rssi, r2.Vec{X: n.Rand(), Y: n.Rand()})
}
