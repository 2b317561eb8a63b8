package sim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// fullTurn is one complete rotation in radians. A beam at least this wide
	// has no directional restriction.
	fullTurn = 2 * math.Pi

	defaultRadarWidth   = fullTurn / 6 // 60 degrees
	defaultMinRSSI      = 1e-2
	defaultClassifyRSSI = 1e-1
)

// Configuration errors returned by the Radar setters.
var (
	ErrInvalidWidth     = errors.New("radar width must be finite and non-negative")
	ErrInvalidHeading   = errors.New("radar heading must be finite")
	ErrInvalidPower     = errors.New("radar power and cross-section must be finite and non-negative")
	ErrInvalidThreshold = errors.New("radar thresholds must be finite with classify >= min")
)

// Radar is a directional sensor carried by a ship.
//
// The exported fields are configuration owned by the ship's control logic and
// may be changed between ticks. The scan result is written only by
// TickRadars and is read through Result or Scan.
type Radar struct {
	Heading        float64 // radians, relative to the ship's heading
	Width          float64 // radians, total beam span; >= 2π is full coverage
	Power          float64
	RxCrossSection float64 // receiver effective aperture
	MinRSSI        float64 // detection floor
	ClassifyRSSI   float64 // classification floor, expected >= MinRSSI

	result    ScanResult
	hasResult bool
	rssi      float64
}

// ScanResult is one tick's detection. Position and velocity are noisy
// estimates of the target's true state.
type ScanResult struct {
	Class      ShipClass
	Classified bool // Class is meaningful only when true
	Position   r2.Vec
	Velocity   r2.Vec
}

// Result returns the last tick's scan result, or false if nothing was found.
func (r *Radar) Result() (ScanResult, bool) {
	return r.result, r.hasResult
}

// SignalStrength returns the RSSI of the last tick's detection, or 0 if
// there was none.
func (r *Radar) SignalStrength() float64 {
	if !r.hasResult {
		return 0
	}
	return r.rssi
}

// SetHeading sets the beam heading relative to the ship.
func (r *Radar) SetHeading(h float64) error {
	if !isFinite(h) {
		return fmt.Errorf("%w: got %v", ErrInvalidHeading, h)
	}
	r.Heading = h
	return nil
}

// SetWidth sets the beam width. Widths beyond one full turn are clamped to
// exactly one turn; negative or non-finite widths are rejected and leave the
// radar unchanged.
func (r *Radar) SetWidth(w float64) error {
	if !isFinite(w) || w < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidWidth, w)
	}
	r.Width = math.Min(w, fullTurn)
	return nil
}

// SetPower sets the transmit power.
func (r *Radar) SetPower(p float64) error {
	if !isFinite(p) || p < 0 {
		return fmt.Errorf("%w: power %v", ErrInvalidPower, p)
	}
	r.Power = p
	return nil
}

// SetThresholds sets the detection and classification floors together so
// the ordering between them can be checked.
func (r *Radar) SetThresholds(minRSSI, classifyRSSI float64) error {
	if !isFinite(minRSSI) || !isFinite(classifyRSSI) || minRSSI < 0 || classifyRSSI < minRSSI {
		return fmt.Errorf("%w: min %v classify %v", ErrInvalidThreshold, minRSSI, classifyRSSI)
	}
	r.MinRSSI = minRSSI
	r.ClassifyRSSI = classifyRSSI
	return nil
}

// Validate checks every configuration field.
func (r *Radar) Validate() error {
	if !isFinite(r.Heading) {
		return fmt.Errorf("%w: got %v", ErrInvalidHeading, r.Heading)
	}
	if !isFinite(r.Width) || r.Width < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidWidth, r.Width)
	}
	if !isFinite(r.Power) || r.Power < 0 {
		return fmt.Errorf("%w: power %v", ErrInvalidPower, r.Power)
	}
	if !isFinite(r.RxCrossSection) || r.RxCrossSection < 0 {
		return fmt.Errorf("%w: rx cross-section %v", ErrInvalidPower, r.RxCrossSection)
	}
	if !isFinite(r.MinRSSI) || !isFinite(r.ClassifyRSSI) || r.MinRSSI < 0 || r.ClassifyRSSI < r.MinRSSI {
		return fmt.Errorf("%w: min %v classify %v", ErrInvalidThreshold, r.MinRSSI, r.ClassifyRSSI)
	}
	return nil
}

// Clone returns a copy of the configuration with no result.
func (r *Radar) Clone() *Radar {
	c := *r
	c.result, c.hasResult, c.rssi = ScanResult{}, false, 0
	return &c
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
