// Package scenario loads ship layouts and radar overrides from YAML and
// builds simulations from them.
package scenario

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Radar-Sense/internal/sim"
)

// maxFileSize bounds scenario files read from disk.
const maxFileSize = 1 << 20

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrUnknownScenario is returned by Builtin for names with no embedded file.
var ErrUnknownScenario = errors.New("unknown scenario")

// File is a parsed scenario.
type File struct {
	Name      string      `yaml:"name"`
	Ticks     int         `yaml:"ticks"`
	StartTick uint64      `yaml:"start_tick"`
	Ships     []ShipEntry `yaml:"ships"`
}

// ShipEntry places one ship. Angles are in degrees.
type ShipEntry struct {
	Class           string      `yaml:"class"`
	Team            int         `yaml:"team"`
	Position        [2]float64  `yaml:"position"`
	Velocity        [2]float64  `yaml:"velocity"`
	Heading         float64     `yaml:"heading_deg"`
	AngularVelocity float64     `yaml:"angular_velocity_deg"` // per second
	Radar           *RadarEntry `yaml:"radar,omitempty"`
}

// RadarEntry overrides a class's default radar. Nil fields keep the default.
type RadarEntry struct {
	Heading        *float64 `yaml:"heading_deg,omitempty"`
	Width          *float64 `yaml:"width_deg,omitempty"`
	Power          *float64 `yaml:"power,omitempty"`
	RxCrossSection *float64 `yaml:"rx_cross_section,omitempty"`
	MinRSSI        *float64 `yaml:"min_rssi,omitempty"`
	ClassifyRSSI   *float64 `yaml:"classify_rssi,omitempty"`
	SweepRate      float64  `yaml:"sweep_rate_deg,omitempty"` // per tick; 0 = fixed beam
}

// Load reads and validates a scenario file.
func Load(p string) (*File, error) {
	clean := filepath.Clean(p)
	if ext := filepath.Ext(clean); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("scenario file must have .yaml or .yml extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scenario file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("scenario file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", clean, err)
	}
	log.Debug("loaded scenario", "path", clean, "name", f.Name, "ships", len(f.Ships))
	return f, nil
}

// Parse decodes and validates scenario YAML. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &f, nil
}

// Builtin returns one of the embedded scenarios.
func Builtin(name string) (*File, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScenario, name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// Names lists the embedded scenarios.
func Names() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve treats arg as a file path if it names a YAML file, otherwise as a
// built-in scenario name.
func Resolve(arg string) (*File, error) {
	if ext := filepath.Ext(arg); ext == ".yaml" || ext == ".yml" {
		return Load(arg)
	}
	return Builtin(arg)
}

// Validate checks every ship entry. Radar overrides go through the same
// setters the control logic uses, so a scenario cannot carry a width the
// tick pass would mis-handle.
func (f *File) Validate() error {
	if f.Ticks < 0 {
		return fmt.Errorf("ticks must be >= 0, got %d", f.Ticks)
	}
	if len(f.Ships) == 0 {
		return errors.New("scenario has no ships")
	}
	for i := range f.Ships {
		if _, err := f.Ships[i].spec(); err != nil {
			return fmt.Errorf("ship %d: %w", i, err)
		}
	}
	return nil
}

// Build creates a simulation populated with the scenario's ships.
func (f *File) Build(opts ...sim.Option) (*sim.Simulation, error) {
	opts = append([]sim.Option{sim.WithStartTick(f.StartTick)}, opts...)
	s := sim.New(opts...)
	for i := range f.Ships {
		spec, err := f.Ships[i].spec()
		if err != nil {
			return nil, fmt.Errorf("ship %d: %w", i, err)
		}
		s.AddShip(spec)
	}
	return s, nil
}

func (e *ShipEntry) spec() (sim.ShipSpec, error) {
	class, err := sim.ParseShipClass(e.Class)
	if err != nil {
		return sim.ShipSpec{}, err
	}
	for _, v := range []float64{e.Position[0], e.Position[1], e.Velocity[0], e.Velocity[1], e.Heading, e.AngularVelocity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return sim.ShipSpec{}, fmt.Errorf("non-finite kinematics for %s", class)
		}
	}

	sp := sim.PresetFor(class, e.Team).
		At(e.Position[0], e.Position[1]).
		Moving(e.Velocity[0], e.Velocity[1]).
		Facing(deg(e.Heading))
	sp.AngularVelocity = deg(e.AngularVelocity)

	if e.Radar == nil {
		return sp, nil
	}
	if sp.Radar == nil {
		return sim.ShipSpec{}, fmt.Errorf("class %s carries no radar", class)
	}
	if err := e.Radar.apply(sp.Radar); err != nil {
		return sim.ShipSpec{}, err
	}
	if e.Radar.SweepRate != 0 {
		sp.Controller = Sweep(deg(e.Radar.SweepRate))
	}
	return sp, nil
}

func (re *RadarEntry) apply(r *sim.Radar) error {
	if re.Heading != nil {
		if err := r.SetHeading(deg(*re.Heading)); err != nil {
			return err
		}
	}
	if re.Width != nil {
		w := deg(*re.Width)
		if *re.Width >= 360 {
			w = 2 * math.Pi
		}
		if err := r.SetWidth(w); err != nil {
			return err
		}
	}
	if re.Power != nil {
		if err := r.SetPower(*re.Power); err != nil {
			return err
		}
	}
	if re.RxCrossSection != nil {
		r.RxCrossSection = *re.RxCrossSection
	}
	minRSSI, classifyRSSI := r.MinRSSI, r.ClassifyRSSI
	if re.MinRSSI != nil {
		minRSSI = *re.MinRSSI
	}
	if re.ClassifyRSSI != nil {
		classifyRSSI = *re.ClassifyRSSI
	}
	if err := r.SetThresholds(minRSSI, classifyRSSI); err != nil {
		return err
	}
	if math.IsNaN(re.SweepRate) || math.IsInf(re.SweepRate, 0) {
		return fmt.Errorf("sweep rate must be finite, got %v", re.SweepRate)
	}
	return r.Validate()
}

// Sweep returns a controller that rotates its ship's radar by rate radians
// every tick.
func Sweep(rate float64) sim.Controller {
	return sim.ControllerFunc(func(_ *sim.Simulation, sh *sim.Ship) {
		r := sh.Radar()
		if r == nil {
			return
		}
		if err := r.SetHeading(math.Remainder(r.Heading+rate, 2*math.Pi)); err != nil {
			log.Warn("sweep controller rejected heading", "ship", sh.Label(), "err", err)
		}
	})
}

// Centroid returns the mean position of the scenario's ships, useful for
// framing a camera.
func (f *File) Centroid() r2.Vec {
	var c r2.Vec
	for _, e := range f.Ships {
		c = r2.Add(c, r2.Vec{X: e.Position[0], Y: e.Position[1]})
	}
	if len(f.Ships) == 0 {
		return c
	}
	return r2.Scale(1/float64(len(f.Ships)), c)
}

func deg(d float64) float64 { return d * math.Pi / 180 }
