package main

import (
	"flag"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Radar-Sense/internal/game"
	"github.com/Garsondee/Radar-Sense/internal/scenario"
	"github.com/Garsondee/Radar-Sense/internal/sim"
)

func main() {
	name := flag.String("scenario", "furball", "built-in scenario name ("+strings.Join(scenario.Names(), ", ")+") or path to a YAML file")
	verbose := flag.Bool("verbose", false, "log per-tick signal strength")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	f, err := scenario.Resolve(*name)
	if err != nil {
		log.Error("cannot load scenario", "scenario", *name, "err", err)
		os.Exit(1)
	}
	s, err := f.Build(sim.WithLog(sim.NewSimLog(*verbose)), sim.WithReporter(sim.NewReporter()))
	if err != nil {
		log.Error("cannot build scenario", "scenario", f.Name, "err", err)
		os.Exit(1)
	}
	log.Info("starting viewer", "scenario", f.Name, "ships", len(f.Ships))

	g := game.New(s, f.Name, f.Centroid())
	ebiten.SetWindowTitle("Radar Sense - " + f.Name)
	ebiten.SetWindowSize(g.Size())
	ebiten.SetTPS(sim.TicksPerSecond)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal("viewer exited", "err", err)
	}
}
