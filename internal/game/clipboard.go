package game

import "github.com/atotto/clipboard"

// copyReport places the current radar report on the system clipboard.
func (g *Game) copyReport() error {
	rep := g.sim.Reporter()
	if rep == nil {
		return nil
	}
	return clipboard.WriteAll(rep.Report().String())
}
