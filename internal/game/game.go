// Package game is the interactive viewer: it steps a radar simulation at the
// fixed tick rate and draws ships, beam wedges, and reported contacts.
package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Garsondee/Radar-Sense/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the viewport.
const borderWidth = 24

// gridSpacing is the world-space distance between background grid lines.
const gridSpacing = 500.0

// statusTicks is how long a status message stays on screen.
const statusTicks = 180

// simSpeeds are the selectable tick-rate multipliers.
var simSpeeds = []float64{0, 0.25, 0.5, 1, 2, 4, 8}

type Game struct {
	width      int
	height     int
	gameWidth  int // viewport width (log panel takes the rest)
	gameHeight int
	offX       int
	offY       int

	sim        *sim.Simulation
	name       string
	thoughtLog *ThoughtLog
	face       text.Face

	showHUD    bool
	showWedges bool
	prevKeys   map[ebiten.Key]bool

	cam camera

	// viewBuf holds the world layer so it can be clipped to the viewport.
	viewBuf *ebiten.Image

	simSpeed  float64 // multiplier: 0=paused
	tickAccum float64 // fractional tick accumulator for sub-1x speeds

	status      string
	statusUntil uint64
}

// New creates a viewer for s centred on centre. The simulation should have
// a Reporter attached for the clipboard report to carry anything.
func New(s *sim.Simulation, name string, centre r2.Vec) *Game {
	viewW, viewH := 1520, 864
	g := &Game{
		width:      borderWidth + viewW + borderWidth + logPanelWidth,
		height:     borderWidth + viewH + borderWidth,
		gameWidth:  viewW,
		gameHeight: viewH,
		offX:       borderWidth,
		offY:       borderWidth,
		sim:        s,
		name:       name,
		thoughtLog: NewThoughtLog(),
		face:       text.NewGoXFace(basicfont.Face7x13),
		showHUD:    true,
		showWedges: true,
		prevKeys:   make(map[ebiten.Key]bool),
		cam:        camera{x: centre.X, y: centre.Y, zoom: 0.15, vpW: float64(viewW), vpH: float64(viewH)},
		simSpeed:   1,
	}
	g.viewBuf = ebiten.NewImage(viewW, viewH)
	return g
}

func (g *Game) Update() error {
	// Input is handled every frame regardless of sim speed.
	g.handleInput()

	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	return nil
}

// simTick runs one simulation tick and feeds the log panel.
func (g *Game) simTick() {
	g.sim.Step()
	g.thoughtLog.Feed(g.sim.Log())
}

// pressed reports a key-down edge and records the key's state in cur.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes keypresses (edge-triggered) and camera movement.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}

	if g.pressed(currentKeys, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(currentKeys, ebiten.KeyB) {
		g.showWedges = !g.showWedges
	}

	// Camera pan: WASD or arrow keys.
	const panPixels = 8.0
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.pan(0, -panPixels)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.pan(0, panPixels)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.pan(-panPixels, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.pan(panPixels, 0)
	}

	// Camera zoom: mouse wheel or =/- keys.
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.zoomBy(math.Pow(1.12, wy))
	}
	if g.pressed(currentKeys, ebiten.KeyEqual) {
		g.cam.zoomBy(1.25)
	}
	if g.pressed(currentKeys, ebiten.KeyMinus) {
		g.cam.zoomBy(1 / 1.25)
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	if g.pressed(currentKeys, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(currentKeys, ebiten.KeyComma) {
		g.simSpeed = slowerSpeed(g.simSpeed)
	}
	if g.pressed(currentKeys, ebiten.KeyPeriod) {
		g.simSpeed = fasterSpeed(g.simSpeed)
	}
	// N: single step while paused.
	if g.pressed(currentKeys, ebiten.KeyN) && g.simSpeed == 0 {
		g.simTick()
	}

	// C: copy the radar report to the clipboard.
	if g.pressed(currentKeys, ebiten.KeyC) {
		if err := g.copyReport(); err != nil {
			log.Warn("clipboard copy failed", "err", err)
			g.setStatus("clipboard unavailable")
		} else {
			g.setStatus("report copied")
		}
	}

	g.prevKeys = currentKeys
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = g.sim.Tick() + statusTicks
}

// slowerSpeed returns the next lower speed step.
func slowerSpeed(cur float64) float64 {
	for i := len(simSpeeds) - 1; i >= 0; i-- {
		if simSpeeds[i] < cur {
			return simSpeeds[i]
		}
	}
	return simSpeeds[0]
}

// fasterSpeed returns the next higher speed step.
func fasterSpeed(cur float64) float64 {
	for _, s := range simSpeeds {
		if s > cur {
			return s
		}
	}
	return simSpeeds[len(simSpeeds)-1]
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 6, G: 8, B: 14, A: 255})

	g.viewBuf.Fill(color.RGBA{R: 10, G: 14, B: 24, A: 255})
	g.drawGrid(g.viewBuf)
	if g.showWedges {
		g.drawWedges(g.viewBuf)
	}
	g.drawShips(g.viewBuf)
	g.drawContacts(g.viewBuf)

	var blit ebiten.DrawImageOptions
	blit.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.viewBuf, &blit)

	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 60, G: 80, B: 120, A: 255}, false)

	logX := g.offX + g.gameWidth + g.offX
	g.thoughtLog.Draw(screen, g.face, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.status != "" && g.sim.Tick() < g.statusUntil {
		drawText(screen, g.face, g.status, g.offX+6, g.offY+6, color.RGBA{R: 240, G: 220, B: 120, A: 255})
	}
}

func (g *Game) drawGrid(dst *ebiten.Image) {
	c := color.RGBA{R: 26, G: 34, B: 52, A: 255}
	x0, y1 := g.cam.screenToWorld(0, 0)
	x1, y0 := g.cam.screenToWorld(g.cam.vpW, g.cam.vpH)
	if (x1-x0)/gridSpacing > 400 {
		return
	}
	for x := math.Floor(x0/gridSpacing) * gridSpacing; x <= x1; x += gridSpacing {
		sx, _ := g.cam.worldToScreen(x, 0)
		vector.StrokeLine(dst, sx, 0, sx, float32(g.cam.vpH), 1.0, c, false)
	}
	for y := math.Floor(y0/gridSpacing) * gridSpacing; y <= y1; y += gridSpacing {
		_, sy := g.cam.worldToScreen(0, y)
		vector.StrokeLine(dst, 0, sy, float32(g.cam.vpW), sy, 1.0, c, false)
	}
}

// drawWedges renders the debug lines recorded by the last sense pass.
func (g *Game) drawWedges(dst *ebiten.Image) {
	for _, h := range g.sim.Handles() {
		for _, ln := range g.sim.DebugLines(h) {
			ax, ay := g.cam.worldToScreen(ln.A.X, ln.A.Y)
			bx, by := g.cam.worldToScreen(ln.B.X, ln.B.Y)
			c := ln.Color
			c.R, c.G, c.B = c.R*3, c.G*3, c.B*3 // lift the dim debug colour for a dark background
			vector.StrokeLine(dst, ax, ay, bx, by, 1.0, c, true)
		}
	}
}

func (g *Game) drawShips(dst *ebiten.Image) {
	for _, sh := range g.sim.Ships() {
		p := sh.Position()
		sx, sy := g.cam.worldToScreen(p.X, p.Y)
		radius := float32(math.Max(3, math.Sqrt(sh.RadarCrossSection())*2*g.cam.zoom))
		col := shipColor(sh.Team())
		vector.FillCircle(dst, sx, sy, radius, col, true)

		// Heading tick.
		hx, hy := g.cam.worldToScreen(
			p.X+math.Cos(sh.Heading())*float64(radius*2)/g.cam.zoom,
			p.Y+math.Sin(sh.Heading())*float64(radius*2)/g.cam.zoom)
		vector.StrokeLine(dst, sx, sy, hx, hy, 1.5, col, true)

		if r := sh.Radar(); r != nil {
			if _, ok := r.Result(); ok {
				vector.StrokeCircle(dst, sx, sy, radius+3, 1.0, color.RGBA{R: 240, G: 220, B: 120, A: 200}, true)
			}
		}
		drawText(dst, g.face, sh.Label(), int(sx)+int(radius)+4, int(sy)-6, color.RGBA{R: 150, G: 160, B: 180, A: 255})
	}
}

// drawContacts marks each radar's noisy reported position with a cross
// joined to its owner by a faint line.
func (g *Game) drawContacts(dst *ebiten.Image) {
	for _, sh := range g.sim.Ships() {
		r := sh.Radar()
		if r == nil {
			continue
		}
		res, ok := r.Result()
		if !ok {
			continue
		}
		col := shipColor(sh.Team())
		cx, cy := g.cam.worldToScreen(res.Position.X, res.Position.Y)
		ox, oy := g.cam.worldToScreen(sh.Position().X, sh.Position().Y)
		faint := col
		faint.A = 60
		vector.StrokeLine(dst, ox, oy, cx, cy, 1.0, faint, true)

		const arm = 5
		vector.StrokeLine(dst, cx-arm, cy-arm, cx+arm, cy+arm, 1.5, col, true)
		vector.StrokeLine(dst, cx-arm, cy+arm, cx+arm, cy-arm, 1.5, col, true)
		if res.Classified {
			drawText(dst, g.face, res.Class.String(), int(cx)+7, int(cy)+2, col)
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		fmt.Sprintf("%s  tick %d", g.name, g.sim.Tick()),
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed  N=step", speedLabel(g.simSpeed)),
		fmt.Sprintf("[B] wedges %s", onOff(g.showWedges)),
		"[C] copy radar report",
		"[H] toggle HUD",
		"WASD/arrows=pan  scroll=zoom",
		fmt.Sprintf("zoom: %.3f px/unit", g.cam.zoom),
	}

	const lineH = 14
	const charW = 7
	const padX = 6
	const padY = 5

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(g.offX + 6)
	by := float32(g.offY+g.gameHeight) - boxH - 6

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 16, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 120, A: 180}, false)
	for i, line := range lines {
		drawText(screen, g.face, line, int(bx)+padX, int(by)+padY+i*lineH, color.White)
	}
}

func speedLabel(s float64) string {
	if s == 0 {
		return "PAUSED"
	}
	return fmt.Sprintf("%gx", s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func shipColor(team int) color.RGBA {
	switch team {
	case 0:
		return color.RGBA{R: 220, G: 80, B: 70, A: 255}
	case 1:
		return color.RGBA{R: 80, G: 130, B: 230, A: 255}
	default:
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
}

// teamColor maps a SimLog team label to its ship colour.
func teamColor(label string) color.RGBA {
	var team int
	if _, err := fmt.Sscanf(label, "team%d", &team); err != nil {
		return shipColor(-1)
	}
	return shipColor(team)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size returns the window size the viewer lays out for.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}
