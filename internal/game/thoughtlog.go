package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Radar-Sense/internal/sim"
)

const (
	logPanelWidth = 360
	logMaxEntries = 60
	logLineHeight = 14
)

// ThoughtEntry is a single line in the event log panel.
type ThoughtEntry struct {
	Tick    uint64
	Label   string // e.g. "fighter#0"
	Team    string
	Message string
}

// ThoughtLog is a ring buffer of radar events rendered on-screen.
type ThoughtLog struct {
	entries []ThoughtEntry
	head    int
	count   int
	cursor  int // SimLog entries already consumed
}

// NewThoughtLog creates a thought log with a fixed capacity.
func NewThoughtLog() *ThoughtLog {
	return &ThoughtLog{
		entries: make([]ThoughtEntry, logMaxEntries),
	}
}

// Add appends an entry to the log.
func (tl *ThoughtLog) Add(tick uint64, label, team, msg string) {
	tl.entries[tl.head] = ThoughtEntry{
		Tick:    tick,
		Label:   label,
		Team:    team,
		Message: msg,
	}
	tl.head = (tl.head + 1) % logMaxEntries
	if tl.count < logMaxEntries {
		tl.count++
	}
}

// Feed copies any SimLog entries recorded since the last call.
func (tl *ThoughtLog) Feed(sl *sim.SimLog) {
	for _, e := range sl.Since(tl.cursor) {
		msg := e.Key
		if e.Value != "" {
			msg += " " + e.Value
		}
		tl.Add(e.Tick, e.Ship, e.Team, msg)
	}
	tl.cursor = sl.Len()
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	result := make([]ThoughtEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + logMaxEntries) % logMaxEntries
		result[i] = tl.entries[idx]
	}
	return result
}

// Draw renders the log panel on the right side of the screen.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 8, G: 10, B: 16, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 90, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 18, G: 24, B: 40, A: 255}, false)
	drawText(screen, face, "RADAR LOG", panelX+8, 3, color.White)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 70, B: 110, A: 200}, false)

	entries := tl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	recent := 3

	y := 22
	for i, e := range visible {
		isRecent := i >= len(visible)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 26, G: 34, B: 52, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, teamColor(e.Team), false)

		textCol := color.RGBA{R: 150, G: 160, B: 175, A: 255}
		if isRecent {
			textCol = color.RGBA{R: 235, G: 240, B: 250, A: 255}
		}
		line := fmt.Sprintf("%5d %-11s %s", e.Tick, e.Label, e.Message)
		drawText(screen, face, line, panelX+12, y, textCol)
		y += logLineHeight
	}
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}
