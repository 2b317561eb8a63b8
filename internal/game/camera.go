package game

import "math"

const (
	zoomMin = 0.02
	zoomMax = 4.0
)

// camera maps world coordinates (y up) to viewport pixels (y down).
type camera struct {
	x, y float64 // world-space centre
	zoom float64 // pixels per world unit
	vpW  float64
	vpH  float64
}

func (c *camera) worldToScreen(wx, wy float64) (float32, float32) {
	sx := (wx-c.x)*c.zoom + c.vpW/2
	sy := c.vpH/2 - (wy-c.y)*c.zoom
	return float32(sx), float32(sy)
}

func (c *camera) screenToWorld(sx, sy float64) (float64, float64) {
	wx := (sx-c.vpW/2)/c.zoom + c.x
	wy := (c.vpH/2-sy)/c.zoom + c.y
	return wx, wy
}

// zoomBy scales the zoom by f, clamped to [zoomMin, zoomMax].
func (c *camera) zoomBy(f float64) {
	c.zoom = math.Max(zoomMin, math.Min(zoomMax, c.zoom*f))
}

// pan moves the centre by a screen-space offset.
func (c *camera) pan(dx, dy float64) {
	c.x += dx / c.zoom
	c.y -= dy / c.zoom
}
