package viz

import (
	"strings"

	"github.com/san-kum/beamsim/internal/beam"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// starting at U+2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a character grid addressed in dots; it is Width*2 dots wide and
// Height*4 dots tall.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Scatter clears the canvas and plots coordinate qIdx against pIdx of every
// particle, scaled so the beam fills the canvas around a centered origin.
// The axes are drawn through the origin.
func (c *Canvas) Scatter(ps []beam.Particle, qIdx, pIdx int) {
	c.Clear()
	w, h := c.Width*2, c.Height*4
	c.DrawLine(0, h/2, w-1, h/2)
	c.DrawLine(w/2, 0, w/2, h-1)

	var qMax, pMax float64
	for i := range ps {
		v := ps[i].Vector()
		qMax = max(qMax, abs(v[qIdx]))
		pMax = max(pMax, abs(v[pIdx]))
	}
	if qMax == 0 {
		qMax = 1
	}
	if pMax == 0 {
		pMax = 1
	}

	for i := range ps {
		v := ps[i].Vector()
		x := int(float64(w/2) + v[qIdx]/qMax*float64(w/2-1))
		y := int(float64(h/2) - v[pIdx]/pMax*float64(h/2-1))
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
