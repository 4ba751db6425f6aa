package diagnostics

import (
	"strings"

	"github.com/san-kum/beamsim/internal/beam"
)

// Portrait draws a width x height character scatter plot of coordinate
// qIdx against pIdx (beam.IX, beam.IPx, ...). Axes are drawn where they
// cross the plotted range.
func Portrait(ps []beam.Particle, qIdx, pIdx, width, height int) string {
	if len(ps) == 0 || width < 2 || height < 2 {
		return ""
	}

	first := ps[0].Vector()
	minX, maxX := first[qIdx], first[qIdx]
	minY, maxY := first[pIdx], first[pIdx]
	for i := range ps {
		v := ps[i].Vector()
		minX = min(minX, v[qIdx])
		maxX = max(maxX, v[qIdx])
		minY = min(minY, v[pIdx])
		maxY = max(maxY, v[pIdx])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i := range ps {
		v := ps[i].Vector()
		col := int((v[qIdx] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((v[pIdx]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
