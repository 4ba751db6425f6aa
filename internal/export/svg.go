// Package export renders beam plots as SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/viz"
)

const background = "#0a0a0a"

var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG draws every dot of a Braille canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := int(canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PortraitToSVG scatters coordinate qIdx against pIdx of ps on a canvas
// of w x h cells and renders it.
func PortraitToSVG(ps []beam.Particle, qIdx, pIdx, w, h int, scale float64) string {
	c := viz.NewCanvas(w, h)
	c.Scatter(ps, qIdx, pIdx)
	return CanvasToSVG(c, scale, "#00ff88")
}

// SeriesToSVG draws ys against their index as a polyline with 10% padding
// around the data range. Fewer than two points give "".
func SeriesToSVG(ys []float64, width, height int, stroke string) string {
	if len(ys) < 2 {
		return ""
	}

	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		minY = min(minY, y)
		maxY = max(maxY, y)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	stepX := float64(width) / float64(len(ys)-1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, stroke)

	for i, y := range ys {
		px := float64(i) * stepX
		py := float64(height) - (y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
