package viz

import "github.com/guptarohit/asciigraph"

// Plot draws data as an ASCII line chart. An empty series yields "".
func Plot(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
