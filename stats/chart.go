// stats/chart.go
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const defaultChartWidth = 40

// RenderChart writes a horizontal bar chart of s, one row per mood, scaled so
// that 100% spans width cells.
func RenderChart(w io.Writer, s Summary, width int) error {
	if width <= 0 {
		width = defaultChartWidth
	}

	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "No mood data available")
		return err
	}

	for _, b := range s.Bars() {
		cells := int(math.Round(b.Percent / 100 * float64(width)))
		bar := strings.Repeat("█", cells) + strings.Repeat("·", width-cells)
		if _, err := fmt.Fprintf(w, "%-6s │%s│ %6.2f%% (%d)\n", b.Mood, bar, b.Percent, b.Count); err != nil {
			return err
		}
	}

	mode := "-"
	if s.Mode != "" {
		mode = s.Mode.String()
	}
	_, err := fmt.Fprintf(w, "Total Moods: %d\nMost Common Mood: %s\n", s.Total, mode)
	return err
}
