// ABOUTME: Sparkline widget renders mini charts using block characters
// ABOUTME: Used to show per-vehicle fuel consumption inside a KPI block

package widgets

import (
	"github.com/charmbracelet/lipgloss"
)

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values scaled between their min and max.
// Shorter inputs are left-padded with the lowest block.
func Sparkline(values []float64, width int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sampled := sampleValues(values, width)
	lo, hi := sampled[0], sampled[0]
	for _, v := range sampled {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(sampled))
	for i, v := range sampled {
		out[i] = valueToBlock(v, lo, hi)
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(string(out))
}

// sampleValues resamples values to exactly width points
func sampleValues(values []float64, width int) []float64 {
	if len(values) == width {
		return values
	}
	out := make([]float64, width)
	if len(values) < width {
		pad := width - len(values)
		lo := values[0]
		for _, v := range values {
			lo = min(lo, v)
		}
		for i := range pad {
			out[i] = lo
		}
		copy(out[pad:], values)
		return out
	}
	ratio := float64(len(values)) / float64(width)
	for i := range width {
		out[i] = values[min(int(float64(i)*ratio), len(values)-1)]
	}
	return out
}

// valueToBlock picks the block for value within lo..hi
func valueToBlock(value, lo, hi float64) rune {
	if hi == lo {
		return SparklineBlocks[len(SparklineBlocks)/2]
	}
	idx := int((value - lo) / (hi - lo) * float64(len(SparklineBlocks)-1))
	return SparklineBlocks[max(0, min(idx, len(SparklineBlocks)-1))]
}
