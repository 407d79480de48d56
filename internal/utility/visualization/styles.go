package visualization

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorFrame   = lipgloss.Color("#3a4a5c")
	colorAccent  = lipgloss.Color("#80d1e3")
	colorDim     = lipgloss.Color("#6b7785")
	colorGood    = lipgloss.Color("#5fd787")
	colorCaution = lipgloss.Color("#e5c07b")
	colorBad     = lipgloss.Color("#e06c75")
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFrame).
		Padding(0, 1)

	Title = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	KeyHint = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	label = lipgloss.NewStyle().Foreground(colorDim)
	value = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	good    = lipgloss.NewStyle().Foreground(colorGood)
	caution = lipgloss.NewStyle().Foreground(colorCaution)
	bad     = lipgloss.NewStyle().Foreground(colorBad)
)

// Status renders the run state badge. An error wins over paused.
func Status(paused bool, err error) string {
	switch {
	case err != nil:
		return bad.Bold(true).Render("✖ " + err.Error())
	case paused:
		return caution.Bold(true).Render("‖ paused")
	}
	return good.Bold(true).Render("● running")
}

func Metric(name, v string) string {
	return label.Render(name) + " " + value.Render(v)
}

// Legend lists the species of symbols once each, in their svg colours.
func Legend(symbols []string) string {
	seen := make(map[string]bool, len(symbols))
	var species []string
	for _, s := range symbols {
		if !seen[s] {
			seen[s] = true
			species = append(species, s)
		}
	}
	sort.Strings(species)

	parts := make([]string, len(species))
	for i, s := range species {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(SpeciesColor(s))).Render("●")
		parts[i] = dot + " " + s
	}
	return strings.Join(parts, "  ")
}

// tone picks a colour for a fraction in [0, 1], high being good.
func tone(f float64) lipgloss.Style {
	switch {
	case f > 0.7:
		return good
	case f > 0.3:
		return caution
	}
	return bad
}

// ProgressBar renders a bar for the fraction done, clamped to [0, 1].
func ProgressBar(done float64, width int) string {
	done = max(0, min(done, 1))
	filled := int(done * float64(width))
	return tone(done).Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}

var ticks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as block characters, subsampled to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	stride := max(1, len(values)/width)

	var b strings.Builder
	for i := 0; i < width && i*stride < len(values); i++ {
		f := (values[i*stride] - lo) / span
		k := max(0, min(int(f*float64(len(ticks)-1)), len(ticks)-1))
		b.WriteString(tone(f).Render(string(ticks[k])))
	}
	return b.String()
}
