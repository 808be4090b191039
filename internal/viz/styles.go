package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/armsim/internal/playback"
)

// styles is the set of lipgloss styles derived from a theme.
type styles struct {
	header  lipgloss.Style
	canvas  lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	active  lipgloss.Style
	graph   lipgloss.Style
	hint    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	phase   map[playback.Phase]lipgloss.Style
	subtle  lipgloss.Style
	divider string
}

func newStyles(t Theme) styles {
	s := styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1),
		canvas: lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(52),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		hint:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		ok:     lipgloss.NewStyle().Foreground(t.Success),
		warn:   lipgloss.NewStyle().Foreground(t.Warning),
		bad:    lipgloss.NewStyle().Foreground(t.Error),
		subtle: lipgloss.NewStyle().Foreground(t.Muted),
	}
	s.phase = map[playback.Phase]lipgloss.Style{
		playback.Idle:     s.subtle.Bold(true),
		playback.Planning: s.active,
		playback.Moving:   s.ok.Bold(true),
		playback.Dwelling: s.warn.Bold(true),
	}
	s.divider = s.subtle.Render(strings.Repeat("─", 21))
	return s
}

// UsageBar renders ratio of a limit as a bar that turns amber then red as
// it approaches and passes 1.
func (s styles) UsageBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case ratio > 0.9:
		return s.bad.Render(bar)
	case ratio > 0.6:
		return s.warn.Render(bar)
	default:
		return s.ok.Render(bar)
	}
}

// Sparkline renders the last width values on an eight-level scale.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		out[i] = chars[max(0, min(len(chars)-1, idx))]
	}
	return string(out)
}
