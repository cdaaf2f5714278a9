package ui

import (
	"github.com/charmbracelet/lipgloss"

	"agenda/internal/prefs"
)

type styles struct {
	header   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	muted    lipgloss.Style
	status   lipgloss.Style
	today    lipgloss.Style
	marker   lipgloss.Style
	high     lipgloss.Style
}

type palette struct {
	accent, text, faint, warn lipgloss.TerminalColor
}

// newStyles builds the render styles for t. Dynamic color follows the
// terminal background; otherwise the dark flag picks a fixed palette.
func newStyles(t prefs.Theme) styles {
	p := fixedPalette(t.DarkMode)
	if t.DynamicColor {
		p = palette{
			accent: lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#B8A4FF"},
			text:   lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#EDEDED"},
			faint:  lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"},
			warn:   lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F2B8B5"},
		}
	}
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.text),
		done:     lipgloss.NewStyle().Strikethrough(true).Foreground(p.faint),
		muted:    lipgloss.NewStyle().Foreground(p.faint),
		status:   lipgloss.NewStyle().Italic(true).Foreground(p.accent),
		today:    lipgloss.NewStyle().Underline(true),
		marker:   lipgloss.NewStyle().Foreground(p.accent),
		high:     lipgloss.NewStyle().Foreground(p.warn),
	}
}

func fixedPalette(dark bool) palette {
	if dark {
		return palette{
			accent: lipgloss.Color("#B8A4FF"),
			text:   lipgloss.Color("#EDEDED"),
			faint:  lipgloss.Color("#6C6C6C"),
			warn:   lipgloss.Color("#F2B8B5"),
		}
	}
	return palette{
		accent: lipgloss.Color("#5A3FC0"),
		text:   lipgloss.Color("#1F1F1F"),
		faint:  lipgloss.Color("#8A8A8A"),
		warn:   lipgloss.Color("#B3261E"),
	}
}
