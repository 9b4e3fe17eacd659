// Package styles colours the text output format.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette assigns an adaptive colour to each role, so text stays readable
// on light and dark terminals.
type Palette struct {
	Accent  lipgloss.AdaptiveColor
	Field   lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor
	Good    lipgloss.AdaptiveColor
	Caution lipgloss.AdaptiveColor
	Bad     lipgloss.AdaptiveColor
}

// DefaultPalette is the palette used on a terminal.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"},
		Field:   lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:     lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"},
		Good:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Caution: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FDE68A"},
		Bad:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
	}
}

// Styles are the renderers the text printer uses.
type Styles struct {
	Title   lipgloss.Style // locator and section headers
	Key     lipgloss.Style // field names
	Value   lipgloss.Style // scalar values
	Muted   lipgloss.Style // indices, markers and null
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style // truncation notices
}

// FromPalette builds styles from p.
func FromPalette(p Palette) *Styles {
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	return &Styles{
		Title:   fg(p.Accent).Bold(true),
		Key:     fg(p.Field),
		Value:   fg(p.Text),
		Muted:   fg(p.Dim),
		Error:   fg(p.Bad).Bold(true),
		Success: fg(p.Good),
		Warning: fg(p.Caution),
	}
}

// DefaultStyles returns styles for the default palette.
func DefaultStyles() *Styles {
	return FromPalette(DefaultPalette())
}

// Plain returns styles that render text unchanged, for pipes and files.
func Plain() *Styles {
	s := lipgloss.NewStyle()
	return &Styles{Title: s, Key: s, Value: s, Muted: s, Error: s, Success: s, Warning: s}
}
