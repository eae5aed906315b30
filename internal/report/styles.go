// Package report provides output formatters for scry analysis
// results in JSON and human-readable text formats.
package report

import "github.com/charmbracelet/lipgloss"

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	Header    lipgloss.Style
	SubHeader lipgloss.Style

	// TagPure through TagUnknown color-code a function's compact
	// effect tag, ordered the same way as effect.Tag's severity.
	TagPure      lipgloss.Style
	TagLambda    lipgloss.Style
	TagException lipgloss.Style
	TagDependent lipgloss.Style
	TagSide      lipgloss.Style
	TagNif       lipgloss.Style
	TagUnknown   lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style

	Muted lipgloss.Style
	Fail  lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		TagPure:      lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		TagLambda:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		TagException: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		TagDependent: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		TagSide:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		TagNif:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		TagUnknown:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// TagStyle returns the appropriate style for a compact effect tag
// string (p, l, e, d, s, n, u).
func (s Styles) TagStyle(tag string) lipgloss.Style {
	switch tag {
	case "p":
		return s.TagPure
	case "l":
		return s.TagLambda
	case "e":
		return s.TagException
	case "d":
		return s.TagDependent
	case "s":
		return s.TagSide
	case "n":
		return s.TagNif
	default:
		return s.TagUnknown
	}
}
