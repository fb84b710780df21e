// Package styles holds the palette and lipgloss styles shared by the TUI views.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette the styles are built from.
type Theme struct {
	Accent  lipgloss.Color
	Link    lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Panel   lipgloss.Color
	Outline lipgloss.Color
	Good    lipgloss.Color
	Caution lipgloss.Color
	Bad     lipgloss.Color
}

// DefaultTheme returns the dark palette used unless a caller supplies one.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#89B4FA"),
		Link:    lipgloss.Color("#94E2D5"),
		Text:    lipgloss.Color("#CDD6F4"),
		Dim:     lipgloss.Color("#7F849C"),
		Panel:   lipgloss.Color("#181825"),
		Outline: lipgloss.Color("#45475A"),
		Good:    lipgloss.Color("#A6E3A1"),
		Caution: lipgloss.Color("#FAB387"),
		Bad:     lipgloss.Color("#F38BA8"),
	}
}

// Styles are the rendered styles views draw with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript styles.
	Question lipgloss.Style
	Answer   lipgloss.Style
	Scope    lipgloss.Style
}

// NewStyles builds styles from theme, falling back to DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	text := lipgloss.NewStyle().Foreground(theme.Text)
	dim := lipgloss.NewStyle().Foreground(theme.Dim)

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Italic(true).Foreground(theme.Link),
		Normal:   text,
		Muted:    dim,
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Panel).Background(theme.Accent),
		Help:     dim.Faint(true),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(theme.Bad),
		Warning:  lipgloss.NewStyle().Foreground(theme.Caution),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Outline).
			Padding(0, 1),
		StatusBar: dim.Background(theme.Panel).Padding(0, 1),
		Question:  lipgloss.NewStyle().Bold(true).Foreground(theme.Link),
		Answer:    text.PaddingLeft(2),
		Scope:     lipgloss.NewStyle().Foreground(theme.Good),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
