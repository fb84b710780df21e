// Package menu is the landing screen listing what the assistant can do.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/styles"
)

// Item is one selectable entry. Items with Quit set end the program.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View renders the menu and turns a selection into a ViewChanged message.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
	scope    string
}

// NewView creates the menu with the default entries.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items: []Item{
			{Label: "Ask questions", Hint: "chat against the active scope", View: messages.ViewChat},
			{Label: "Browse library", Hint: "pick a collection, sub-collection or unit", View: messages.ViewBrowse},
			{Label: "Help", Hint: "key bindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor and handles selection.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "q":
			return v, tea.Quit
		case "enter":
			return v, v.choose(v.items[v.selected])
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("studyrag"))
	b.WriteString("  ")
	b.WriteString(v.styles.Subtitle.Render("Study assistant"))
	b.WriteString("\n")
	if v.scope != "" {
		b.WriteString(v.styles.Scope.Render("Scope: " + v.scope))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		label := v.styles.Normal.Render(item.Label)
		cursor := "  "
		if i == v.selected {
			cursor = "> "
			label = v.styles.Selected.Render(item.Label)
		}
		line := cursor + label
		if item.Hint != "" {
			line += " " + v.styles.Muted.Render(item.Hint)
		}
		fmt.Fprintln(&b, line)
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// SetScope sets the scope description shown under the title.
func (v *View) SetScope(scope string) {
	v.scope = scope
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}
