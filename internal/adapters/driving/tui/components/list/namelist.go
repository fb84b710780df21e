// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/styles"
)

// NameList displays a titled list of names with one selected.
type NameList struct {
	title    string
	items    []string
	marked   map[string]bool
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewNameList creates a new name list component.
func NewNameList(s *styles.Styles) *NameList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &NameList{
		styles: s,
		marked: make(map[string]bool),
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *NameList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *NameList) Update(msg tea.Msg) (*NameList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *NameList) View() string {
	lines := make([]string, 0, len(l.items)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", l.title, len(l.items))), "")

	if len(l.items) == 0 {
		lines = append(lines, l.styles.Muted.Render("  Nothing here yet. Run 'studyrag ingest' first."))
		return strings.Join(lines, "\n")
	}

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		name := l.items[i]
		mark := " "
		if l.marked[name] {
			mark = "*"
		}
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render("> "+mark+" "+name))
		} else {
			lines = append(lines, l.styles.Normal.Render("  "+mark+" "+name))
		}
	}
	return strings.Join(lines, "\n")
}

// SetItems replaces the list contents and resets the selection.
func (l *NameList) SetItems(title string, items []string) {
	l.title = title
	l.items = items
	l.selected = 0
}

// Items returns the current names.
func (l *NameList) Items() []string {
	return l.items
}

// SetMarked flags names that are part of the active scope.
func (l *NameList) SetMarked(names ...string) {
	l.marked = make(map[string]bool, len(names))
	for _, n := range names {
		l.marked[n] = true
	}
}

// Selected returns the index of the selected item.
func (l *NameList) Selected() int {
	return l.selected
}

// SelectedItem returns the selected name, or "" if the list is empty.
func (l *NameList) SelectedItem() string {
	if len(l.items) == 0 {
		return ""
	}
	return l.items[l.selected]
}

// MoveUp moves selection up.
func (l *NameList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *NameList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *NameList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *NameList) Count() int {
	return len(l.items)
}
