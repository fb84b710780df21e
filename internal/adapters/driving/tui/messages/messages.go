// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/studyrag/internal/adapters/driving/shell"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewBrowse navigates collections, sub-collections and units.
	ViewBrowse
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewBrowse:
		return "browse"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// CommandCompleted carries the reply to one shell line.
type CommandCompleted struct {
	Line  string
	Reply shell.Reply
	Err   error
}

// Level is a depth in the library hierarchy.
type Level int

// Hierarchy levels.
const (
	LevelCollections Level = iota
	LevelSubcollections
	LevelUnits
)

// ListLoaded carries the names for one hierarchy level.
type ListLoaded struct {
	Level Level
	Items []string
}

// ScopeChanged signals the session scope changed.
type ScopeChanged struct {
	Description string
	Warnings    []string
	Err         error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
