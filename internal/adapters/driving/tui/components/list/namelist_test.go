package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNameList(t *testing.T) {
	l := NewNameList(nil)

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Count())
	assert.Empty(t, l.SelectedItem())
	assert.Nil(t, l.Init())
	assert.Contains(t, l.View(), "Nothing here yet")
}

func TestNameList_Navigation(t *testing.T) {
	l := NewNameList(nil)
	l.SetItems("Collections", []string{"Y1S1", "Y3S2", "Y4S1"})

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, "Y4S1", l.SelectedItem())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, "Y3S2", l.SelectedItem())

	l.SetItems("Units", []string{"Report1"})
	assert.Equal(t, 0, l.Selected())
}

func TestNameList_View(t *testing.T) {
	l := NewNameList(nil)
	l.SetItems("Units", []string{"Report1", "Report2"})
	l.SetMarked("Report2")

	view := l.View()
	assert.Contains(t, view, "Units (2)")
	assert.Contains(t, view, "> ")
	assert.Contains(t, view, "* Report2")
}

func TestNameList_ViewScrolls(t *testing.T) {
	l := NewNameList(nil)
	l.SetDimensions(80, 4)
	l.SetItems("Units", []string{"a1", "a2", "a3", "a4", "a5"})
	for i := 0; i < 4; i++ {
		l.MoveDown()
	}

	view := l.View()
	assert.Contains(t, view, "a5")
	assert.NotContains(t, view, "a1")
}
