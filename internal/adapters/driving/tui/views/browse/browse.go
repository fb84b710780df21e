// Package browse provides the library navigation view for the TUI.
package browse

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/session"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

var levelTitles = map[messages.Level]string{
	messages.LevelCollections:    "Collections",
	messages.LevelSubcollections: "Sub-collections",
	messages.LevelUnits:          "Units",
}

// navigated carries the outcome of a scope command and the list to show next.
type navigated struct {
	scope messages.ScopeChanged
	list  messages.ListLoaded
}

// View walks the hierarchy. Entering a level narrows the session scope,
// so questions asked in the chat view are restricted to it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.NameList
	statusbar *status.Bar

	catalog driving.CatalogService
	runner  session.Runner
	ctx     context.Context

	level         messages.Level
	collection    string
	subcollection string
	units         []string

	width  int
	height int
	ready  bool
}

// NewView creates a new browse view.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalog driving.CatalogService, runner session.Runner) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewNameList(s),
		statusbar: status.NewBar(s, km.BrowseHelp()),
		catalog:   catalog,
		runner:    runner,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for catalog calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the level currently shown.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetScope(v.runner.DescribeScope())
	return v.load(v.level)
}

// Update handles messages for the browse view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ListLoaded:
		v.showList(msg)
		return v, nil

	case navigated:
		v.showList(msg.list)
		v.applyScope(msg.scope)
		scope := msg.scope
		return v, func() tea.Msg { return scope }

	case messages.ScopeChanged:
		v.statusbar.SetScope(msg.Description)
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v.back()

	case keymap.Matches(key, v.keymap.Chat):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}

	case keymap.Matches(key, v.keymap.ClearScope):
		v.collection, v.subcollection, v.units = "", "", nil
		return v, v.navigate("clear", messages.LevelCollections)

	case keymap.Matches(key, v.keymap.Select):
		return v.enter()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// enter narrows the scope to the selected item.
func (v *View) enter() (*View, tea.Cmd) {
	name := v.list.SelectedItem()
	if name == "" {
		return v, nil
	}

	switch v.level {
	case messages.LevelCollections:
		v.collection, v.subcollection, v.units = name, "", nil
		return v, v.navigate("use "+name, messages.LevelSubcollections)
	case messages.LevelSubcollections:
		v.subcollection, v.units = name, nil
		return v, v.navigate("open "+name, messages.LevelUnits)
	case messages.LevelUnits:
		v.units = append(v.units, name)
		return v, v.navigate("select "+name, messages.LevelUnits)
	}
	return v, nil
}

// back moves up one level without widening the scope.
func (v *View) back() (*View, tea.Cmd) {
	switch v.level {
	case messages.LevelUnits:
		return v, v.load(messages.LevelSubcollections)
	case messages.LevelSubcollections:
		return v, v.load(messages.LevelCollections)
	case messages.LevelCollections:
	}
	return v, func() tea.Msg {
		return messages.ViewChanged{View: messages.ViewMenu}
	}
}

// navigate runs a scope command, then lists level.
func (v *View) navigate(line string, level messages.Level) tea.Cmd {
	runner, ctx := v.runner, v.ctx
	fetch := v.fetcher(level)
	return func() tea.Msg {
		reply, err := runner.Execute(ctx, line)
		return navigated{
			scope: messages.ScopeChanged{
				Description: runner.DescribeScope(),
				Warnings:    reply.Warnings,
				Err:         err,
			},
			list: messages.ListLoaded{Level: level, Items: fetch()},
		}
	}
}

func (v *View) load(level messages.Level) tea.Cmd {
	fetch := v.fetcher(level)
	return func() tea.Msg {
		return messages.ListLoaded{Level: level, Items: fetch()}
	}
}

// fetcher captures the names a level lists under the current selection.
func (v *View) fetcher(level messages.Level) func() []string {
	catalog, ctx := v.catalog, v.ctx
	collection, subcollection := v.collection, v.subcollection

	switch level {
	case messages.LevelSubcollections:
		return func() []string { return catalog.ListSubcollections(ctx, collection) }
	case messages.LevelUnits:
		return func() []string {
			units := catalog.ListUnits(ctx, collection, subcollection)
			ids := make([]string, 0, len(units))
			for _, u := range units {
				ids = append(ids, u.UnitID)
			}
			return ids
		}
	case messages.LevelCollections:
	}
	return func() []string { return catalog.ListCollections(ctx) }
}

func (v *View) showList(msg messages.ListLoaded) {
	selected := v.list.Selected()
	sameLevel := msg.Level == v.level && len(msg.Items) == v.list.Count()

	v.level = msg.Level
	v.list.SetItems(levelTitles[msg.Level], msg.Items)
	if sameLevel {
		for i := 0; i < selected; i++ {
			v.list.MoveDown()
		}
	}

	switch msg.Level {
	case messages.LevelCollections:
		v.list.SetMarked(v.collection)
	case messages.LevelSubcollections:
		v.list.SetMarked(v.subcollection)
	case messages.LevelUnits:
		v.list.SetMarked(v.units...)
	}
}

func (v *View) applyScope(msg messages.ScopeChanged) {
	v.statusbar.Clear()
	v.statusbar.SetScope(msg.Description)
	switch {
	case msg.Err != nil:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	case len(msg.Warnings) > 0:
		v.statusbar.SetMessage(msg.Warnings[0])
	}
}

// View renders the browse view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("studyrag"),
		v.styles.Scope.Render("Scope: " + v.statusbar.Scope()),
		"",
		v.list.View(),
		"",
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Level returns the level shown.
func (v *View) Level() messages.Level {
	return v.level
}

// Items returns the names shown.
func (v *View) Items() []string {
	return v.list.Items()
}
