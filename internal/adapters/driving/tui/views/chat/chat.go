// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/session"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui/styles"
)

// reservedLines is the height taken by the header, input and status bar.
const reservedLines = 8

// View shows the transcript above an input line.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	statusbar  *status.Bar

	runner session.Runner
	ctx    context.Context

	entries []string
	busy    bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, runner session.Runner) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: viewport.New(80, 24-reservedLines),
		statusbar:  status.NewBar(s, km.ChatHelp()),
		runner:     runner,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context questions are asked under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetScope(v.runner.DescribeScope())
	return tea.Batch(v.input.Init(), v.input.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CommandCompleted:
		return v.handleCompleted(msg)

	case messages.ScopeChanged:
		v.statusbar.SetScope(msg.Description)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Send):
		line := strings.TrimSpace(v.input.Value())
		if line == "" || v.busy {
			return v, nil
		}
		v.input.Reset()
		v.append(v.styles.Question.Render("> " + line))
		v.busy = true
		v.err = nil
		v.statusbar.Clear()
		v.statusbar.SetState(status.StateThinking)
		return v, v.run(line)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// run executes line off the update loop.
func (v *View) run(line string) tea.Cmd {
	runner, ctx := v.runner, v.ctx
	return func() tea.Msg {
		reply, err := runner.Execute(ctx, line)
		return messages.CommandCompleted{Line: line, Reply: reply, Err: err}
	}
}

func (v *View) handleCompleted(msg messages.CommandCompleted) (*View, tea.Cmd) {
	v.busy = false
	v.statusbar.Clear()

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.append(v.styles.Error.Render("Error: " + msg.Err.Error()))
		return v, nil
	}

	for _, w := range msg.Reply.Warnings {
		v.append(v.styles.Warning.Render(w))
	}
	if msg.Reply.Text != "" {
		style := v.styles.Normal
		if msg.Reply.Answer {
			style = v.styles.Answer
		}
		v.append(style.Width(v.width - 2).Render(msg.Reply.Text))
	}

	scope := v.runner.DescribeScope()
	v.statusbar.SetScope(scope)

	if msg.Reply.Quit {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, func() tea.Msg {
		return messages.ScopeChanged{Description: scope}
	}
}

func (v *View) append(entry string) {
	v.entries = append(v.entries, entry)
	v.transcript.SetContent(strings.Join(v.entries, "\n\n"))
	v.transcript.GotoBottom()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 7)
	sections = append(sections, v.styles.Title.Render("studyrag"), "")

	if len(v.entries) == 0 {
		sections = append(sections, v.styles.Muted.Render("Ask a question about your material. Type 'help' for navigation commands."))
	} else {
		sections = append(sections, v.transcript.View())
	}

	sections = append(sections, "", v.input.View(), v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(3, height-reservedLines)
}

// Busy reports whether a line is being executed.
func (v *View) Busy() bool {
	return v.busy
}

// Entries returns the rendered transcript entries.
func (v *View) Entries() []string {
	return v.entries
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
