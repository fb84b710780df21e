// Package shell interprets the navigation and question commands shared by
// the chat REPL and the terminal UI.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Shell errors.
var (
	// ErrMissingArgument indicates a command that needs an argument got none.
	ErrMissingArgument = errors.New("missing argument")

	// ErrNoAgent indicates a question was asked without a completion service.
	ErrNoAgent = errors.New("question answering not configured")
)

// Reply is the outcome of one command.
type Reply struct {
	// Text is the command output.
	Text string

	// Warnings are shown before Text, e.g. unmatched names.
	Warnings []string

	// Answer marks Text as an answer from the reasoning loop.
	Answer bool

	// Quit asks the caller to end the session.
	Quit bool
}

type handler func(s *Session, ctx context.Context, arg string) (Reply, error)

type command struct {
	usage string
	help  string
	run   handler
	// needsArg rejects an empty argument with ErrMissingArgument. Commands
	// without it take no argument, so "units of measure?" is a question.
	needsArg bool
}

// commands is filled in init because help refers back to it.
var commands map[string]command

func init() {
	commands = map[string]command{
		"collections":    {usage: "collections", help: "List collections", run: (*Session).collections},
		"subcollections": {usage: "subcollections", help: "List sub-collections (in the active collection)", run: (*Session).subcollections},
		"units":          {usage: "units", help: "List units (in the current scope)", run: (*Session).units},
		"use":            {usage: "use <collection>", help: "Set the active collection", run: (*Session).use, needsArg: true},
		"open":           {usage: "open <subcollection>", help: "Set the active sub-collection", run: (*Session).open, needsArg: true},
		"select":         {usage: "select <unit>", help: "Add a unit to the active units", run: (*Session).selectUnit, needsArg: true},
		"clear":          {usage: "clear", help: "Clear all scope filters", run: (*Session).clear},
		"scope":          {usage: "scope", help: "Show the current scope", run: (*Session).scope},
		"ask":            {usage: "ask <question>", help: "Ask a question within the current scope", run: (*Session).ask, needsArg: true},
		"reset":          {usage: "reset", help: "Forget the conversation history", run: (*Session).reset},
		"help":           {usage: "help", help: "Show this help", run: (*Session).help},
		"exit":           {usage: "exit", help: "Leave the session", run: (*Session).exit},
	}
}

// aliases map alternate spellings onto commands.
var aliases = map[string]string{
	"quit": "exit",
	"back": "exit",
	"?":    "help",
}

// Session holds one conversation and its scope.
// It is not safe for concurrent use.
type Session struct {
	catalog driving.CatalogService
	scopes  driving.ScopeService
	agent   driving.AgentService
	conv    *domain.Conversation
}

// New creates a session. tenant is the boundary-supplied user id and is
// kept across clear and reset.
func New(
	catalog driving.CatalogService,
	scopes driving.ScopeService,
	agent driving.AgentService,
	tenant string,
) *Session {
	return &Session{
		catalog: catalog,
		scopes:  scopes,
		agent:   agent,
		conv:    domain.NewConversation(tenant),
	}
}

// Scope returns the current scope.
func (s *Session) Scope() domain.Scope {
	return s.conv.Scope
}

// Conversation returns the session's conversation.
func (s *Session) Conversation() *domain.Conversation {
	return s.conv
}

// DescribeScope renders the current scope.
func (s *Session) DescribeScope() string {
	return s.catalog.DescribeScope(s.conv.Scope)
}

// Execute runs one input line. A line that does not start with a known
// command, or passes words to a command that takes none, is asked as a
// question.
func (s *Session) Execute(ctx context.Context, line string) (Reply, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reply{}, nil
	}

	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	cmd, ok := commands[name]
	if !ok || (!cmd.needsArg && arg != "") {
		return s.ask(ctx, line)
	}
	if cmd.needsArg && arg == "" {
		return Reply{}, fmt.Errorf("%w: usage: %s", ErrMissingArgument, cmd.usage)
	}
	return cmd.run(s, ctx, arg)
}

func (s *Session) collections(ctx context.Context, _ string) (Reply, error) {
	return Reply{Text: "Available collections: " + joinOrNone(s.catalog.ListCollections(ctx))}, nil
}

func (s *Session) subcollections(ctx context.Context, _ string) (Reply, error) {
	names := s.catalog.ListSubcollections(ctx, s.conv.Scope.Collection)
	return Reply{Text: "Available sub-collections: " + joinOrNone(names)}, nil
}

func (s *Session) units(ctx context.Context, _ string) (Reply, error) {
	scope := s.conv.Scope
	units := s.catalog.ListUnits(ctx, scope.Collection, scope.Subcollection)
	if len(units) == 0 {
		return Reply{Text: "Available units: (none)"}, nil
	}

	var b strings.Builder
	b.WriteString("Available units:")
	for _, u := range units {
		fmt.Fprintf(&b, "\n  - %s: %s (%s / %s)", u.UnitID, u.Title, u.Collection, u.Subcollection)
	}
	return Reply{Text: b.String()}, nil
}

func (s *Session) use(ctx context.Context, arg string) (Reply, error) {
	res := s.scopes.ResolveCollection(ctx, arg)
	s.conv.Scope = s.conv.Scope.WithCollection(res.Value)

	reply := Reply{Text: "Active collection: " + res.Value}
	if !res.Matched {
		reply.Warnings = s.unmatched(arg, "collections", s.catalog.ListCollections(ctx))
	}
	return reply, nil
}

func (s *Session) open(ctx context.Context, arg string) (Reply, error) {
	collection := s.conv.Scope.Collection
	res := s.scopes.ResolveSubcollection(ctx, collection, arg)
	s.conv.Scope = s.conv.Scope.WithSubcollection(res.Value)

	reply := Reply{Text: "Active sub-collection: " + res.Value}
	if !res.Matched {
		reply.Warnings = s.unmatched(arg, "sub-collections", s.catalog.ListSubcollections(ctx, collection))
	}
	return reply, nil
}

func (s *Session) selectUnit(ctx context.Context, arg string) (Reply, error) {
	scope := s.conv.Scope
	res := s.scopes.ResolveUnit(ctx, scope.Collection, scope.Subcollection, arg)
	s.conv.Scope = scope.WithUnit(res.Value)

	reply := Reply{Text: "Active units: " + strings.Join(s.conv.Scope.Units, ", ")}
	if !res.Matched {
		units := s.catalog.ListUnits(ctx, scope.Collection, scope.Subcollection)
		ids := make([]string, len(units))
		for i, u := range units {
			ids[i] = u.UnitID
		}
		reply.Warnings = s.unmatched(arg, "units", ids)
	}
	return reply, nil
}

func (s *Session) clear(context.Context, string) (Reply, error) {
	s.conv.Scope = s.conv.Scope.Cleared()
	return Reply{Text: "Scope cleared"}, nil
}

func (s *Session) scope(context.Context, string) (Reply, error) {
	return Reply{Text: "Current scope: " + s.DescribeScope()}, nil
}

func (s *Session) ask(ctx context.Context, question string) (Reply, error) {
	if s.agent == nil {
		return Reply{}, ErrNoAgent
	}
	answer, err := s.agent.Ask(ctx, s.conv, question)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: answer, Answer: true}, nil
}

func (s *Session) reset(context.Context, string) (Reply, error) {
	s.conv.Reset()
	return Reply{Text: "Conversation reset"}, nil
}

func (s *Session) help(context.Context, string) (Reply, error) {
	return Reply{Text: Help()}, nil
}

func (s *Session) exit(context.Context, string) (Reply, error) {
	return Reply{Quit: true}, nil
}

// unmatched warns that name was kept as typed. Nothing is listed when the
// catalog is empty.
func (s *Session) unmatched(name, kind string, available []string) []string {
	if len(available) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("'%s' not found. Available %s: %s", name, kind, strings.Join(available, ", "))}
}

// Help renders the command list.
func Help() string {
	names := make([]string, 0, len(commands))
	width := 0
	for name, cmd := range commands {
		names = append(names, name)
		width = max(width, len(cmd.usage))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Commands:")
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(&b, "\n  %-*s  %s", width, cmd.usage, cmd.help)
	}
	b.WriteString("\n\nAnything else is asked as a question.")
	return b.String()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
