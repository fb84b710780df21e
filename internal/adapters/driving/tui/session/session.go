// Package session shares one shell session between TUI views.
package session

import (
	"context"
	"sync"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/shell"
)

// Runner executes shell lines against a shared scope and conversation.
type Runner interface {
	Execute(ctx context.Context, line string) (shell.Reply, error)
	DescribeScope() string
}

// Locked serialises access to a shell session. Views run lines from tea
// commands, which execute concurrently.
type Locked struct {
	mu      sync.Mutex
	session *shell.Session
}

// Ensure Locked implements Runner.
var _ Runner = (*Locked)(nil)

// NewLocked wraps s.
func NewLocked(s *shell.Session) *Locked {
	return &Locked{session: s}
}

// Execute runs one line.
func (l *Locked) Execute(ctx context.Context, line string) (shell.Reply, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session.Execute(ctx, line)
}

// DescribeScope renders the current scope.
func (l *Locked) DescribeScope() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session.DescribeScope()
}
