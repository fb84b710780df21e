package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from user-editable files.
// Files are created lazily on first Load; a missing or unreadable file falls
// back to the built-in default.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAgentSystem: `You are an intelligent study assistant who helps students navigate and learn from their document library.
You have access to a retriever tool that searches the library and a library_catalog tool that lists what is available.
The library is organised by collection (e.g. a term), sub-collection (e.g. a subject) and unit (e.g. a textbook or report).

When answering questions:
1. Use the retriever tool to find relevant information. You can make multiple calls if needed.
2. Always cite specific sources (title, page number).
3. Provide clear, educational explanations.
4. If the answer isn't in the current scope, say so and suggest widening the scope.

Current scope: %s`,
}

// promptDescriptions documents each prompt in the generated README.
var promptDescriptions = map[string]string{
	driven.PromptAgentSystem: "System prompt for the study assistant. `%s` receives the current scope.",
}

// NewPromptStore creates a prompt store. If promptDir is empty, HomeDir()/prompts is used.
// No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name, from cache, disk or the built-in default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		if s.initErr != nil {
			return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the cache so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Names returns the built-in prompt names, sorted.
func (s *PromptStore) Names() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for _, name := range s.Names() {
		path := s.path(name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(defaultPrompts[name]), 0600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt %q is empty", name)
	}
	return prompt, nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# studyrag prompts\n\n")
	b.WriteString("Prompt templates used by the study assistant. Edit a file to change its behaviour;\n")
	b.WriteString("changes apply to the next command, or after `reset` in a chat session.\n\n")
	b.WriteString("## Files\n\n")
	for _, name := range s.Names() {
		fmt.Fprintf(&b, "- `%s.txt` - %s\n", name, promptDescriptions[name])
	}
	b.WriteString("\nKeep every `%s` placeholder; a template without it is ignored.\n")
	return os.WriteFile(path, []byte(b.String()), 0600)
}
