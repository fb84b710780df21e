package normalisers

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/normalisers/docx"
	"github.com/custodia-labs/studyrag/internal/normalisers/html"
	"github.com/custodia-labs/studyrag/internal/normalisers/markdown"
	"github.com/custodia-labs/studyrag/internal/normalisers/pdf"
	"github.com/custodia-labs/studyrag/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps extensions to normalisers, highest priority first.
type Registry struct {
	mu     sync.RWMutex
	byExt  map[string][]driven.Normaliser
	sorted bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string][]driven.Normaliser),
	}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser under each of its extensions.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range normaliser.SupportedExtensions() {
		ext = normaliseExt(ext)
		r.byExt[ext] = append(r.byExt[ext], normaliser)
	}
	r.sorted = false
}

// Supports reports whether any normaliser handles ext.
func (r *Registry) Supports(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byExt[normaliseExt(ext)]) > 0
}

// SupportedExtensions returns all extensions that can be normalised, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise extracts pages with the highest-priority normaliser for the
// document's extension.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	name := raw.Name
	if name == "" {
		name = path.Base(raw.SourcePath)
	}
	ext := normaliseExt(path.Ext(name))

	candidates := r.candidates(ext)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
	return candidates[0].Normalise(ctx, raw)
}

func (r *Registry) candidates(ext string) []driven.Normaliser {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sorted {
		for _, list := range r.byExt {
			sort.SliceStable(list, func(i, j int) bool {
				return list[i].Priority() > list[j].Priority()
			})
		}
		r.sorted = true
	}
	return r.byExt[ext]
}

func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
