package connectors

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Entry is one file of a flat listing, relative to the content root.
type Entry struct {
	Path string
	Size int64

	// Ref is the backend handle for reading the file (blob SHA, object name).
	Ref string
}

// Tree indexes a flat listing by collection, sub-collection and unit.
// Only files directly inside a unit directory are documents; anything
// shallower or deeper is ignored, as are hidden path segments.
type Tree struct {
	files map[string]Entry
	tree  map[string]map[string]map[string][]Entry
}

// NewTree builds a tree from entries. Paths use forward slashes.
func NewTree(entries []Entry) *Tree {
	t := &Tree{
		files: make(map[string]Entry),
		tree:  make(map[string]map[string]map[string][]Entry),
	}
	for _, e := range entries {
		e.Path = strings.Trim(path.Clean("/"+e.Path), "/")
		parts := strings.Split(e.Path, "/")
		if len(parts) != 4 || hasHidden(parts) {
			continue
		}
		c, s, u := parts[0], parts[1], parts[2]
		if t.tree[c] == nil {
			t.tree[c] = make(map[string]map[string][]Entry)
		}
		if t.tree[c][s] == nil {
			t.tree[c][s] = make(map[string][]Entry)
		}
		t.tree[c][s][u] = append(t.tree[c][s][u], e)
		t.files[e.Path] = e
	}
	return t
}

// Empty reports whether the tree holds no documents.
func (t *Tree) Empty() bool {
	return len(t.files) == 0
}

// Collections returns the collection names, sorted.
func (t *Tree) Collections() []string {
	return sortedKeys(t.tree)
}

// Subcollections returns the sub-collections of collection, sorted.
func (t *Tree) Subcollections(collection string) []string {
	return sortedKeys(t.tree[collection])
}

// Units returns every document of a sub-collection ordered by source path.
func (t *Tree) Units(collection, subcollection string) []domain.SourceItem {
	units := t.tree[collection][subcollection]
	var items []domain.SourceItem //nolint:prealloc // size unknown until units are walked
	for _, unitID := range sortedKeys(units) {
		for _, e := range units[unitID] {
			items = append(items, domain.SourceItem{
				Collection:    collection,
				Subcollection: subcollection,
				UnitID:        unitID,
				Name:          path.Base(e.Path),
				SourcePath:    e.Path,
				Size:          e.Size,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SourcePath < items[j].SourcePath })
	return items
}

// Lookup returns the entry for a source path.
func (t *Tree) Lookup(sourcePath string) (Entry, bool) {
	e, ok := t.files[strings.Trim(path.Clean("/"+sourcePath), "/")]
	return e, ok
}

// Lister returns a flat listing of the content root.
type Lister func(ctx context.Context) ([]Entry, error)

// Snapshot caches the Tree of the most recent listing. Flat-listing
// backends reload it at the start of each enumeration and serve the
// remaining calls from the cache.
type Snapshot struct {
	list Lister

	mu   sync.Mutex
	tree *Tree
}

// NewSnapshot creates a snapshot backed by list.
func NewSnapshot(list Lister) *Snapshot {
	return &Snapshot{list: list}
}

// Reload lists the backend and replaces the cached tree.
func (s *Snapshot) Reload(ctx context.Context) (*Tree, error) {
	entries, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	tree := NewTree(entries)

	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()
	return tree, nil
}

// Current returns the cached tree, loading it on first use.
func (s *Snapshot) Current(ctx context.Context) (*Tree, error) {
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()
	if tree != nil {
		return tree, nil
	}
	return s.Reload(ctx)
}

// CleanSourcePath validates a source path and returns it in canonical form.
// Absolute paths and paths escaping the root are rejected.
func CleanSourcePath(sourcePath string) (string, error) {
	if sourcePath == "" || strings.HasPrefix(sourcePath, "/") || strings.Contains(sourcePath, "\\") {
		return "", domain.ErrInvalidInput
	}
	cleaned := path.Clean(sourcePath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", domain.ErrInvalidInput
	}
	return cleaned, nil
}

func hasHidden(parts []string) bool {
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, ".") {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
