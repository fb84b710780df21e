// Package filesystem provides a ContentSource over a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/studyrag/internal/connectors"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Source reads study material from a local root directory laid out as
// collection/subcollection/unit/document.
type Source struct {
	root string
}

// New creates a source rooted at root. The root is resolved to an absolute path.
func New(root string) *Source {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Source{root: root}
}

// Name identifies the binding for logs.
func (s *Source) Name() string {
	return "local:" + s.root
}

// Root returns the absolute content root.
func (s *Source) Root() string {
	return s.root
}

// ListCollections returns the top-level directories.
func (s *Source) ListCollections(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: content root %s", domain.ErrNotFound, s.root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: content root %s is not a directory", domain.ErrNotFound, s.root)
	}
	return s.subdirs(ctx)
}

// ListSubcollections returns the directories inside collection.
func (s *Source) ListSubcollections(ctx context.Context, collection string) ([]string, error) {
	return s.subdirs(ctx, collection)
}

// ListUnits returns every visible regular file inside the unit directories of
// a sub-collection.
func (s *Source) ListUnits(ctx context.Context, collection, subcollection string) ([]domain.SourceItem, error) {
	units, err := s.subdirs(ctx, collection, subcollection)
	if err != nil {
		return nil, err
	}

	var items []domain.SourceItem //nolint:prealloc // size unknown until directories are read
	for _, unit := range units {
		entries, err := os.ReadDir(s.abs(collection, subcollection, unit))
		if err != nil {
			return nil, fmt.Errorf("read unit %s: %w", unit, err)
		}
		for _, entry := range entries {
			if isHidden(entry.Name()) || !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			items = append(items, domain.SourceItem{
				Collection:    collection,
				Subcollection: subcollection,
				UnitID:        unit,
				Name:          entry.Name(),
				SourcePath:    path.Join(collection, subcollection, unit, entry.Name()),
				Size:          info.Size(),
			})
		}
	}
	return items, nil
}

// Read returns the bytes of a document.
func (s *Source) Read(_ context.Context, sourcePath string) ([]byte, error) {
	p, err := s.resolve(sourcePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, sourcePath)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	return data, nil
}

// Stat reports existence and size of a document.
func (s *Source) Stat(_ context.Context, sourcePath string) (domain.SourceInfo, error) {
	p, err := s.resolve(sourcePath)
	if err != nil {
		return domain.SourceInfo{}, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.SourceInfo{}, nil
	}
	if err != nil {
		return domain.SourceInfo{}, fmt.Errorf("stat %s: %w", sourcePath, err)
	}
	return domain.SourceInfo{Exists: info.Mode().IsRegular(), Size: info.Size()}, nil
}

// Relative converts an absolute filesystem path below the root into a
// source path. The second result is false for paths outside the root.
func (s *Source) Relative(absPath string) (string, bool) {
	rel, err := filepath.Rel(s.root, absPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (s *Source) subdirs(ctx context.Context, parts ...string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, `/\`) || p == ".." {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInput, p)
		}
	}

	entries, err := os.ReadDir(s.abs(parts...))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path.Join(parts...))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path.Join(parts...), err)
	}

	var names []string //nolint:prealloc // filtered
	for _, entry := range entries {
		if entry.IsDir() && !isHidden(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *Source) abs(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

func (s *Source) resolve(sourcePath string) (string, error) {
	cleaned, err := connectors.CleanSourcePath(sourcePath)
	if err != nil {
		return "", fmt.Errorf("source path %q: %w", sourcePath, err)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// isHidden reports dot-files and dot-directories.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
