package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/studyrag/internal/logger"
)

// ChangeType classifies a document change.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a document event below the content root.
type Change struct {
	Type       ChangeType
	SourcePath string
}

// hierarchyDepth is the number of directory levels above a document.
const hierarchyDepth = 3

// Watch reports document changes until ctx is cancelled. fsnotify is not
// recursive, so the root and every directory of the three hierarchy levels
// are watched, and new directories are added as they appear.
func (s *Source) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := s.addTree(watcher, s.root); err != nil {
		watcher.Close()
		return nil, err
	}

	changes := make(chan Change, 64)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := s.handleFsEvent(watcher, event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", s.root, err)
			}
		}
	}()

	return changes, nil
}

// addTree watches dir and its sub-directories down to the unit level.
func (s *Source) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		depth := s.depth(p)
		if depth > hierarchyDepth || (p != s.root && isHidden(d.Name())) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// handleFsEvent maps an fsnotify event to a document change.
func (s *Source) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) (Change, bool) {
	rel, ok := s.Relative(event.Name)
	if !ok {
		return Change{}, false
	}
	for _, part := range strings.Split(rel, "/") {
		if isHidden(part) {
			return Change{}, false
		}
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if s.depth(event.Name) <= hierarchyDepth {
				if err := s.addTree(watcher, event.Name); err != nil {
					logger.Warn("watch new directory: %v", err)
				}
			}
			return Change{}, false
		}
	}

	if s.depth(event.Name) != hierarchyDepth+1 {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Create):
		return Change{Type: ChangeCreated, SourcePath: rel}, true
	case event.Has(fsnotify.Write):
		return Change{Type: ChangeUpdated, SourcePath: rel}, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Type: ChangeDeleted, SourcePath: rel}, true
	default:
		return Change{}, false
	}
}

// depth counts path segments between the root and p.
func (s *Source) depth(p string) int {
	rel, ok := s.Relative(p)
	if !ok {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
