package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/studyrag/internal/connectors"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Source serves study material from a repository tree.
type Source struct {
	client   *Client
	cfg      Config
	snapshot *connectors.Snapshot
}

// NewSource creates a repository-backed content source.
func NewSource(client *Client, cfg Config) *Source {
	s := &Source{client: client, cfg: cfg}
	s.snapshot = connectors.NewSnapshot(s.list)
	return s
}

// Name identifies the binding for logs.
func (s *Source) Name() string {
	name := "github:" + s.cfg.Owner + "/" + s.cfg.Repo
	if s.cfg.Ref != "" {
		name += "@" + s.cfg.Ref
	}
	if s.cfg.Prefix != "" {
		name += "/" + s.cfg.Prefix
	}
	return name
}

// ListCollections reloads the repository tree and returns its collections.
// Each enumeration starts here, so later calls see a consistent snapshot.
func (s *Source) ListCollections(ctx context.Context) ([]string, error) {
	tree, err := s.snapshot.Reload(ctx)
	if err != nil {
		return nil, err
	}
	if tree.Empty() {
		return nil, fmt.Errorf("%w: no documents under %s", domain.ErrNotFound, s.Name())
	}
	return tree.Collections(), nil
}

// ListSubcollections returns the sub-collections of collection.
func (s *Source) ListSubcollections(ctx context.Context, collection string) ([]string, error) {
	tree, err := s.snapshot.Current(ctx)
	if err != nil {
		return nil, err
	}
	subs := tree.Subcollections(collection)
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: collection %s", domain.ErrNotFound, collection)
	}
	return subs, nil
}

// ListUnits returns every document of a sub-collection.
func (s *Source) ListUnits(ctx context.Context, collection, subcollection string) ([]domain.SourceItem, error) {
	tree, err := s.snapshot.Current(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Units(collection, subcollection), nil
}

// Read fetches a document blob.
func (s *Source) Read(ctx context.Context, sourcePath string) ([]byte, error) {
	entry, err := s.lookup(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	data, err := s.client.GetBlob(ctx, s.cfg.Owner, s.cfg.Repo, entry.Ref)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	return data, nil
}

// Stat reports whether the current tree holds sourcePath.
func (s *Source) Stat(ctx context.Context, sourcePath string) (domain.SourceInfo, error) {
	entry, err := s.lookup(ctx, sourcePath)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SourceInfo{}, nil
		}
		return domain.SourceInfo{}, err
	}
	return domain.SourceInfo{Exists: true, Size: entry.Size}, nil
}

func (s *Source) lookup(ctx context.Context, sourcePath string) (connectors.Entry, error) {
	cleaned, err := connectors.CleanSourcePath(sourcePath)
	if err != nil {
		return connectors.Entry{}, fmt.Errorf("source path %q: %w", sourcePath, err)
	}
	tree, err := s.snapshot.Current(ctx)
	if err != nil {
		return connectors.Entry{}, err
	}
	entry, ok := tree.Lookup(cleaned)
	if !ok {
		return connectors.Entry{}, domain.ErrNotFound
	}
	return entry, nil
}

// list fetches the recursive tree at the configured ref.
func (s *Source) list(ctx context.Context) ([]connectors.Entry, error) {
	ref := s.cfg.Ref
	if ref == "" {
		branch, err := s.client.DefaultBranch(ctx, s.cfg.Owner, s.cfg.Repo)
		if err != nil {
			return nil, fmt.Errorf("resolve default branch: %w", err)
		}
		ref = branch
	}

	ghTree, err := s.client.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, ref)
	if err != nil {
		return nil, err
	}
	if ghTree.GetTruncated() {
		return nil, fmt.Errorf("%w: %s", ErrTreeTruncated, s.Name())
	}

	prefix := ""
	if s.cfg.Prefix != "" {
		prefix = s.cfg.Prefix + "/"
	}

	var entries []connectors.Entry //nolint:prealloc // blobs only
	for _, e := range ghTree.Entries {
		if e.GetType() != "blob" || !strings.HasPrefix(e.GetPath(), prefix) {
			continue
		}
		entries = append(entries, connectors.Entry{
			Path: strings.TrimPrefix(e.GetPath(), prefix),
			Size: int64(e.GetSize()),
			Ref:  e.GetSHA(),
		})
	}

	logger.Debug("github: listed %d files from %s at %s", len(entries), s.Name(), ref)
	return entries, nil
}
