package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"

	"github.com/custodia-labs/studyrag/internal/connectors"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Config locates the content root in a bucket.
type Config struct {
	Bucket string

	// Prefix is the object name prefix of the content root, ending in "/"
	// unless empty.
	Prefix string
}

// ParseConfig builds a Config from source settings.
func ParseConfig(settings domain.SourceSettings) (Config, error) {
	bucket := strings.TrimSpace(settings.Bucket)
	if bucket == "" {
		return Config{}, fmt.Errorf("%w: gcs source needs a bucket", domain.ErrInvalidInput)
	}

	prefix := strings.Trim(settings.Prefix, "/")
	if prefix == "" && settings.Tenant != "" {
		prefix = "users/" + settings.Tenant + "/raw_data"
	}
	if prefix != "" {
		prefix += "/"
	}
	return Config{Bucket: bucket, Prefix: prefix}, nil
}

// NewStorageService creates a storage client. Without options it uses
// Application Default Credentials with read-only scope.
func NewStorageService(ctx context.Context, opts ...option.ClientOption) (*storage.Service, error) {
	if len(opts) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storage.DevstorageReadOnlyScope)
		if err != nil {
			return nil, fmt.Errorf("default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}
	return svc, nil
}

// Source serves study material from objects in a bucket.
type Source struct {
	svc      *storage.Service
	cfg      Config
	limiter  *RateLimiter
	snapshot *connectors.Snapshot
}

// NewSource creates a bucket-backed content source.
func NewSource(svc *storage.Service, cfg Config, limiter *RateLimiter) *Source {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRequestsPerSecond, DefaultBurstSize)
	}
	s := &Source{svc: svc, cfg: cfg, limiter: limiter}
	s.snapshot = connectors.NewSnapshot(s.list)
	return s
}

// Name identifies the binding for logs.
func (s *Source) Name() string {
	return "gs://" + s.cfg.Bucket + "/" + s.cfg.Prefix
}

// ListCollections relists the bucket and returns its collections.
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

// Read downloads an object.
func (s *Source) Read(ctx context.Context, sourcePath string) ([]byte, error) {
	name, err := s.objectName(sourcePath)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := s.svc.Objects.Get(s.cfg.Bucket, name).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, s.wrap(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	return data, nil
}

// Stat fetches object metadata.
func (s *Source) Stat(ctx context.Context, sourcePath string) (domain.SourceInfo, error) {
	name, err := s.objectName(sourcePath)
	if err != nil {
		return domain.SourceInfo{}, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.SourceInfo{}, fmt.Errorf("rate limit wait: %w", err)
	}

	obj, err := s.svc.Objects.Get(s.cfg.Bucket, name).Fields("name", "size").Context(ctx).Do()
	if err != nil {
		err = s.wrap(err)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SourceInfo{}, nil
		}
		return domain.SourceInfo{}, fmt.Errorf("stat %s: %w", sourcePath, err)
	}
	return domain.SourceInfo{Exists: true, Size: int64(obj.Size)}, nil
}

func (s *Source) objectName(sourcePath string) (string, error) {
	cleaned, err := connectors.CleanSourcePath(sourcePath)
	if err != nil {
		return "", fmt.Errorf("source path %q: %w", sourcePath, err)
	}
	return s.cfg.Prefix + cleaned, nil
}

// list pages through every object below the prefix.
func (s *Source) list(ctx context.Context) ([]connectors.Entry, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var entries []connectors.Entry
	call := s.svc.Objects.List(s.cfg.Bucket).Prefix(s.cfg.Prefix).Fields("nextPageToken", "items(name,size)")
	err := call.Pages(ctx, func(page *storage.Objects) error {
		for _, obj := range page.Items {
			// Folder placeholders created by the console.
			if strings.HasSuffix(obj.Name, "/") {
				continue
			}
			entries = append(entries, connectors.Entry{
				Path: strings.TrimPrefix(obj.Name, s.cfg.Prefix),
				Size: int64(obj.Size),
				Ref:  obj.Name,
			})
		}
		if page.NextPageToken != "" {
			return s.limiter.Wait(ctx)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Name(), s.wrap(err))
	}

	logger.Debug("gcs: listed %d objects from %s", len(entries), s.Name())
	return entries, nil
}

// wrap maps API errors and starts a backoff window on 429.
func (s *Source) wrap(err error) error {
	if IsRateLimited(err) {
		s.limiter.RecordRateLimitError(0)
	}
	return WrapError(err)
}
