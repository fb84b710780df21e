package github

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Config locates the content root inside a repository.
type Config struct {
	Owner string
	Repo  string

	// Ref is a branch, tag or commit. Empty means the default branch.
	Ref string

	// Prefix is the directory holding the content root. Empty means the repository root.
	Prefix string
}

// ParseConfig builds a Config from source settings. Repo must be "owner/name".
func ParseConfig(settings domain.SourceSettings) (Config, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(settings.Repo), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Config{}, fmt.Errorf("%w: github repo must be owner/name, got %q", domain.ErrInvalidInput, settings.Repo)
	}
	return Config{
		Owner:  owner,
		Repo:   repo,
		Ref:    strings.TrimSpace(settings.Ref),
		Prefix: strings.Trim(settings.Prefix, "/"),
	}, nil
}
