// Package html provides a normaliser that extracts readable text from HTML pages.
package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format normaliser, higher than plaintext
}

// Normalise returns the visible text of the page as a single unpaged entry.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Pages: []domain.Page{{Text: stripHTML(string(raw.Content))}},
	}, nil
}

// Elements whose content is never visible text.
var dropped = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
	regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
	regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
	regexp.MustCompile(`(?s)<!--.*?-->`),
}

var (
	blockBoundary = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>|<(br|hr)\s*/?>`)
	cellBoundary  = regexp.MustCompile(`(?i)</t[dh]>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	spaceRun      = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes markup and returns one trimmed line per text block.
func stripHTML(content string) string {
	for _, re := range dropped {
		content = re.ReplaceAllString(content, "")
	}

	content = blockBoundary.ReplaceAllString(content, "\n")
	content = cellBoundary.ReplaceAllString(content, " ")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = spaceRun.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
