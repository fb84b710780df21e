// Package chunker splits extracted page text into overlapping, length-bounded chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits page text into fixed-size chunks measured in runes.
// A cut prefers the last paragraph, line or word boundary in the second
// half of the window and falls back to a hard cut.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split chunks every page of unit and stamps each chunk with the unit metadata,
// its originating page and its position across the whole unit.
// Chunk ids are derived from the source path and position.
func (p *Processor) Split(unit domain.Unit, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	position := 0
	for _, page := range pages {
		for _, text := range p.Segments(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:       ChunkID(unit.SourcePath, position),
				Unit:     unit,
				Page:     page.Number,
				Position: position,
				Text:     text,
			})
			position++
		}
	}
	return chunks
}

// Segments splits text into ordered, overlapping segments of at most chunkSize runes.
// Whitespace-only segments are dropped, so empty input yields no segments.
func (p *Processor) Segments(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	segments := make([]string, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0
	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = p.boundary(runes, start, end)
		}

		if seg := strings.TrimSpace(string(runes[start:end])); seg != "" {
			segments = append(segments, seg)
		}
		if end == n {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return segments
}

// boundary returns the preferred cut in runes[start:end].
func (p *Processor) boundary(runes []rune, start, end int) int {
	floor := start + p.chunkSize/2

	// Paragraph break.
	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= floor; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	return end
}

// ChunkID returns the deterministic id of the chunk at position within sourcePath.
func ChunkID(sourcePath string, position int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", sourcePath, position))).String()
}
