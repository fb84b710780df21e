package driven

import "github.com/custodia-labs/studyrag/internal/core/domain"

// Chunker splits extracted pages into overlapping, length-bounded chunks.
// Implementations must be deterministic and never emit empty chunks.
type Chunker interface {
	// Split chunks pages and stamps every chunk with unit, page and position.
	Split(unit domain.Unit, pages []domain.Page) []domain.Chunk
}
