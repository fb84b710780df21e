// Package similarity ranks stored vectors against a query by cosine similarity.
// It backs the exact-scan vector indexes (memory and SQLite).
package similarity

import (
	"math"
	"sort"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Ranker keeps the k best hits seen so far.
type Ranker struct {
	k    int
	hits []domain.RetrievalHit
}

// NewRanker creates a ranker for the top k hits. A non-positive k keeps nothing.
func NewRanker(k int) *Ranker {
	if k < 0 {
		k = 0
	}
	return &Ranker{k: k, hits: make([]domain.RetrievalHit, 0, k+1)}
}

// Offer considers one hit.
func (r *Ranker) Offer(hit domain.RetrievalHit) {
	if r.k == 0 {
		return
	}
	if len(r.hits) == r.k && hit.Score <= r.hits[len(r.hits)-1].Score {
		return
	}
	i := sort.Search(len(r.hits), func(i int) bool {
		return r.hits[i].Score < hit.Score
	})
	r.hits = append(r.hits, domain.RetrievalHit{})
	copy(r.hits[i+1:], r.hits[i:])
	r.hits[i] = hit
	if len(r.hits) > r.k {
		r.hits = r.hits[:r.k]
	}
}

// Hits returns the kept hits ordered by descending score.
func (r *Ranker) Hits() []domain.RetrievalHit {
	return r.hits
}
