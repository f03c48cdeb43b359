// Package ranker orders chunks by cosine similarity to a query vector.
package ranker

import (
	"math"
	"sort"

	"github.com/RussGuo/Legata/internal/domain"
)

// Epsilon keeps the cosine denominator non-zero for all-zero vectors.
const Epsilon = 1e-8

// Cosine returns the cosine similarity of a and b. Vectors of different
// length come from different embedding spaces and score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + Epsilon)
}

// Rank scores every embedded chunk against query and returns them by
// descending similarity. Ties keep their input order. Chunks without an
// embedding, or with one of a different length than query, are skipped.
func Rank(query []float64, chunks []domain.Chunk) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if !c.Embedded() || len(c.Embedding) != len(query) {
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: Cosine(query, c.Embedding)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Top returns at most k of the highest scored chunks from a ranked slice.
func Top(ranked []domain.ScoredChunk, k int) []domain.ScoredChunk {
	if k <= 0 || k >= len(ranked) {
		return ranked
	}
	return ranked[:k]
}
