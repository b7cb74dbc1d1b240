package retrieval

import (
	"fmt"
	"math"
	"sort"
)

// Ranked is one scored candidate: the position of the vector in the input
// sequence and its cosine similarity to the query.
type Ranked struct {
	Index int
	Score float64
}

// Rank returns the topK vectors most similar to query by cosine similarity,
// best first. Ties break by ascending original index so the ordering is
// stable and deterministic. An empty vector set yields an empty result;
// topK <= 0 is an error. Inputs are never mutated.
func Rank(query []float32, vectors [][]float32, topK int) ([]Ranked, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	ranked := make([]Ranked, len(vectors))
	for i, v := range vectors {
		ranked[i] = Ranked{Index: i, Score: Cosine(query, v)}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// Cosine computes cosine similarity between two vectors: the dot product
// divided by the product of the L2 norms. A zero-norm vector yields 0 with
// any other vector; there is no division by zero. Length mismatches compare
// only the shared prefix.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	for i := n; i < len(a); i++ {
		normA += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
