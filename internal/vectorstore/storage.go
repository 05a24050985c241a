package vectorstore

import (
	"math"
	"sort"

	"ayurdiag/internal/domain"
)

// Storage persists vectors and supports similarity search.
type Storage = domain.VectorStore

// DefaultTopK is used when a search asks for k <= 0.
const DefaultTopK = 5

// Cosine returns the cosine similarity of a and b, or 0 if either is a zero vector.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK scores every vector against query and returns the best k indexes in
// descending score order; ties keep insertion order.
func TopK(query []float64, vectors [][]float64, k int) ([]int, []float64) {
	if k <= 0 {
		k = DefaultTopK
	}
	scores := make([]float64, len(vectors))
	idxs := make([]int, len(vectors))
	for i, v := range vectors {
		scores[i] = Cosine(v, query)
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return scores[idxs[i]] > scores[idxs[j]] })
	if k > len(idxs) {
		k = len(idxs)
	}
	return idxs[:k], scores
}
