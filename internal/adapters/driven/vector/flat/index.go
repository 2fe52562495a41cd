// Package flat provides an exact, in-memory vector index using squared
// Euclidean distance. It is the per-document index behind retrieval.
package flat

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a brute-force nearest-neighbour index. Search cost is
// O(n·d + n·log k), which is fine for the chunk counts of one document.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    [][]float32
}

// New creates an empty index for vectors of the given size.
func New(dimensions int) *Index {
	return &Index{dimensions: dimensions}
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dimensions int) driven.VectorIndex {
	return New(dimensions)
}

// Insert appends a copy of vector and returns its slot.
func (idx *Index) Insert(vector []float32) (int, error) {
	if len(vector) != idx.dimensions {
		return 0, fmt.Errorf("%w: vector has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(vector), idx.dimensions)
	}

	v := make([]float32, len(vector))
	copy(v, vector)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.vectors = append(idx.vectors, v)
	return len(idx.vectors) - 1, nil
}

// Search returns the k nearest slots by ascending squared L2 distance.
// Equal distances are ordered by ascending slot.
func (idx *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(query), idx.dimensions)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k > len(idx.vectors) {
		k = len(idx.vectors)
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	// Max-heap of the best k so far; the worst kept hit sits on top.
	h := make(hitHeap, 0, k)
	for slot, v := range idx.vectors {
		hit := driven.VectorHit{Slot: slot, Distance: SquaredL2(query, v)}
		if h.Len() < k {
			heap.Push(&h, hit)
			continue
		}
		if less(hit, h[0]) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	results := []driven.VectorHit(h)
	sort.Slice(results, func(i, j int) bool { return less(results[i], results[j]) })
	return results, nil
}

// Len returns the number of inserted vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the vector size accepted by the index.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// SquaredL2 returns the squared Euclidean distance between a and b.
// The vectors must have equal length.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// less orders hits by distance, then slot.
func less(a, b driven.VectorHit) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Slot < b.Slot
}

// hitHeap is a max-heap under less.
type hitHeap []driven.VectorHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return less(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) {
	*h = append(*h, x.(driven.VectorHit))
}

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
