package driven

// VectorIndex is an exact nearest-neighbour index over the chunk embeddings
// of a single document. Slots are dense and assigned in insertion order.
// There is no delete: a changed document gets a new index.
type VectorIndex interface {
	// Insert appends a vector and returns its slot.
	Insert(vector []float32) (int, error)

	// Search returns up to k slots ordered by ascending squared L2 distance,
	// ties broken by ascending slot. k larger than Len returns every slot.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of inserted vectors.
	Len() int

	// Dimensions returns the vector size accepted by the index.
	Dimensions() int
}

// VectorHit is a single search result.
type VectorHit struct {
	// Slot is the insertion position of the matched vector.
	Slot int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}

// VectorIndexFactory creates an empty index for vectors of the given size.
type VectorIndexFactory func(dimensions int) VectorIndex
