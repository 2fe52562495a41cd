package flat

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func slots(hits []driven.VectorHit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Slot
	}
	return out
}

func TestIndex_InsertAssignsDenseSlots(t *testing.T) {
	idx := New(2)

	for want := 0; want < 5; want++ {
		slot, err := idx.Insert([]float32{float32(want), 0})
		require.NoError(t, err)
		assert.Equal(t, want, slot)
	}
	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, 2, idx.Dimensions())
}

func TestIndex_InsertCopiesVector(t *testing.T) {
	idx := New(2)
	v := []float32{1, 1}
	_, err := idx.Insert(v)
	require.NoError(t, err)

	v[0] = 100

	hits, err := idx.Search([]float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0), hits[0].Distance)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	idx := New(3)

	_, err := idx.Insert([]float32{1, 2})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = idx.Search([]float32{1, 2, 3, 4}, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestIndex_SearchOrdersByDistance(t *testing.T) {
	idx := New(2)
	for _, v := range [][]float32{{10, 10}, {1, 0}, {3, 4}, {0, 0}} {
		_, err := idx.Insert(v)
		require.NoError(t, err)
	}

	hits, err := idx.Search([]float32{0, 0}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, slots(hits))
	assert.Equal(t, float32(0), hits[0].Distance)
	assert.Equal(t, float32(1), hits[1].Distance)
	assert.Equal(t, float32(25), hits[2].Distance)
}

func TestIndex_TiesBrokenBySlot(t *testing.T) {
	idx := New(2)
	for _, v := range [][]float32{{0, 1}, {1, 0}, {0, -1}, {-1, 0}, {5, 5}} {
		_, err := idx.Insert(v)
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		hits, err := idx.Search([]float32{0, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, slots(hits))
	}
}

func TestIndex_KClamped(t *testing.T) {
	idx := New(1)
	for i := 0; i < 3; i++ {
		_, err := idx.Insert([]float32{float32(i)})
		require.NoError(t, err)
	}

	hits, err := idx.Search([]float32{0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, slots(hits))

	hits, err = idx.Search([]float32{0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_EmptySearch(t *testing.T) {
	hits, err := New(4).Search([]float32{0, 0, 0, 0}, 3)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_MatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	idx := New(8)
	var vectors [][]float32
	for i := 0; i < 200; i++ {
		v := make([]float32, 8)
		for j := range v {
			// Coarse values produce many exact ties.
			v[j] = float32(rng.Intn(3))
		}
		vectors = append(vectors, v)
		_, err := idx.Insert(v)
		require.NoError(t, err)
	}

	query := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	want := make([]driven.VectorHit, len(vectors))
	for i, v := range vectors {
		want[i] = driven.VectorHit{Slot: i, Distance: SquaredL2(query, v)}
	}
	sort.SliceStable(want, func(i, j int) bool { return want[i].Distance < want[j].Distance })

	got, err := idx.Search(query, 15)
	require.NoError(t, err)
	assert.Equal(t, want[:15], got)
}

func TestFactory(t *testing.T) {
	idx := Factory(16)
	assert.Equal(t, 16, idx.Dimensions())
	assert.Equal(t, 0, idx.Len())
}
