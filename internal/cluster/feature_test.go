package cluster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

var testDocs = [][]TermWeight{
	{{TermID: 0, Weight: 1.5}, {TermID: 2, Weight: 0.5}},
	{{TermID: 1, Weight: 2.0}},
	{},
}

func TestBuildVectorsDense(t *testing.T) {
	vectors, err := BuildVectors(3, testDocs, Dense)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.Equal(t, 3, vectors[0].Len())
	assert.Equal(t, 1.5, vectors[0].At(0))
	assert.Equal(t, 0.0, vectors[0].At(1))
	assert.Equal(t, 0.5, vectors[0].At(2))
	assert.Equal(t, 2.0, vectors[1].At(1))
	assert.Equal(t, 0.0, vectors[2].At(0))
}

func TestBuildVectorsSparseMatchesDense(t *testing.T) {
	dense, err := BuildVectors(3, testDocs, Dense)
	require.NoError(t, err)
	sparse, err := BuildVectors(3, testDocs, Sparse)
	require.NoError(t, err)

	for docID := range testDocs {
		for tid := 0; tid < 3; tid++ {
			assert.Equal(t, dense[docID].At(tid), sparse[docID].At(tid),
				"doc %d term %d", docID, tid)
		}
	}

	centroid := []float64{0.3, 1.1, -0.2}
	for docID := range testDocs {
		assert.InDelta(t,
			squaredDistance(dense[docID], centroid),
			squaredDistance(sparse[docID], centroid),
			1e-12, "doc %d", docID)
	}

	meanDense := meanVector(dense, []int{0, 1, 2}, 3)
	meanSparse := meanVector(sparse, []int{0, 1, 2}, 3)
	for tid := range meanDense {
		assert.InDelta(t, meanDense[tid], meanSparse[tid], 1e-12)
	}
}

func TestBuildVectorsUnknownRepresentation(t *testing.T) {
	_, err := BuildVectors(3, testDocs, Representation("compressed"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
}

func TestBuildVectorsOutOfRangeTermPanics(t *testing.T) {
	docs := [][]TermWeight{{{TermID: 5, Weight: 1}}}
	assert.Panics(t, func() {
		BuildVectors(3, docs, Dense)
	})
}

func TestSquaredDistance(t *testing.T) {
	vectors, err := BuildVectors(2, [][]TermWeight{
		{{TermID: 0, Weight: 1}},
		{{TermID: 1, Weight: 1}},
	}, Dense)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, squaredDistance(vectors[0], []float64{1, 0}), 1e-12)
	assert.InDelta(t, 2.0, squaredDistance(vectors[0], []float64{0, 1}), 1e-12)
	assert.InDelta(t, 1.0, squaredDistance(vectors[1], []float64{1, 1}), 1e-12)
}

func TestMeanVector(t *testing.T) {
	vectors, err := BuildVectors(2, [][]TermWeight{
		{{TermID: 0, Weight: 2}},
		{{TermID: 0, Weight: 4}, {TermID: 1, Weight: 1}},
	}, Dense)
	require.NoError(t, err)

	mean := meanVector(vectors, []int{0, 1}, 2)
	assert.InDelta(t, 3.0, mean[0], 1e-12)
	assert.InDelta(t, 0.5, mean[1], 1e-12)
}

func TestDenseCopyDoesNotAlias(t *testing.T) {
	vectors, err := BuildVectors(2, [][]TermWeight{
		{{TermID: 0, Weight: 1}, {TermID: 1, Weight: 2}},
	}, Dense)
	require.NoError(t, err)

	copied := denseCopy(vectors[0])
	copied[0] = 99
	assert.Equal(t, 1.0, vectors[0].At(0))
}
